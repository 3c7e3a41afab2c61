package controllers

import (
	"context"
	"net/http"

	"github.com/geoform/intake-service/internal/dtos"
	"github.com/geoform/intake-service/internal/utils"
)

// Pinger is the database probe used by the health and debug routes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthController struct {
	db Pinger
}

func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.db.Ping(r.Context()); err != nil {
		utils.RespondError(
			w,
			http.StatusServiceUnavailable,
			"Service unhealthy",
			dtos.ErrorResponse{Success: false, Message: "Database unreachable", Error: err.Error()},
			err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.HealthCheckResponse{Status: "OK"})
}
