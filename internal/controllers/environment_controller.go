package controllers

import (
	"net/http"
	"time"

	"github.com/geoform/intake-service/internal/services"
	"github.com/geoform/intake-service/internal/utils"
)

type EnvironmentController struct {
	env string
	now func() time.Time
}

func NewEnvironmentController(env string) *EnvironmentController {
	return &EnvironmentController{env: env, now: time.Now}
}

// GET /api/environment
func (c *EnvironmentController) GetEnvironment(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, services.EnvironmentInfo(c.env, c.now()))
}
