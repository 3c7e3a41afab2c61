package controllers

import (
	"net/http"

	"github.com/geoform/intake-service/internal/config"
	"github.com/geoform/intake-service/internal/dtos"
	"github.com/geoform/intake-service/internal/utils"
)

// DebugController serves the optional runtime snapshot and dashboard
// redirect. Both are mounted only when their flags are on.
type DebugController struct {
	cfg *config.Config
	db  Pinger
}

func NewDebugController(cfg *config.Config, db Pinger) *DebugController {
	return &DebugController{cfg: cfg, db: db}
}

// GET /api/debug
func (c *DebugController) Snapshot(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, dtos.DebugResponse{
		Success:     true,
		AppName:     c.cfg.AppName,
		Environment: c.cfg.EnvironmentName(),
		Database:    c.cfg.MongoDatabase,
		Collection:  c.cfg.MongoCollection,
		Connected:   c.db.Ping(r.Context()) == nil,
	})
}

// GET /dashboard
func (c *DebugController) DashboardRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, c.cfg.DashboardPath, http.StatusFound)
}
