package controllers

import (
	"net/http"

	"github.com/geoform/intake-service/internal/dtos"
	"github.com/geoform/intake-service/internal/utils"
)

// APINotFound answers API paths no route claimed.
func APINotFound(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusNotFound, dtos.ErrorResponse{
		Success: false,
		Message: "API route not found",
	})
}
