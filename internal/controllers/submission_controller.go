package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/geoform/intake-service/internal/dtos"
	"github.com/geoform/intake-service/internal/repositories"
	"github.com/geoform/intake-service/internal/services"
	"github.com/geoform/intake-service/internal/utils"
)

const (
	msgSaved          = "Form data saved successfully"
	msgInvalidJSON    = "Invalid JSON payload"
	msgMissingFields  = "Missing required fields"
	msgValidation     = "Validation error"
	msgDuplicate      = "Duplicate entry error"
	msgDuplicateError = "A record with this information already exists"
	msgSaveFailed     = "Error saving form data"
	msgFetchFailed    = "Error fetching users"
)

type SubmissionController struct {
	svc         services.SubmissionService
	exposeStack bool
}

// NewSubmissionController builds the intake handlers. exposeStack adds the
// server-side stack trace to 500 responses and is meant for development only.
func NewSubmissionController(s services.SubmissionService, exposeStack bool) *SubmissionController {
	return &SubmissionController{svc: s, exposeStack: exposeStack}
}

// -----------------------------------------------------------------------------
// POST /api/submit-form
// -----------------------------------------------------------------------------
func (c *SubmissionController) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var req dtos.SubmitFormRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if verr := services.DecodeTypeError(err); verr != nil {
			c.respondValidation(w, verr)
			return
		}
		utils.RespondError(
			w, http.StatusBadRequest, msgInvalidJSON,
			dtos.ErrorResponse{Success: false, Message: msgInvalidJSON, Error: err.Error()},
			err,
		)
		return
	}

	if utils.Logger.IsLevelEnabled(logrus.DebugLevel) {
		if raw, err := json.Marshal(req); err == nil {
			utils.Logger.Debugf("Received form data: %s", raw)
		}
	}

	id, err := c.svc.Submit(r.Context(), &req)
	if err != nil {
		c.respondSubmitError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, dtos.SubmitFormResponse{
		Success: true,
		Message: msgSaved,
		UserID:  id,
	})
}

func (c *SubmissionController) respondSubmitError(w http.ResponseWriter, err error) {
	var (
		missingErr    *services.MissingFieldsError
		validationErr *repositories.ValidationError
		conflictErr   *repositories.ConflictError
	)

	switch {
	case errors.As(err, &missingErr):
		utils.RespondError(
			w, http.StatusBadRequest, msgMissingFields,
			dtos.ErrorResponse{Success: false, Message: msgMissingFields, MissingFields: missingErr.Fields},
			err,
		)
	case errors.As(err, &validationErr):
		c.respondValidation(w, validationErr)
	case errors.As(err, &conflictErr):
		utils.RespondError(
			w, http.StatusConflict, msgDuplicate,
			dtos.ErrorResponse{Success: false, Message: msgDuplicate, Error: msgDuplicateError},
			err,
		)
	default:
		body := dtos.ErrorResponse{Success: false, Message: msgSaveFailed, Error: err.Error()}
		if c.exposeStack {
			body.Stack = stackOf(err)
		}
		utils.RespondError(w, http.StatusInternalServerError, msgSaveFailed, body, err)
	}
}

func (c *SubmissionController) respondValidation(w http.ResponseWriter, verr *repositories.ValidationError) {
	utils.RespondError(
		w, http.StatusBadRequest, msgValidation,
		dtos.ErrorResponse{Success: false, Message: msgValidation, Errors: verr.Fields},
		verr,
	)
}

// -----------------------------------------------------------------------------
// GET /api/users
// -----------------------------------------------------------------------------
func (c *SubmissionController) ListUsers(w http.ResponseWriter, r *http.Request) {
	records, err := c.svc.ListRecords(r.Context())
	if err != nil {
		utils.RespondError(
			w, http.StatusInternalServerError, msgFetchFailed,
			dtos.ErrorResponse{Success: false, Message: msgFetchFailed, Error: err.Error()},
			err,
		)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, dtos.ListUsersResponse{
		Success: true,
		Count:   len(records),
		Data:    records,
	})
}

func stackOf(err error) string {
	var storageErr *repositories.StorageError
	if errors.As(err, &storageErr) {
		return storageErr.Stack()
	}
	return fmt.Sprintf("%+v", err)
}
