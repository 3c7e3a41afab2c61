package dtos

import "github.com/geoform/intake-service/internal/models"

// SubmitFormRequest is the accepted shape of POST /api/submit-form.
// Unknown keys are ignored; wrong JSON types are rejected at decode time.
type SubmitFormRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required"`

	Phone  string   `json:"phone"`
	Age    *float64 `json:"age" validate:"omitempty,gte=0"`
	Gender string   `json:"gender"`

	Location          *LocationRequest      `json:"location" validate:"omitempty"`
	ExactLocationData *ExactLocationRequest `json:"exactLocationData" validate:"omitempty"`
	LocationCaptured  *bool                 `json:"locationCaptured"`

	SubmittedAt *FlexibleTime `json:"submittedAt"`
}

type LocationRequest struct {
	Latitude  *float64      `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64      `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Accuracy  *float64      `json:"accuracy" validate:"omitempty,gte=0"`
	Timestamp *FlexibleTime `json:"timestamp"`
}

type ExactLocationRequest struct {
	FullAddress string   `json:"fullAddress"`
	PlaceID     string   `json:"placeId"`
	Components  []any    `json:"components"`
	Types       []string `json:"types"`
}

type SubmitFormResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type ListUsersResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []*models.Record `json:"data"`
}
