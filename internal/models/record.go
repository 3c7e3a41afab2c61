package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is one persisted form submission. Optional fields are omitted from
// the stored document when the client did not send them.
type Record struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"_id"`

	FirstName string `bson:"firstName" json:"firstName"`
	LastName  string `bson:"lastName" json:"lastName"`
	Email     string `bson:"email" json:"email"`

	Phone  string   `bson:"phone,omitempty" json:"phone,omitempty"`
	Age    *float64 `bson:"age,omitempty" json:"age,omitempty"`
	Gender string   `bson:"gender,omitempty" json:"gender,omitempty"`

	Location          *Location          `bson:"location,omitempty" json:"location,omitempty"`
	ExactLocationData *ExactLocationData `bson:"exactLocationData,omitempty" json:"exactLocationData,omitempty"`
	LocationCaptured  *bool              `bson:"locationCaptured,omitempty" json:"locationCaptured,omitempty"`

	SubmittedAt time.Time `bson:"submittedAt" json:"submittedAt"`
}

// Location is the coarse, device-reported position.
type Location struct {
	Latitude  *float64   `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64   `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Accuracy  *float64   `bson:"accuracy,omitempty" json:"accuracy,omitempty"`
	Timestamp *time.Time `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}

// ExactLocationData is the geocoder-resolved address. Components are kept
// verbatim as the client's geocoder produced them.
type ExactLocationData struct {
	FullAddress string   `bson:"fullAddress,omitempty" json:"fullAddress,omitempty"`
	PlaceID     string   `bson:"placeId,omitempty" json:"placeId,omitempty"`
	Components  []any    `bson:"components,omitempty" json:"components,omitempty"`
	Types       []string `bson:"types,omitempty" json:"types,omitempty"`
}

// Required identity fields, in the order they are reported when missing.
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
)

// MissingIdentityFields returns the identity fields that are empty.
func (r *Record) MissingIdentityFields() []string {
	var missing []string
	if r.FirstName == "" {
		missing = append(missing, FieldFirstName)
	}
	if r.LastName == "" {
		missing = append(missing, FieldLastName)
	}
	if r.Email == "" {
		missing = append(missing, FieldEmail)
	}
	return missing
}
