package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/geoform/intake-service/internal/dtos"
	"github.com/geoform/intake-service/internal/models"
	"github.com/geoform/intake-service/internal/repositories"
	"github.com/geoform/intake-service/internal/utils"
)

type SubmissionService interface {
	Submit(ctx context.Context, req *dtos.SubmitFormRequest) (string, error)
	ListRecords(ctx context.Context) ([]*models.Record, error)
}

type submissionService struct {
	repo repositories.RecordRepository
}

func NewSubmissionService(repo repositories.RecordRepository) SubmissionService {
	return &submissionService{repo: repo}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Submit validates req, normalizes its timestamps and stores exactly one
// record. It returns the generated identifier as a hex string.
func (s *submissionService) Submit(ctx context.Context, req *dtos.SubmitFormRequest) (string, error) {
	if err := ValidateSubmission(req); err != nil {
		return "", err
	}

	record, err := BuildRecord(req)
	if err != nil {
		return "", err
	}

	id, err := s.repo.Insert(ctx, record)
	if err != nil {
		return "", err
	}

	utils.Logger.WithFields(logrus.Fields{
		"id":    id.Hex(),
		"email": record.Email,
	}).Info("Form data saved")
	return id.Hex(), nil
}

func (s *submissionService) ListRecords(ctx context.Context) ([]*models.Record, error) {
	return s.repo.FindAllOrderedByTime(ctx)
}

// ValidateSubmission checks identity fields first and reports all of the
// missing ones together; range violations on optional fields are reported
// as a ValidationError keyed by JSON path.
func ValidateSubmission(req *dtos.SubmitFormRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	missing := map[string]bool{}
	fields := map[string]string{}
	for _, fe := range verrs {
		path := fieldPath(fe)
		if fe.Tag() == "required" && isIdentityField(path) {
			missing[path] = true
			continue
		}
		fields[path] = describeFieldError(fe)
	}

	if len(missing) > 0 {
		var ordered []string
		for _, f := range []string{models.FieldFirstName, models.FieldLastName, models.FieldEmail} {
			if missing[f] {
				ordered = append(ordered, f)
			}
		}
		return &MissingFieldsError{Fields: ordered}
	}
	return &repositories.ValidationError{Fields: fields}
}

// BuildRecord converts a validated request into the stored shape. String
// timestamps are parsed here; an unparseable one is a validation failure on
// its field.
func BuildRecord(req *dtos.SubmitFormRequest) (*models.Record, error) {
	record := &models.Record{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Age:              req.Age,
		Gender:           req.Gender,
		LocationCaptured: req.LocationCaptured,
	}

	invalid := map[string]string{}

	if loc := req.Location; loc != nil {
		record.Location = &models.Location{
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Accuracy:  loc.Accuracy,
		}
		if loc.Timestamp != nil && !loc.Timestamp.Blank() {
			if loc.Timestamp.Valid {
				ts := loc.Timestamp.Time
				record.Location.Timestamp = &ts
			} else {
				invalid["location.timestamp"] = castDateMessage(loc.Timestamp.Raw)
			}
		}
	}

	if exact := req.ExactLocationData; exact != nil {
		record.ExactLocationData = &models.ExactLocationData{
			FullAddress: exact.FullAddress,
			PlaceID:     exact.PlaceID,
			Components:  exact.Components,
			Types:       exact.Types,
		}
	}

	if req.SubmittedAt != nil && !req.SubmittedAt.Blank() {
		if req.SubmittedAt.Valid {
			record.SubmittedAt = req.SubmittedAt.Time
		} else {
			invalid["submittedAt"] = castDateMessage(req.SubmittedAt.Raw)
		}
	}

	if len(invalid) > 0 {
		return nil, &repositories.ValidationError{Fields: invalid}
	}
	return record, nil
}

// DecodeTypeError turns a JSON type mismatch into a field-level validation
// failure. It returns nil for any other decode error.
func DecodeTypeError(err error) *repositories.ValidationError {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) {
		return nil
	}
	field := typeErr.Field
	if field == "" {
		field = "body"
	}
	return &repositories.ValidationError{Fields: map[string]string{
		field: fmt.Sprintf("expected %s but got %s", typeErr.Type, typeErr.Value),
	}}
}

func castDateMessage(raw string) string {
	return fmt.Sprintf("Cast to date failed for value %q", raw)
}

func isIdentityField(path string) bool {
	switch path {
	case models.FieldFirstName, models.FieldLastName, models.FieldEmail:
		return true
	}
	return false
}

// fieldPath drops the root struct name from the validator namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "required":
		return "is required"
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
