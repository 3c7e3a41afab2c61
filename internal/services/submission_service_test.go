package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geoform/intake-service/internal/dtos"
	"github.com/geoform/intake-service/internal/models"
	"github.com/geoform/intake-service/internal/repositories"
)

// memRepo mimics the gateway: it stamps ids and submittedAt and keeps
// records in memory.
type memRepo struct {
	records []*models.Record
	err     error
	clock   time.Time
}

func (m *memRepo) Insert(_ context.Context, r *models.Record) (primitive.ObjectID, error) {
	if m.err != nil {
		return primitive.NilObjectID, m.err
	}
	r.ID = primitive.NewObjectID()
	if r.SubmittedAt.IsZero() {
		m.clock = m.clock.Add(time.Second)
		r.SubmittedAt = m.clock
	}
	m.records = append(m.records, r)
	return r.ID, nil
}

func (m *memRepo) FindAllOrderedByTime(_ context.Context) ([]*models.Record, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := append([]*models.Record(nil), m.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

func decodeRequest(t *testing.T, body string) *dtos.SubmitFormRequest {
	t.Helper()
	var req dtos.SubmitFormRequest
	require.NoError(t, json.NewDecoder(strings.NewReader(body)).Decode(&req))
	return &req
}

func TestSubmitStoresRecord(t *testing.T) {
	repo := &memRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewSubmissionService(repo)

	id, err := svc.Submit(context.Background(), decodeRequest(t, `{
		"firstName": "Ann",
		"lastName": "Lee",
		"email": "a@x.com",
		"phone": "555-0100",
		"age": 34,
		"locationCaptured": false,
		"exactLocationData": {
			"fullAddress": "1 Main St",
			"placeId": "abc",
			"components": [{"long_name": "Main St", "types": ["route"]}, "80202", 7],
			"types": ["street_address"]
		}
	}`))
	require.NoError(t, err)
	require.Len(t, repo.records, 1)

	rec := repo.records[0]
	require.Equal(t, rec.ID.Hex(), id)
	require.Equal(t, "Ann", rec.FirstName)
	require.Equal(t, "555-0100", rec.Phone)
	require.Equal(t, 34.0, *rec.Age)
	require.NotNil(t, rec.LocationCaptured)
	require.False(t, *rec.LocationCaptured)
	require.Nil(t, rec.Location)
	require.Equal(t, "abc", rec.ExactLocationData.PlaceID)
	require.Len(t, rec.ExactLocationData.Components, 3)
	require.Equal(t, "Main St", rec.ExactLocationData.Components[0].(map[string]any)["long_name"])
	require.Equal(t, "80202", rec.ExactLocationData.Components[1])
	require.Equal(t, 7.0, rec.ExactLocationData.Components[2])
	require.Equal(t, []string{"street_address"}, rec.ExactLocationData.Types)
}

func TestSubmitMissingFields(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"empty firstName", `{"firstName":"","lastName":"Lee","email":"a@x.com"}`, []string{"firstName"}},
		{"absent email", `{"firstName":"Ann","lastName":"Lee"}`, []string{"email"}},
		{"all absent", `{}`, []string{"firstName", "lastName", "email"}},
		{"order is fixed", `{"lastName":"Lee"}`, []string{"firstName", "email"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &memRepo{}
			svc := NewSubmissionService(repo)

			_, err := svc.Submit(context.Background(), decodeRequest(t, tc.body))
			var missing *MissingFieldsError
			require.True(t, errors.As(err, &missing))
			require.Equal(t, tc.want, missing.Fields)
			require.Empty(t, repo.records)
		})
	}
}

func TestSubmitMissingFieldsWinOverRangeErrors(t *testing.T) {
	repo := &memRepo{}
	_, err := NewSubmissionService(repo).Submit(context.Background(),
		decodeRequest(t, `{"lastName":"Lee","email":"a@x.com","age":-1}`))

	var missing *MissingFieldsError
	require.True(t, errors.As(err, &missing))
	require.Equal(t, []string{"firstName"}, missing.Fields)
}

func TestSubmitRangeValidation(t *testing.T) {
	repo := &memRepo{}
	svc := NewSubmissionService(repo)

	_, err := svc.Submit(context.Background(), decodeRequest(t, `{
		"firstName": "Ann", "lastName": "Lee", "email": "a@x.com",
		"age": -3,
		"location": {"latitude": 91, "longitude": -180.5, "accuracy": -1}
	}`))

	var verr *repositories.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, map[string]string{
		"age":                "must be greater than or equal to 0",
		"location.latitude":  "must be less than or equal to 90",
		"location.longitude": "must be greater than or equal to -180",
		"location.accuracy":  "must be greater than or equal to 0",
	}, verr.Fields)
	require.Empty(t, repo.records)
}

func TestSubmitBoundaryCoordinatesAreAccepted(t *testing.T) {
	repo := &memRepo{}
	_, err := NewSubmissionService(repo).Submit(context.Background(), decodeRequest(t, `{
		"firstName": "Ann", "lastName": "Lee", "email": "a@x.com",
		"location": {"latitude": -90, "longitude": 180, "accuracy": 0}
	}`))
	require.NoError(t, err)
	require.Len(t, repo.records, 1)
}

func TestSubmitNormalizesLocationTimestamp(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cases := map[string]string{
		"rfc3339 string": `"2024-05-01T12:00:00Z"`,
		"offset string":  `"2024-05-01T14:00:00+02:00"`,
		"epoch millis":   `1714564800000`,
	}

	for name, ts := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &memRepo{}
			_, err := NewSubmissionService(repo).Submit(context.Background(), decodeRequest(t,
				`{"firstName":"Ann","lastName":"Lee","email":"a@x.com","location":{"latitude":1,"timestamp":`+ts+`}}`))
			require.NoError(t, err)

			got := repo.records[0].Location.Timestamp
			require.NotNil(t, got)
			require.True(t, want.Equal(*got), "got %s", got)
		})
	}
}

func TestSubmitNullTimestampIsAbsent(t *testing.T) {
	repo := &memRepo{}
	_, err := NewSubmissionService(repo).Submit(context.Background(), decodeRequest(t,
		`{"firstName":"Ann","lastName":"Lee","email":"a@x.com","location":{"latitude":1,"timestamp":null}}`))
	require.NoError(t, err)
	require.Nil(t, repo.records[0].Location.Timestamp)
}

func TestSubmitEmptyTimestampIsAbsent(t *testing.T) {
	repo := &memRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	_, err := NewSubmissionService(repo).Submit(context.Background(), decodeRequest(t,
		`{"firstName":"Ann","lastName":"Lee","email":"a@x.com","location":{"latitude":1,"timestamp":""},"submittedAt":""}`))
	require.NoError(t, err)
	require.Len(t, repo.records, 1)
	require.Nil(t, repo.records[0].Location.Timestamp)
	require.False(t, repo.records[0].SubmittedAt.IsZero())
}

func TestSubmitOutOfRangeEpochTimestamp(t *testing.T) {
	repo := &memRepo{}
	_, err := NewSubmissionService(repo).Submit(context.Background(), decodeRequest(t,
		`{"firstName":"Ann","lastName":"Lee","email":"a@x.com","location":{"timestamp":1e300}}`))

	var verr *repositories.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, `Cast to date failed for value "1e300"`, verr.Fields["location.timestamp"])
	require.Empty(t, repo.records)
}

func TestSubmitUnparseableTimestamp(t *testing.T) {
	repo := &memRepo{}
	_, err := NewSubmissionService(repo).Submit(context.Background(), decodeRequest(t,
		`{"firstName":"Ann","lastName":"Lee","email":"a@x.com","location":{"timestamp":"yesterday"}}`))

	var verr *repositories.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, `Cast to date failed for value "yesterday"`, verr.Fields["location.timestamp"])
	require.Empty(t, repo.records)
}

func TestSubmitIsNotIdempotent(t *testing.T) {
	repo := &memRepo{}
	svc := NewSubmissionService(repo)
	body := `{"firstName":"Ann","lastName":"Lee","email":"a@x.com"}`

	first, err := svc.Submit(context.Background(), decodeRequest(t, body))
	require.NoError(t, err)
	second, err := svc.Submit(context.Background(), decodeRequest(t, body))
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.Len(t, repo.records, 2)
}

func TestSubmitPropagatesGatewayErrors(t *testing.T) {
	conflict := &repositories.ConflictError{Err: errors.New("E11000")}
	svc := NewSubmissionService(&memRepo{err: conflict})

	_, err := svc.Submit(context.Background(), decodeRequest(t, `{"firstName":"Ann","lastName":"Lee","email":"a@x.com"}`))
	require.ErrorIs(t, err, conflict)
}

func TestListRecordsNewestFirst(t *testing.T) {
	repo := &memRepo{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewSubmissionService(repo)

	_, err := svc.Submit(context.Background(), decodeRequest(t, `{"firstName":"Bo","lastName":"Ng","email":"b@x.com"}`))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), decodeRequest(t, `{"firstName":"Ann","lastName":"Lee","email":"a@x.com"}`))
	require.NoError(t, err)

	records, err := svc.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "a@x.com", records[0].Email)
	require.Equal(t, "b@x.com", records[1].Email)
}

func TestDecodeTypeError(t *testing.T) {
	var req dtos.SubmitFormRequest
	err := json.Unmarshal([]byte(`{"firstName":"Ann","age":"old"}`), &req)
	require.Error(t, err)

	verr := DecodeTypeError(err)
	require.NotNil(t, verr)
	require.Contains(t, verr.Fields, "age")

	require.Nil(t, DecodeTypeError(errors.New("unexpected EOF")))
}
