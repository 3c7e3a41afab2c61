package app

import (
	"context"
	"fmt"
	"time"

	"github.com/geoform/intake-service/internal/models"
	"github.com/geoform/intake-service/internal/repositories"
	"github.com/geoform/intake-service/internal/utils"
)

// SeedTestData inserts a couple of sample submissions when the collection
// is empty, so dashboards have something to render in dev environments.
func SeedTestData(ctx context.Context, repo repositories.RecordRepository) error {
	existing, err := repo.FindAllOrderedByTime(ctx)
	if err != nil {
		return fmt.Errorf("check existing records: %w", err)
	}
	if len(existing) > 0 {
		utils.Logger.Infof("seeding: %d records already present; skipping", len(existing))
		return nil
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	seeds := []*models.Record{
		{
			FirstName:        "Test",
			LastName:         "Submitter",
			Email:            "test.submitter@example.com",
			LocationCaptured: utils.Ptr(false),
			SubmittedAt:      now.Add(-time.Hour),
		},
		{
			FirstName: "Test",
			LastName:  "Located",
			Email:     "test.located@example.com",
			Location: &models.Location{
				Latitude:  utils.Ptr(39.7392),
				Longitude: utils.Ptr(-104.9903),
				Accuracy:  utils.Ptr(12.0),
				Timestamp: utils.Ptr(now.Add(-30 * time.Minute)),
			},
			ExactLocationData: &models.ExactLocationData{
				FullAddress: "Denver, CO, USA",
				PlaceID:     "seed-place-denver",
				Types:       []string{"locality", "political"},
			},
			LocationCaptured: utils.Ptr(true),
			SubmittedAt:      now,
		},
	}

	for _, rec := range seeds {
		if _, err := repo.Insert(ctx, rec); err != nil {
			return fmt.Errorf("seed record %s: %w", rec.Email, err)
		}
	}
	utils.Logger.Infof("seeding: inserted %d test records", len(seeds))
	return nil
}
