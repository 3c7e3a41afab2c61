package app

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geoform/intake-service/internal/config"
	"github.com/geoform/intake-service/internal/repositories"
	"github.com/geoform/intake-service/internal/utils"
)

const disconnectTimeout = 5 * time.Second

// App owns the database client and the storage gateway built on it.
type App struct {
	Config  *config.Config
	Mongo   *mongo.Client
	Records *repositories.MongoRecordRepository
}

// NewApp opens the MongoDB client once. An unreachable server is logged and
// tolerated: requests fail at the gateway until it becomes reachable.
func NewApp(cfg *config.Config) (*App, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName(cfg.AppName).
		SetConnectTimeout(cfg.MongoConnectTimeout)

	client, err := mongo.Connect(context.Background(), clientOpts)
	if err != nil {
		return nil, fmt.Errorf("creating MongoDB client: %w", err)
	}

	coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
	a := &App{
		Config:  cfg,
		Mongo:   client,
		Records: repositories.NewRecordRepository(coll),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnectTimeout)
	defer cancel()

	if err := a.Records.Ping(ctx); err != nil {
		utils.Logger.WithError(err).Error("MongoDB connection error")
		return a, nil
	}
	utils.Logger.Infof("MongoDB connected successfully (db=%s, collection=%s)", a.Records.DatabaseName(), a.Records.CollectionName())

	a.prepareCollection(ctx)

	if cfg.LDFlag_SeedDbWithTestData {
		if err := SeedTestData(ctx, a.Records); err != nil {
			utils.Logger.WithError(err).Error("Failed to seed test data")
		}
	}
	return a, nil
}

func (a *App) prepareCollection(ctx context.Context) {
	if a.Config.MongoEnforceSchema {
		if err := a.Records.EnsureSchema(ctx); err != nil {
			utils.Logger.WithError(err).Warn("Could not install collection validator")
		}
	}
	if err := a.Records.EnsureIndexes(ctx, a.Config.MongoUniqueEmail); err != nil {
		utils.Logger.WithError(err).Warn("Could not create indexes")
	}
}

func (a *App) Close() {
	if a.Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	if err := a.Mongo.Disconnect(ctx); err != nil {
		utils.Logger.WithError(err).Error("Error disconnecting from MongoDB")
		return
	}
	utils.Logger.Info("MongoDB connection closed.")
}
