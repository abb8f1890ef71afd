// Package mongo creates the collections, validators and indexes the
// services expect.
package mongo

import (
	"context"
	"fmt"
	"venuebook/internal/migrations/mongo/validators"
	reservationrepo "venuebook/internal/reservations/repository"
	venuerepo "venuebook/internal/venues/repository"
	"venuebook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collection struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

var (
	VenuesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_name_key"),
		},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}}},
	}

	ReservationsIndexes = []mongo.IndexModel{
		// Conflict checks and day grids read every reservation of one venue
		// and date in creation order.
		{Keys: bson.D{
			{Key: "venue_id", Value: 1},
			{Key: "date", Value: 1},
			{Key: "created_at", Value: 1},
		}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{
			{Key: "requester_id", Value: 1},
			{Key: "date", Value: -1},
			{Key: "start_time", Value: -1},
		}},
	}

	ReservationLocksIndexes = []mongo.IndexModel{
		// The reaper is a safety net only; acquisition compares expires_at itself.
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_expires_at"),
		},
	}
)

func Collections() []Collection {
	return []Collection{
		{Name: venuerepo.CollectionName, Indexes: VenuesIndexes, Validator: validators.VenueValidator},
		{Name: reservationrepo.CollectionName, Indexes: ReservationsIndexes, Validator: validators.ReservationValidator},
		{Name: reservationrepo.LockCollectionName, Indexes: ReservationLocksIndexes, Validator: validators.ReservationLockValidator},
	}
}

func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range Collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
