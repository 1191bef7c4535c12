package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"roombook/internal/migrations/mongo/validators"
	"roombook/pkg/logger"
)

// Collection names are shared with the repositories of both services.
const (
	BookingsCollection      = "Bookings"
	RoomsCollection         = "Rooms"
	LocksCollection         = "Room_reservation_locks"
	HoldGuardsCollection    = "Room_hold_guards"
	AppliedEventsCollection = "Room_applied_booking_events"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_request_id"),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	LocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_request_id"),
		},
		{Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "start_date", Value: 1},
			{Key: "end_date", Value: 1},
		}},
	}

	// expired guards are swept by the TTL monitor; Acquire also takes over
	// an expired guard that is still present
	HoldGuardsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	AppliedEventsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "applied_at", Value: 1}}},
	}
)

type collectionDef struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// RunMigration creates the collections with their schema validators and
// indexes. It is safe to run repeatedly.
func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	collections := map[string]collectionDef{
		BookingsCollection:      {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		RoomsCollection:         {Validator: validators.RoomValidator},
		LocksCollection:         {Indexes: LocksIndexes, Validator: validators.ReservationLockValidator},
		HoldGuardsCollection:    {Indexes: HoldGuardsIndexes, Validator: validators.HoldGuardValidator},
		AppliedEventsCollection: {Indexes: AppliedEventsIndexes},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
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
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}
	log.Info("Collection exists, updating validator", "collection", name)
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
	if len(models) == 0 {
		return nil
	}
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
