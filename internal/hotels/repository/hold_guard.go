package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	hotelserrors "roombook/internal/hotels/errors"
	"roombook/pkg/config"
	mongodb "roombook/pkg/db/mongo"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const HoldGuardsCollectionName = "Room_hold_guards"

// HoldGuardRepository manages the per-room advisory lock taken around the
// overlap check and insert of a hold.
type HoldGuardRepository interface {
	Acquire(ctx context.Context, roomID int64, owner string, ttl time.Duration) (*model.HoldGuard, error)
	Release(ctx context.Context, guard *model.HoldGuard) error
}

type mongoHoldGuardRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoHoldGuardRepository(cfg *config.Config) HoldGuardRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHoldGuardRepository{
		collection: db.Collection(HoldGuardsCollectionName),
		timeout:    cfg.WriteTimeout,
	}
}

func HoldGuardID(roomID int64) string {
	return "room_hold_" + strconv.FormatInt(roomID, 10)
}

// Acquire inserts the guard document. A live guard from another owner makes
// the insert fail with a duplicate key, reported as ErrGuardBusy. A guard
// past its expiry is taken over, since the TTL monitor only sweeps once a
// minute.
func (r *mongoHoldGuardRepository) Acquire(ctx context.Context, roomID int64, owner string, ttl time.Duration) (*model.HoldGuard, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	guard := &model.HoldGuard{
		ID:        HoldGuardID(roomID),
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, guard)
	if err == nil {
		return guard, nil
	}
	if !mongodb.IsDuplicateKey(err) {
		return nil, fmt.Errorf("failed to acquire hold guard: %w", err)
	}

	result, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": guard.ID, "expires_at": bson.M{"$lt": now}},
		guard,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to take over stale hold guard: %w", err)
	}
	if result.ModifiedCount == 0 {
		return nil, hotelserrors.ErrGuardBusy
	}
	return guard, nil
}

func (r *mongoHoldGuardRepository) Release(ctx context.Context, guard *model.HoldGuard) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": guard.ID, "owner": guard.Owner})
	if err != nil {
		return fmt.Errorf("failed to release hold guard: %w", err)
	}
	return nil
}
