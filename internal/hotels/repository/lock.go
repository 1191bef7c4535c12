package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	hotelserrors "roombook/internal/hotels/errors"
	"roombook/pkg/config"
	mongodb "roombook/pkg/db/mongo"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const LocksCollectionName = "Room_reservation_locks"

type LockRepository interface {
	FindByRequestID(ctx context.Context, requestID string) (*model.RoomReservationLock, error)
	Create(ctx context.Context, lock *model.RoomReservationLock) error
	// UpdateStatus moves the lock from one status to another. ErrNotFound
	// means no lock with requestID is currently in status from.
	UpdateStatus(ctx context.Context, requestID string, from, to model.LockStatus) error
	FindOverlapping(ctx context.Context, roomID int64, statuses []model.LockStatus, start, end model.Date) ([]*model.RoomReservationLock, error)
	ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error
}

type mongoLockRepository struct {
	collection   *mongo.Collection
	txManager    mongodb.TransactionManager
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoLockRepository(cfg *config.Config) LockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockRepository{
		collection:   db.Collection(LocksCollectionName),
		txManager:    mongodb.NewTransactionManager(cfg.Client.Mongo),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

func (r *mongoLockRepository) FindByRequestID(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	var lock model.RoomReservationLock
	err := r.collection.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, hotelserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation lock: %w", err)
	}
	return &lock, nil
}

func (r *mongoLockRepository) Create(ctx context.Context, lock *model.RoomReservationLock) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongodb.IsDuplicateKey(err) {
			return hotelserrors.ErrDuplicateRequestID
		}
		return fmt.Errorf("failed to create reservation lock: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		lock.ID = oid.Hex()
	}
	return nil
}

func (r *mongoLockRepository) UpdateStatus(ctx context.Context, requestID string, from, to model.LockStatus) error {
	ctx, cancel := mongodb.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"request_id": requestID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation lock: %w", err)
	}
	if result.MatchedCount == 0 {
		return hotelserrors.ErrNotFound
	}
	return nil
}

// FindOverlapping returns locks on roomID in one of statuses whose range
// shares at least one day with [start, end].
func (r *mongoLockRepository) FindOverlapping(ctx context.Context, roomID int64, statuses []model.LockStatus, start, end model.Date) ([]*model.RoomReservationLock, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	filter := bson.M{
		"room_id":    roomID,
		"status":     bson.M{"$in": statuses},
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping locks: %w", err)
	}
	defer cursor.Close(ctx)

	var locks []*model.RoomReservationLock
	if err := cursor.All(ctx, &locks); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping locks: %w", err)
	}
	return locks, nil
}

func (r *mongoLockRepository) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
