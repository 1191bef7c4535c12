package repository

import (
	"context"
	"fmt"
	"time"

	hotelserrors "roombook/internal/hotels/errors"
	"roombook/pkg/config"
	mongodb "roombook/pkg/db/mongo"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RoomsCollectionName         = "Rooms"
	AppliedEventsCollectionName = "Room_applied_booking_events"
)

type RoomRepository interface {
	FindAll(ctx context.Context) ([]*model.Room, error)
	// IncrementTimesBooked bumps the room counter once per eventKey. A key
	// seen before returns ErrEventAlreadyApplied.
	IncrementTimesBooked(ctx context.Context, roomID int64, eventKey string) error
}

type mongoRoomRepository struct {
	rooms        *mongo.Collection
	applied      *mongo.Collection
	txManager    mongodb.TransactionManager
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		rooms:        db.Collection(RoomsCollectionName),
		applied:      db.Collection(AppliedEventsCollectionName),
		txManager:    mongodb.NewTransactionManager(cfg.Client.Mongo),
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
	}
}

func (r *mongoRoomRepository) FindAll(ctx context.Context) ([]*model.Room, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, r.readTimeout)
	defer cancel()

	cursor, err := r.rooms.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []*model.Room{}
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

func (r *mongoRoomRepository) IncrementTimesBooked(ctx context.Context, roomID int64, eventKey string) error {
	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		_, err := r.applied.InsertOne(sessCtx, bson.M{
			"_id":        eventKey,
			"room_id":    roomID,
			"applied_at": time.Now().UTC(),
		})
		if err != nil {
			if mongodb.IsDuplicateKey(err) {
				return hotelserrors.ErrEventAlreadyApplied
			}
			return fmt.Errorf("failed to record applied event: %w", err)
		}

		result, err := r.rooms.UpdateOne(sessCtx,
			bson.M{"_id": roomID},
			bson.M{"$inc": bson.M{"times_booked": 1}},
		)
		if err != nil {
			return fmt.Errorf("failed to increment times booked: %w", err)
		}
		if result.MatchedCount == 0 {
			return hotelserrors.ErrRoomNotFound
		}
		return nil
	})
}
