package service

import (
	"context"
	"errors"

	hotelserrors "roombook/internal/hotels/errors"
	"roombook/internal/hotels/repository"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/kafka"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

type RoomService interface {
	ListRooms(ctx context.Context) ([]model.RoomView, error)
	// HandleBookingEvent keeps Room.TimesBooked in step with confirmed
	// bookings. Redelivered events are counted once.
	HandleBookingEvent(ctx context.Context, msg kafka.Message) error
}

type roomService struct {
	rooms repository.RoomRepository
	log   *logger.Logger
}

func NewRoomService(rooms repository.RoomRepository, cfg *config.Config) RoomService {
	return &roomService{
		rooms: rooms,
		log:   cfg.Log,
	}
}

func (s *roomService) ListRooms(ctx context.Context) ([]model.RoomView, error) {
	rooms, err := s.rooms.FindAll(ctx)
	if err != nil {
		s.log.WithContext(ctx).Error("Failed to list rooms", "error", err)
		return nil, apperrors.Internal("Failed to list rooms", err)
	}

	views := make([]model.RoomView, 0, len(rooms))
	for _, room := range rooms {
		views = append(views, room.View())
	}
	return views, nil
}

func (s *roomService) HandleBookingEvent(ctx context.Context, msg kafka.Message) error {
	if msg.GetEventType() != model.EventBookingConfirmed {
		return nil
	}

	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.RequestID == "" || event.RoomID <= 0 {
		return kafka.NewPermanentError("invalid booking event", kafka.ErrInvalidMessage)
	}

	// keyed on the payload so a message missing the event id header still
	// dedupes with the one that carried it
	eventID := model.BookingEventID(model.EventBookingConfirmed, event.RequestID)
	if header := msg.GetEventID(); header != "" && header != eventID {
		s.log.Warn("Booking event id does not match payload", "event_id", header, "expected_event_id", eventID)
	}

	err := s.rooms.IncrementTimesBooked(ctx, event.RoomID, eventID)
	switch {
	case err == nil:
		s.log.Info("Room booking counter incremented",
			"room_id", event.RoomID,
			"event_id", eventID,
			"booking_request_id", event.RequestID,
			"correlation_id", msg.GetCorrelationID(),
		)
		return nil
	case errors.Is(err, hotelserrors.ErrEventAlreadyApplied):
		s.log.Debug("Booking event already applied", "event_id", eventID)
		return nil
	case errors.Is(err, hotelserrors.ErrRoomNotFound):
		return kafka.NewPermanentError("room not found for booking event", err)
	default:
		return kafka.NewTransientError("failed to apply booking event", err)
	}
}
