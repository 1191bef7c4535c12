package service

import (
	"context"
	"errors"
	"sort"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/repository"
	"roombook/internal/bookings/validator"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/retry"
	"roombook/pkg/validation"

	"github.com/google/uuid"
)

// HotelGateway is the hotels room lock API as seen by the orchestrator.
// *client.HotelClient implements it.
type HotelGateway interface {
	Hold(ctx context.Context, requestID string, roomID int64, start, end model.Date) (*model.RoomReservationLock, error)
	Confirm(ctx context.Context, requestID string) (*model.RoomReservationLock, error)
	Release(ctx context.Context, requestID string) (*model.RoomReservationLock, error)
	ListRooms(ctx context.Context) ([]model.RoomView, error)
}

type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, booking *model.Booking) error
}

type CreateBookingInput struct {
	UserID    int64
	RoomID    int64
	StartDate model.Date
	EndDate   model.Date
	RequestID string
}

type BookingService interface {
	// CreateBooking runs the hold/confirm saga for a new request id. Once the
	// booking is stored the result is always a booking and a nil error; a
	// failed saga shows up as status CANCELLED.
	CreateBooking(ctx context.Context, input CreateBookingInput) (*model.Booking, error)
	ListUserBookings(ctx context.Context, userID int64) ([]*model.Booking, error)
	// GetRoomSuggestions ranks rooms by how often they were booked.
	GetRoomSuggestions(ctx context.Context) ([]model.RoomView, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	hotels    HotelGateway
	events    EventPublisher
	validator *validator.BookingValidator
	policy    retry.Policy
	log       *logger.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	hotels HotelGateway,
	events EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		hotels:    hotels,
		events:    events,
		validator: validator,
		policy: retry.Policy{
			MaxAttempts: cfg.HotelRetries,
			BaseDelay:   cfg.HotelRetryBaseDelay,
		},
		log: cfg.Log,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*model.Booking, error) {
	if err := s.validator.Validate(&validator.BookingInput{
		RequestID: input.RequestID,
		UserID:    input.UserID,
		RoomID:    input.RoomID,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}); err != nil {
		return nil, validationError(err)
	}

	log := s.log.WithContext(ctx).With("booking_request_id", input.RequestID)

	existing, err := s.repo.FindByRequestID(ctx, input.RequestID)
	if err == nil {
		log.Info("Booking replayed for existing request", "booking_id", existing.ID, "status", existing.Status)
		return existing, nil
	}
	if !errors.Is(err, bookingserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to look up booking", err)
	}

	booking := &model.Booking{
		RequestID:     input.RequestID,
		UserID:        input.UserID,
		RoomID:        input.RoomID,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Status:        model.BookingPending,
		CorrelationID: uuid.New().String(),
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrDuplicateRequestID) {
			// a concurrent request with the same key stored it first
			existing, findErr := s.repo.FindByRequestID(ctx, input.RequestID)
			if findErr != nil {
				return nil, apperrors.Internal("Failed to read concurrent booking", findErr)
			}
			return existing, nil
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	log = log.With("booking_id", booking.ID, "correlation_id", booking.CorrelationID)
	log.Info("Booking created", "room_id", booking.RoomID, "start_date", booking.StartDate, "end_date", booking.EndDate)

	booking.Status = s.runSaga(ctx, booking, log)
	s.finish(ctx, booking, log)
	return booking, nil
}

// runSaga holds then confirms the room. Any failure releases the hold once
// and yields CANCELLED.
func (s *bookingService) runSaga(ctx context.Context, booking *model.Booking, log *logger.Logger) model.BookingStatus {
	_, err := s.call(ctx, "hold", log, func(ctx context.Context) (*model.RoomReservationLock, error) {
		return s.hotels.Hold(ctx, booking.RequestID, booking.RoomID, booking.StartDate, booking.EndDate)
	})
	if err == nil {
		_, err = s.call(ctx, "confirm", log, func(ctx context.Context) (*model.RoomReservationLock, error) {
			return s.hotels.Confirm(ctx, booking.RequestID)
		})
		if err == nil {
			return model.BookingConfirmed
		}
		log.Warn("Confirm failed, compensating", "error", err)
	} else {
		log.Warn("Hold failed, compensating", "error", err)
	}

	s.compensate(ctx, booking, log)
	return model.BookingCancelled
}

// compensate releases whatever the hotels service may hold for the booking.
// The outcome never changes the booking result.
func (s *bookingService) compensate(ctx context.Context, booking *model.Booking, log *logger.Logger) {
	ctx = context.WithoutCancel(ctx)
	_, err := s.call(ctx, "release", log, func(ctx context.Context) (*model.RoomReservationLock, error) {
		return s.hotels.Release(ctx, booking.RequestID)
	})
	switch {
	case err == nil:
		log.Info("Hold released")
	case apperrors.HasCode(err, apperrors.CodeNotFound):
		log.Info("Nothing to release")
	default:
		log.Error("Release failed, hold left to expire", "error", err)
	}
}

func (s *bookingService) finish(ctx context.Context, booking *model.Booking, log *logger.Logger) {
	ctx = context.WithoutCancel(ctx)
	err := s.repo.UpdateStatus(ctx, booking.RequestID, booking.Status)
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		log.Warn("Booking already finished, status not overwritten", "status", booking.Status)
		return
	case err != nil:
		log.Error("Failed to persist booking status", "status", booking.Status, "error", err)
	default:
		log.Info("Booking finished", "status", booking.Status)
	}

	if err := s.events.PublishBookingEvent(ctx, booking); err != nil {
		log.Warn("Failed to publish booking event", "status", booking.Status, "error", err)
	}
}

func (s *bookingService) call(ctx context.Context, op string, log *logger.Logger, fn func(ctx context.Context) (*model.RoomReservationLock, error)) (*model.RoomReservationLock, error) {
	return retry.Do(ctx, s.policy, fn, apperrors.IsRetryable, func(attempt int, err error) {
		log.Warn("Hotels call failed, retrying", "operation", op, "attempt", attempt, "error", err)
	})
}

func (s *bookingService) ListUserBookings(ctx context.Context, userID int64) ([]*model.Booking, error) {
	if userID <= 0 {
		return nil, apperrors.InvalidInput("user id must be positive")
	}
	bookings, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		s.log.WithContext(ctx).Error("Failed to list bookings", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) GetRoomSuggestions(ctx context.Context) ([]model.RoomView, error) {
	log := s.log.WithContext(ctx)
	rooms, err := retry.Do(ctx, s.policy, s.hotels.ListRooms, apperrors.IsRetryable, func(attempt int, err error) {
		log.Warn("Hotels call failed, retrying", "operation", "list_rooms", "attempt", attempt, "error", err)
	})
	if err != nil {
		log.Error("Failed to fetch rooms for suggestions", "error", err)
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Transport("Failed to fetch rooms", err)
	}

	sorted := make([]model.RoomView, len(rooms))
	copy(sorted, rooms)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TimesBooked != sorted[j].TimesBooked {
			return sorted[i].TimesBooked > sorted[j].TimesBooked
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted, nil
}

func validationError(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Invalid booking request", verrs.Details())
	}
	return apperrors.Validation(err.Error(), nil)
}

