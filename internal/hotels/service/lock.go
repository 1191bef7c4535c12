package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	hotelserrors "roombook/internal/hotels/errors"
	"roombook/internal/hotels/repository"
	"roombook/internal/hotels/validator"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
	"roombook/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
)

// maxTransitionAttempts bounds re-reads when a concurrent call moved the
// lock between our read and our conditional update.
const maxTransitionAttempts = 3

// RoomLockService is the hold/confirm/release state machine, one lock per
// request id. HELD is the only non-terminal state.
type RoomLockService interface {
	Hold(ctx context.Context, requestID string, roomID int64, start, end model.Date) (*model.RoomReservationLock, error)
	Confirm(ctx context.Context, requestID string) (*model.RoomReservationLock, error)
	Release(ctx context.Context, requestID string) (*model.RoomReservationLock, error)
}

type roomLockService struct {
	locks     repository.LockRepository
	guards    repository.HoldGuardRepository
	validator *validator.HoldValidator
	guardTTL  time.Duration
	log       *logger.Logger
	today     func() model.Date
}

func NewRoomLockService(
	locks repository.LockRepository,
	guards repository.HoldGuardRepository,
	validator *validator.HoldValidator,
	cfg *config.Config,
) RoomLockService {
	return &roomLockService{
		locks:     locks,
		guards:    guards,
		validator: validator,
		guardTTL:  cfg.HoldGuardTTL,
		log:       cfg.Log,
		today:     model.Today,
	}
}

func (s *roomLockService) Hold(ctx context.Context, requestID string, roomID int64, start, end model.Date) (*model.RoomReservationLock, error) {
	log := s.log.WithContext(ctx)

	if requestID != "" {
		existing, err := s.locks.FindByRequestID(ctx, requestID)
		if err == nil {
			log.Info("Hold replayed for existing request", "hold_request_id", requestID, "status", existing.Status)
			return existing, nil
		}
		if !errors.Is(err, hotelserrors.ErrNotFound) {
			return nil, apperrors.Internal("Failed to look up hold", err)
		}
	}

	// only a new hold is validated; a replay answers with the stored lock
	if err := s.validator.Validate(&model.HoldParams{
		RequestID: requestID,
		RoomID:    roomID,
		StartDate: start,
		EndDate:   end,
	}); err != nil {
		return nil, invalidInput(err)
	}

	guard, err := s.guards.Acquire(ctx, roomID, requestID, s.guardTTL)
	if err != nil {
		if errors.Is(err, hotelserrors.ErrGuardBusy) {
			log.Warn("Room hold guard busy", "room_id", roomID, "hold_request_id", requestID)
			return nil, apperrors.New(apperrors.CodeUnavailable, "Room is being held by another request, retry later", http.StatusServiceUnavailable)
		}
		return nil, apperrors.Internal("Failed to acquire room hold guard", err)
	}
	defer func() {
		if releaseErr := s.guards.Release(context.WithoutCancel(ctx), guard); releaseErr != nil {
			log.Warn("Failed to release room hold guard", "guard_id", guard.ID, "error", releaseErr)
		}
	}()

	lock := &model.RoomReservationLock{
		RequestID: requestID,
		RoomID:    roomID,
		StartDate: start,
		EndDate:   end,
		Status:    model.LockHeld,
		ExpiresAt: s.today().AddDays(1),
	}

	err = s.locks.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		overlapping, err := s.locks.FindOverlapping(sessCtx, roomID, model.ActiveLockStatuses, start, end)
		if err != nil {
			return apperrors.Internal("Failed to check room availability", err)
		}
		if len(overlapping) > 0 {
			return apperrors.Conflict("Room unavailable")
		}
		lock.ID = "" // the callback reruns on transient transaction errors
		return s.locks.Create(sessCtx, lock)
	})
	if errors.Is(err, hotelserrors.ErrDuplicateRequestID) {
		// lost the insert race on the same request id
		existing, findErr := s.locks.FindByRequestID(ctx, requestID)
		if findErr != nil {
			return nil, apperrors.Internal("Failed to read concurrent hold", findErr)
		}
		return existing, nil
	}
	if err != nil {
		if apperrors.IsAppError(err) {
			log.Info("Hold rejected", "room_id", roomID, "hold_request_id", requestID, "error", err)
			return nil, err
		}
		return nil, apperrors.Internal("Failed to create hold", err)
	}

	log.Info("Room held",
		"room_id", roomID,
		"hold_request_id", requestID,
		"start_date", start,
		"end_date", end,
		"expires_at", lock.ExpiresAt,
	)
	return lock, nil
}

func (s *roomLockService) Confirm(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	if requestID == "" {
		return nil, apperrors.InvalidInput("requestId is required")
	}
	log := s.log.WithContext(ctx)

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		lock, err := s.find(ctx, requestID)
		if err != nil {
			return nil, err
		}

		switch lock.Status {
		case model.LockConfirmed:
			return lock, nil
		case model.LockReleased:
			return nil, apperrors.Conflict("Hold already released")
		}

		if lock.IsExpired(s.today()) {
			err := s.locks.UpdateStatus(ctx, requestID, model.LockHeld, model.LockReleased)
			if errors.Is(err, hotelserrors.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, apperrors.Internal("Failed to release expired hold", err)
			}
			log.Info("Hold expired before confirmation", "hold_request_id", requestID, "expires_at", lock.ExpiresAt)
			return nil, apperrors.Expired("Hold expired")
		}

		err = s.locks.UpdateStatus(ctx, requestID, model.LockHeld, model.LockConfirmed)
		if errors.Is(err, hotelserrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.Internal("Failed to confirm hold", err)
		}

		lock.Status = model.LockConfirmed
		log.Info("Hold confirmed", "hold_request_id", requestID, "room_id", lock.RoomID)
		return lock, nil
	}

	return nil, apperrors.Conflict("Hold changed concurrently, retry")
}

func (s *roomLockService) Release(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	if requestID == "" {
		return nil, apperrors.InvalidInput("requestId is required")
	}

	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		lock, err := s.find(ctx, requestID)
		if err != nil {
			return nil, err
		}
		if lock.Status != model.LockHeld {
			return lock, nil
		}

		err = s.locks.UpdateStatus(ctx, requestID, model.LockHeld, model.LockReleased)
		if errors.Is(err, hotelserrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperrors.Internal("Failed to release hold", err)
		}

		lock.Status = model.LockReleased
		s.log.WithContext(ctx).Info("Hold released", "hold_request_id", requestID, "room_id", lock.RoomID)
		return lock, nil
	}

	return nil, apperrors.Conflict("Hold changed concurrently, retry")
}

func (s *roomLockService) find(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	lock, err := s.locks.FindByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, hotelserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Hold not found")
		}
		return nil, apperrors.Internal("Failed to look up hold", err)
	}
	return lock, nil
}

func invalidInput(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.InvalidInput("Invalid hold parameters").WithDetails(verrs.Details())
	}
	return apperrors.InvalidInput(err.Error())
}
