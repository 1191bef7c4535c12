package service

import (
	"context"
	"testing"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/model"
)

func TestHold_CreatesHeldLock(t *testing.T) {
	svc, locks, guards := newTestLockService()

	lock, err := svc.Hold(context.Background(), "req-1", 7, day(1), day(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if lock.Status != model.LockHeld {
		t.Errorf("expected HELD, got %s", lock.Status)
	}
	if !lock.ExpiresAt.Equal(testToday.AddDays(1)) {
		t.Errorf("expected expiresAt %s, got %s", testToday.AddDays(1), lock.ExpiresAt)
	}
	if lock.ID == "" {
		t.Error("expected id to be assigned")
	}
	if stored := locks.get("req-1"); stored == nil || stored.Status != model.LockHeld {
		t.Errorf("expected stored HELD lock, got %+v", stored)
	}
	if guards.acquired != 1 || guards.released != 1 {
		t.Errorf("expected guard acquired and released once, got %d/%d", guards.acquired, guards.released)
	}
}

func TestHold_SameRequestIDReturnsOriginalLock(t *testing.T) {
	svc, _, guards := newTestLockService()
	ctx := context.Background()

	first, err := svc.Hold(ctx, "req-1", 7, day(1), day(3))
	if err != nil {
		t.Fatalf("first hold: %v", err)
	}

	// different dates are not re-validated against the stored lock
	second, err := svc.Hold(ctx, "req-1", 7, day(20), day(25))
	if err != nil {
		t.Fatalf("second hold: %v", err)
	}
	if second.ID != first.ID || !second.StartDate.Equal(day(1)) || !second.EndDate.Equal(day(3)) {
		t.Errorf("expected original lock, got %+v", second)
	}
	if guards.acquired != 1 {
		t.Errorf("replayed hold must not take the guard, acquired=%d", guards.acquired)
	}
}

func TestHold_ReplayIgnoresInvalidDates(t *testing.T) {
	svc, locks, _ := newTestLockService()
	ctx := context.Background()

	first, err := svc.Hold(ctx, "req-1", 7, day(1), day(3))
	if err != nil {
		t.Fatalf("first hold: %v", err)
	}

	// end before start would fail validation on a fresh hold
	second, err := svc.Hold(ctx, "req-1", 7, day(5), day(2))
	if err != nil {
		t.Fatalf("expected replay of the stored lock, got %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected lock %s, got %s", first.ID, second.ID)
	}
	if len(locks.locks) != 1 {
		t.Errorf("expected a single stored lock, got %d", len(locks.locks))
	}
}

func TestHold_OverlapRules(t *testing.T) {
	tests := []struct {
		name         string
		existing     *model.RoomReservationLock
		roomID       int64
		start, end   model.Date
		wantConflict bool
	}{
		{
			name:         "same range held",
			existing:     &model.RoomReservationLock{RequestID: "other", RoomID: 7, StartDate: day(1), EndDate: day(3), Status: model.LockHeld},
			roomID:       7, start: day(1), end: day(3),
			wantConflict: true,
		},
		{
			name:         "touching end day is inclusive",
			existing:     &model.RoomReservationLock{RequestID: "other", RoomID: 7, StartDate: day(1), EndDate: day(3), Status: model.LockHeld},
			roomID:       7, start: day(3), end: day(5),
			wantConflict: true,
		},
		{
			name:         "confirmed lock blocks",
			existing:     &model.RoomReservationLock{RequestID: "other", RoomID: 7, StartDate: day(1), EndDate: day(3), Status: model.LockConfirmed},
			roomID:       7, start: day(2), end: day(2),
			wantConflict: true,
		},
		{
			name:     "released lock does not block",
			existing: &model.RoomReservationLock{RequestID: "other", RoomID: 7, StartDate: day(1), EndDate: day(3), Status: model.LockReleased},
			roomID:   7, start: day(1), end: day(3),
		},
		{
			name:     "next day is free",
			existing: &model.RoomReservationLock{RequestID: "other", RoomID: 7, StartDate: day(1), EndDate: day(3), Status: model.LockHeld},
			roomID:   7, start: day(4), end: day(6),
		},
		{
			name:     "other room is free",
			existing: &model.RoomReservationLock{RequestID: "other", RoomID: 8, StartDate: day(1), EndDate: day(3), Status: model.LockHeld},
			roomID:   7, start: day(1), end: day(3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, locks, guards := newTestLockService()
			locks.put(*tt.existing)

			lock, err := svc.Hold(context.Background(), "req-new", tt.roomID, tt.start, tt.end)
			if tt.wantConflict {
				if !apperrors.HasCode(err, apperrors.CodeConflict) {
					t.Fatalf("expected CONFLICT, got lock=%+v err=%v", lock, err)
				}
				if apperrors.AsAppError(err).Message != "Room unavailable" {
					t.Errorf("unexpected message %q", apperrors.AsAppError(err).Message)
				}
				if locks.get("req-new") != nil {
					t.Error("conflicting hold must not be stored")
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if guards.released != 1 {
				t.Errorf("guard must be released, released=%d", guards.released)
			}
		})
	}
}

func TestHold_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		requestID  string
		roomID     int64
		start, end model.Date
	}{
		{name: "end before start", requestID: "req-1", roomID: 7, start: day(5), end: day(4)},
		{name: "missing request id", requestID: "", roomID: 7, start: day(1), end: day(2)},
		{name: "non-positive room", requestID: "req-1", roomID: 0, start: day(1), end: day(2)},
		{name: "missing dates", requestID: "req-1", roomID: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, locks, _ := newTestLockService()
			_, err := svc.Hold(context.Background(), tt.requestID, tt.roomID, tt.start, tt.end)
			if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if len(locks.locks) != 0 {
				t.Error("invalid hold must not be stored")
			}
		})
	}
}

func TestHold_GuardBusyIsRetryable(t *testing.T) {
	svc, _, guards := newTestLockService()
	guards.busy[7] = true

	_, err := svc.Hold(context.Background(), "req-1", 7, day(1), day(2))
	if !apperrors.HasCode(err, apperrors.CodeUnavailable) || !apperrors.IsRetryable(err) {
		t.Fatalf("expected retryable SERVICE_UNAVAILABLE, got %v", err)
	}
}

func TestHold_InsertRaceReturnsWinner(t *testing.T) {
	svc, locks, _ := newTestLockService()
	locks.beforeCreate = func() {
		locks.beforeCreate = nil
		locks.put(model.RoomReservationLock{RequestID: "req-1", RoomID: 7, StartDate: day(1), EndDate: day(2), Status: model.LockHeld})
	}

	lock, err := svc.Hold(context.Background(), "req-1", 7, day(1), day(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lock.ID != locks.get("req-1").ID {
		t.Errorf("expected the concurrently stored lock, got %+v", lock)
	}
}

func TestHold_AfterReleaseRoomIsFreeAgain(t *testing.T) {
	svc, _, _ := newTestLockService()
	ctx := context.Background()

	if _, err := svc.Hold(ctx, "req-1", 7, day(1), day(3)); err != nil {
		t.Fatalf("hold: %v", err)
	}
	if _, err := svc.Hold(ctx, "req-2", 7, day(2), day(4)); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected conflict while held, got %v", err)
	}
	if _, err := svc.Release(ctx, "req-1"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := svc.Hold(ctx, "req-2", 7, day(2), day(4)); err != nil {
		t.Fatalf("expected hold after release to succeed, got %v", err)
	}
}

func TestConfirm_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		existing   *model.RoomReservationLock
		wantCode   string
		wantStatus model.LockStatus
		stored     model.LockStatus
	}{
		{
			name:     "not found",
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:       "held becomes confirmed",
			existing:   &model.RoomReservationLock{RequestID: "req-1", Status: model.LockHeld, ExpiresAt: testToday.AddDays(1)},
			wantStatus: model.LockConfirmed,
			stored:     model.LockConfirmed,
		},
		{
			name:       "expiring today is still valid",
			existing:   &model.RoomReservationLock{RequestID: "req-1", Status: model.LockHeld, ExpiresAt: testToday},
			wantStatus: model.LockConfirmed,
			stored:     model.LockConfirmed,
		},
		{
			name:       "confirmed is a no-op",
			existing:   &model.RoomReservationLock{RequestID: "req-1", Status: model.LockConfirmed, ExpiresAt: testToday.AddDays(-5)},
			wantStatus: model.LockConfirmed,
			stored:     model.LockConfirmed,
		},
		{
			name:     "released is rejected",
			existing: &model.RoomReservationLock{RequestID: "req-1", Status: model.LockReleased, ExpiresAt: testToday.AddDays(1)},
			wantCode: apperrors.CodeConflict,
			stored:   model.LockReleased,
		},
		{
			name:     "expired hold is released",
			existing: &model.RoomReservationLock{RequestID: "req-1", Status: model.LockHeld, ExpiresAt: testToday.AddDays(-1)},
			wantCode: apperrors.CodeExpired,
			stored:   model.LockReleased,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, locks, _ := newTestLockService()
			if tt.existing != nil {
				locks.put(*tt.existing)
			}

			lock, err := svc.Confirm(context.Background(), "req-1")
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got lock=%+v err=%v", tt.wantCode, lock, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if lock.Status != tt.wantStatus {
					t.Errorf("expected %s, got %s", tt.wantStatus, lock.Status)
				}
			}
			if tt.existing != nil {
				if got := locks.get("req-1").Status; got != tt.stored {
					t.Errorf("expected stored status %s, got %s", tt.stored, got)
				}
			}
		})
	}
}

func TestConfirm_ReleasedConcurrently(t *testing.T) {
	svc, locks, _ := newTestLockService()
	locks.put(model.RoomReservationLock{RequestID: "req-1", Status: model.LockHeld, ExpiresAt: testToday.AddDays(1)})
	locks.beforeUpdateStatus = func() {
		locks.mu.Lock()
		locks.locks["req-1"].Status = model.LockReleased
		locks.mu.Unlock()
	}

	_, err := svc.Confirm(context.Background(), "req-1")
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("expected CONFLICT after concurrent release, got %v", err)
	}
	if got := locks.get("req-1").Status; got != model.LockReleased {
		t.Errorf("expected RELEASED to stick, got %s", got)
	}
}

func TestRelease_Transitions(t *testing.T) {
	tests := []struct {
		name     string
		existing *model.RoomReservationLock
		wantCode string
		want     model.LockStatus
	}{
		{name: "not found", wantCode: apperrors.CodeNotFound},
		{name: "held becomes released", existing: &model.RoomReservationLock{RequestID: "req-1", Status: model.LockHeld}, want: model.LockReleased},
		{name: "released is idempotent", existing: &model.RoomReservationLock{RequestID: "req-1", Status: model.LockReleased}, want: model.LockReleased},
		{name: "confirmed stays confirmed", existing: &model.RoomReservationLock{RequestID: "req-1", Status: model.LockConfirmed}, want: model.LockConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, locks, _ := newTestLockService()
			if tt.existing != nil {
				locks.put(*tt.existing)
			}

			lock, err := svc.Release(context.Background(), "req-1")
			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if lock.Status != tt.want || locks.get("req-1").Status != tt.want {
				t.Errorf("expected %s, got returned=%s stored=%s", tt.want, lock.Status, locks.get("req-1").Status)
			}
		})
	}
}

func TestRelease_Twice(t *testing.T) {
	svc, locks, _ := newTestLockService()
	locks.put(model.RoomReservationLock{RequestID: "req-1", Status: model.LockHeld})

	for i := 0; i < 2; i++ {
		lock, err := svc.Release(context.Background(), "req-1")
		if err != nil || lock.Status != model.LockReleased {
			t.Fatalf("release %d: lock=%+v err=%v", i+1, lock, err)
		}
	}
}
