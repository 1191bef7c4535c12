package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "roombook/pkg/errors"
	"roombook/pkg/kafka"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockLockService struct {
	holdFunc    func(ctx context.Context, requestID string, roomID int64, start, end model.Date) (*model.RoomReservationLock, error)
	confirmFunc func(ctx context.Context, requestID string) (*model.RoomReservationLock, error)
	releaseFunc func(ctx context.Context, requestID string) (*model.RoomReservationLock, error)
}

func (m *mockLockService) Hold(ctx context.Context, requestID string, roomID int64, start, end model.Date) (*model.RoomReservationLock, error) {
	return m.holdFunc(ctx, requestID, roomID, start, end)
}

func (m *mockLockService) Confirm(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	return m.confirmFunc(ctx, requestID)
}

func (m *mockLockService) Release(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	return m.releaseFunc(ctx, requestID)
}

type mockRoomService struct {
	rooms []model.RoomView
}

func (m *mockRoomService) ListRooms(ctx context.Context) ([]model.RoomView, error) {
	return m.rooms, nil
}

func (m *mockRoomService) HandleBookingEvent(ctx context.Context, msg kafka.Message) error {
	return nil
}

func newTestRouter(locks *mockLockService, rooms *mockRoomService) *httprouter.Router {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	router := httprouter.New()
	NewRoomHandler(locks, rooms, log).RegisterRoutes(router)
	return router
}

func TestHold_PassesParameters(t *testing.T) {
	var gotRequestID string
	var gotRoomID int64
	var gotStart, gotEnd model.Date
	locks := &mockLockService{
		holdFunc: func(ctx context.Context, requestID string, roomID int64, start, end model.Date) (*model.RoomReservationLock, error) {
			gotRequestID, gotRoomID, gotStart, gotEnd = requestID, roomID, start, end
			return &model.RoomReservationLock{ID: "l1", RequestID: requestID, RoomID: roomID, StartDate: start, EndDate: end, Status: model.LockHeld}, nil
		},
	}
	router := newTestRouter(locks, &mockRoomService{})

	req := httptest.NewRequest(http.MethodPost, "/api/rooms/7/hold?requestId=req-1&startDate=2026-04-01&endDate=2026-04-03", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if gotRequestID != "req-1" || gotRoomID != 7 || gotStart.String() != "2026-04-01" || gotEnd.String() != "2026-04-03" {
		t.Errorf("unexpected parameters: %s %d %s %s", gotRequestID, gotRoomID, gotStart, gotEnd)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "HELD" || body["requestId"] != "req-1" || body["startDate"] != "2026-04-01" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestHold_BadParameters(t *testing.T) {
	called := false
	locks := &mockLockService{
		holdFunc: func(ctx context.Context, requestID string, roomID int64, start, end model.Date) (*model.RoomReservationLock, error) {
			called = true
			return nil, nil
		},
	}
	router := newTestRouter(locks, &mockRoomService{})

	tests := []struct {
		name string
		url  string
	}{
		{name: "non-numeric room", url: "/api/rooms/abc/hold?requestId=r&startDate=2026-04-01&endDate=2026-04-02"},
		{name: "missing request id", url: "/api/rooms/7/hold?startDate=2026-04-01&endDate=2026-04-02"},
		{name: "bad start date", url: "/api/rooms/7/hold?requestId=r&startDate=01-04-2026&endDate=2026-04-02"},
		{name: "missing end date", url: "/api/rooms/7/hold?requestId=r&startDate=2026-04-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.url, nil))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Code != apperrors.CodeInvalidInput {
				t.Errorf("expected INVALID_INPUT body, got %s", w.Body.String())
			}
		})
	}
	if called {
		t.Error("service must not be called on bad parameters")
	}
}

func TestLockErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "conflict", err: apperrors.Conflict("Room unavailable"), wantCode: http.StatusConflict},
		{name: "expired", err: apperrors.Expired("Hold expired"), wantCode: http.StatusConflict},
		{name: "not found", err: apperrors.NotFound("Hold not found"), wantCode: http.StatusNotFound},
		{name: "guard busy", err: apperrors.Unavailable("hotels"), wantCode: http.StatusServiceUnavailable},
		{name: "internal", err: apperrors.Internal("boom", nil), wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locks := &mockLockService{
				confirmFunc: func(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
					return nil, tt.err
				},
			}
			router := newTestRouter(locks, &mockRoomService{})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rooms/confirm?requestId=req-1", nil))

			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}

func TestTransition_Routes(t *testing.T) {
	var confirmed, released string
	locks := &mockLockService{
		confirmFunc: func(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
			confirmed = requestID
			return &model.RoomReservationLock{RequestID: requestID, Status: model.LockConfirmed}, nil
		},
		releaseFunc: func(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
			released = requestID
			return &model.RoomReservationLock{RequestID: requestID, Status: model.LockReleased}, nil
		},
	}
	router := newTestRouter(locks, &mockRoomService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rooms/confirm?requestId=a", nil))
	if w.Code != http.StatusOK || confirmed != "a" {
		t.Errorf("confirm: status %d, requestId %q", w.Code, confirmed)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rooms/release?requestId=b", nil))
	if w.Code != http.StatusOK || released != "b" {
		t.Errorf("release: status %d, requestId %q", w.Code, released)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rooms/cancel?requestId=c", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown action: expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/rooms/confirm", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing requestId: expected 400, got %d", w.Code)
	}
}

func TestList(t *testing.T) {
	rooms := &mockRoomService{rooms: []model.RoomView{{ID: 1, Number: "101", TimesBooked: 2}}}
	router := newTestRouter(&mockLockService{}, rooms)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/rooms", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got []model.RoomView
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 1 || got[0] != rooms.rooms[0] {
		t.Errorf("unexpected rooms: %+v", got)
	}
}
