package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	bookingserrors "roombook/internal/bookings/errors"
	"roombook/internal/bookings/validator"
	"roombook/pkg/client"
	"roombook/pkg/config"
	apperrors "roombook/pkg/errors"
	"roombook/pkg/logger"
	"roombook/pkg/model"
)

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	nextID   int

	beforeCreate func()
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*model.Booking)}
}

func (r *fakeBookingRepo) get(requestID string) *model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[requestID]
	if !ok {
		return nil
	}
	cp := *b
	return &cp
}

func (r *fakeBookingRepo) put(b model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = "booking-" + strconv.Itoa(r.nextID)
	r.bookings[b.RequestID] = &b
}

func (r *fakeBookingRepo) FindByRequestID(ctx context.Context, requestID string) (*model.Booking, error) {
	if b := r.get(requestID); b != nil {
		return b, nil
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[booking.RequestID]; exists {
		return bookingserrors.ErrDuplicateRequestID
	}
	r.nextID++
	booking.ID = "booking-" + strconv.Itoa(r.nextID)
	booking.CreatedAt = time.Now().UTC()
	cp := *booking
	r.bookings[booking.RequestID] = &cp
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, requestID string, status model.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[requestID]
	if !ok || b.Status.IsTerminal() {
		return bookingserrors.ErrNotFound
	}
	b.Status = status
	return nil
}

func (r *fakeBookingRepo) FindByUserID(ctx context.Context, userID int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []model.BookingStatus
	err    error
}

func (p *fakePublisher) PublishBookingEvent(ctx context.Context, booking *model.Booking) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, booking.Status)
	return p.err
}

// fakeHotels is an httptest server speaking the hotels room API. Each
// endpoint answers with its responder; calls are counted per endpoint.
type fakeHotels struct {
	*httptest.Server

	mu         sync.Mutex
	calls      map[string]int
	requestIDs []string

	hold    responder
	confirm responder
	release responder
	rooms   responder
}

type responder func(call int) (int, any)

func lockResponse(status model.LockStatus) responder {
	return func(int) (int, any) {
		return http.StatusOK, model.RoomReservationLock{ID: "lock-1", RequestID: "req-1", Status: status}
	}
}

func errorResponse(code int, errCode, message string) responder {
	return func(int) (int, any) {
		return code, apperrors.ErrorResponse{Error: message, Code: errCode}
	}
}

func newFakeHotels(t *testing.T) *fakeHotels {
	t.Helper()
	h := &fakeHotels{
		calls:   make(map[string]int),
		hold:    lockResponse(model.LockHeld),
		confirm: lockResponse(model.LockConfirmed),
		release: lockResponse(model.LockReleased),
		rooms:   func(int) (int, any) { return http.StatusOK, []model.RoomView{} },
	}
	h.Server = httptest.NewServer(http.HandlerFunc(h.serve))
	t.Cleanup(h.Close)
	return h
}

func (h *fakeHotels) serve(w http.ResponseWriter, r *http.Request) {
	var name string
	var respond responder
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/rooms":
		name, respond = "rooms", h.rooms
	case r.URL.Path == "/api/rooms/confirm":
		name, respond = "confirm", h.confirm
	case r.URL.Path == "/api/rooms/release":
		name, respond = "release", h.release
	default:
		name, respond = "hold", h.hold
	}

	h.mu.Lock()
	h.calls[name]++
	call := h.calls[name]
	h.requestIDs = append(h.requestIDs, r.Header.Get("X-Request-Id"))
	h.mu.Unlock()

	code, body := respond(call)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *fakeHotels) count(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[name]
}

func testConfig(hotelsURL string) *config.Config {
	return &config.Config{
		HotelBaseURL:        hotelsURL,
		HotelTimeout:        time.Second,
		HotelRetries:        3,
		HotelRetryBaseDelay: time.Millisecond,
		Log:                 logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

type testEnv struct {
	svc    BookingService
	repo   *fakeBookingRepo
	hotels *fakeHotels
	events *fakePublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hotels := newFakeHotels(t)
	cfg := testConfig(hotels.URL)
	repo := newFakeBookingRepo()
	events := &fakePublisher{}
	svc := NewBookingService(
		repo,
		client.NewHotelClient(cfg.HotelBaseURL, cfg.HotelTimeout),
		events,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	return &testEnv{svc: svc, repo: repo, hotels: hotels, events: events}
}

func validInput() CreateBookingInput {
	return CreateBookingInput{
		UserID:    42,
		RoomID:    7,
		StartDate: model.NewDate(2026, time.April, 1),
		EndDate:   model.NewDate(2026, time.April, 3),
		RequestID: "req-1",
	}
}
