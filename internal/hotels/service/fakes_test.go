package service

import (
	"context"
	"io"
	"strconv"
	"sync"
	"time"

	hotelserrors "roombook/internal/hotels/errors"
	"roombook/internal/hotels/validator"
	"roombook/pkg/config"
	mongodb "roombook/pkg/db/mongo"
	"roombook/pkg/logger"
	"roombook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type fakeLockRepo struct {
	mu     sync.Mutex
	locks  map[string]*model.RoomReservationLock
	nextID int

	// hooks run before the matching call takes the lock
	beforeCreate       func()
	beforeUpdateStatus func()
}

func newFakeLockRepo() *fakeLockRepo {
	return &fakeLockRepo{locks: make(map[string]*model.RoomReservationLock)}
}

func (r *fakeLockRepo) put(lock model.RoomReservationLock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	lock.ID = "lock-" + strconv.Itoa(r.nextID)
	r.locks[lock.RequestID] = &lock
}

func (r *fakeLockRepo) get(requestID string) *model.RoomReservationLock {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[requestID]
	if !ok {
		return nil
	}
	cp := *lock
	return &cp
}

func (r *fakeLockRepo) FindByRequestID(ctx context.Context, requestID string) (*model.RoomReservationLock, error) {
	if lock := r.get(requestID); lock != nil {
		return lock, nil
	}
	return nil, hotelserrors.ErrNotFound
}

func (r *fakeLockRepo) Create(ctx context.Context, lock *model.RoomReservationLock) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.locks[lock.RequestID]; exists {
		return hotelserrors.ErrDuplicateRequestID
	}
	r.nextID++
	lock.ID = "lock-" + strconv.Itoa(r.nextID)
	cp := *lock
	r.locks[lock.RequestID] = &cp
	return nil
}

func (r *fakeLockRepo) UpdateStatus(ctx context.Context, requestID string, from, to model.LockStatus) error {
	if r.beforeUpdateStatus != nil {
		hook := r.beforeUpdateStatus
		r.beforeUpdateStatus = nil
		hook()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[requestID]
	if !ok || lock.Status != from {
		return hotelserrors.ErrNotFound
	}
	lock.Status = to
	return nil
}

func (r *fakeLockRepo) FindOverlapping(ctx context.Context, roomID int64, statuses []model.LockStatus, start, end model.Date) ([]*model.RoomReservationLock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.RoomReservationLock
	for _, lock := range r.locks {
		if lock.RoomID != roomID || !model.RangesOverlap(lock.StartDate, lock.EndDate, start, end) {
			continue
		}
		for _, st := range statuses {
			if lock.Status == st {
				cp := *lock
				out = append(out, &cp)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeLockRepo) ExecuteTransaction(ctx context.Context, fn mongodb.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakeGuardRepo struct {
	mu       sync.Mutex
	busy     map[int64]bool
	acquired int
	released int
}

func newFakeGuardRepo() *fakeGuardRepo {
	return &fakeGuardRepo{busy: make(map[int64]bool)}
}

func (g *fakeGuardRepo) Acquire(ctx context.Context, roomID int64, owner string, ttl time.Duration) (*model.HoldGuard, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy[roomID] {
		return nil, hotelserrors.ErrGuardBusy
	}
	g.busy[roomID] = true
	g.acquired++
	return &model.HoldGuard{ID: "room_hold_" + strconv.FormatInt(roomID, 10), Owner: owner, ExpiresAt: time.Now().Add(ttl)}, nil
}

func (g *fakeGuardRepo) Release(ctx context.Context, guard *model.HoldGuard) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for roomID := range g.busy {
		if "room_hold_"+strconv.FormatInt(roomID, 10) == guard.ID {
			delete(g.busy, roomID)
		}
	}
	g.released++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		HoldGuardTTL: 5 * time.Second,
		Log:          logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}),
	}
}

var testToday = model.NewDate(2026, time.March, 10)

func newTestLockService() (*roomLockService, *fakeLockRepo, *fakeGuardRepo) {
	locks := newFakeLockRepo()
	guards := newFakeGuardRepo()
	cfg := testConfig()
	svc := NewRoomLockService(locks, guards, validator.NewHoldValidator(cfg.Log), cfg).(*roomLockService)
	svc.today = func() model.Date { return testToday }
	return svc, locks, guards
}

func day(d int) model.Date {
	return model.NewDate(2026, time.April, d)
}
