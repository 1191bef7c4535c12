package model

type LockStatus string

const (
	LockHeld      LockStatus = "HELD"
	LockConfirmed LockStatus = "CONFIRMED"
	LockReleased  LockStatus = "RELEASED"
)

// ActiveLockStatuses are the statuses that block other holds on the same room.
var ActiveLockStatuses = []LockStatus{LockHeld, LockConfirmed}

type RoomReservationLock struct {
	ID        string     `json:"id,omitempty" bson:"_id,omitempty"`
	RequestID string     `json:"requestId" bson:"request_id"`
	RoomID    int64      `json:"roomId" bson:"room_id"`
	StartDate Date       `json:"startDate" bson:"start_date"`
	EndDate   Date       `json:"endDate" bson:"end_date"`
	Status    LockStatus `json:"status" bson:"status"`
	ExpiresAt Date       `json:"expiresAt" bson:"expires_at"`
}

// IsExpired reports whether the hold lapsed strictly before today.
func (l *RoomReservationLock) IsExpired(today Date) bool {
	return !l.ExpiresAt.IsZero() && l.ExpiresAt.Before(today)
}

type HoldParams struct {
	RequestID string `json:"requestId" validate:"required,max=128"`
	RoomID    int64  `json:"roomId" validate:"gt=0"`
	StartDate Date   `json:"startDate" validate:"required"`
	EndDate   Date   `json:"endDate" validate:"required"`
}
