package model

import (
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

func (s BookingStatus) IsTerminal() bool {
	return s == BookingConfirmed || s == BookingCancelled
}

// Booking is one booking attempt, unique per RequestID (the caller's idempotency key).
type Booking struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty"`
	RequestID     string        `json:"requestId" bson:"request_id"`
	UserID        int64         `json:"userId" bson:"user_id"`
	RoomID        int64         `json:"roomId" bson:"room_id"`
	StartDate     Date          `json:"startDate" bson:"start_date"`
	EndDate       Date          `json:"endDate" bson:"end_date"`
	Status        BookingStatus `json:"status" bson:"status"`
	CorrelationID string        `json:"correlationId" bson:"correlation_id"`
	CreatedAt     time.Time     `json:"createdAt" bson:"created_at"`
}

type CreateBookingRequest struct {
	RoomID    int64 `json:"roomId" validate:"gt=0"`
	StartDate Date  `json:"startDate" validate:"required"`
	EndDate   Date  `json:"endDate" validate:"required"`
}
