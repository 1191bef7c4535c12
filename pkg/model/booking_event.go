package model

import "time"

const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	BookingID  string        `json:"bookingId"`
	RequestID  string        `json:"requestId"`
	UserID     int64         `json:"userId"`
	RoomID     int64         `json:"roomId"`
	StartDate  Date          `json:"startDate"`
	EndDate    Date          `json:"endDate"`
	Status     BookingStatus `json:"status"`
	OccurredAt time.Time     `json:"occurredAt"`
}

// BookingEventID names the event a booking emits for its final status. It is
// stable across republishes, so consumers can apply each event once.
func BookingEventID(eventType, requestID string) string {
	return eventType + ":" + requestID
}

func EventTypeFor(status BookingStatus) string {
	if status == BookingConfirmed {
		return EventBookingConfirmed
	}
	return EventBookingCancelled
}

func NewBookingEvent(b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		BookingID:  b.ID,
		RequestID:  b.RequestID,
		UserID:     b.UserID,
		RoomID:     b.RoomID,
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
		Status:     b.Status,
		OccurredAt: at,
	}
}
