// Package notify delivers booking lifecycle events to interested
// consumers. Delivery is best-effort and happens strictly after the
// corresponding storage transaction commits; a failed send never rolls
// back a reservation or cancellation.
package notify

import (
	"context"
	"log"
)

// Event names carried on the wire.
const (
	EventBookingConfirmed = "bookingConfirmed"
	EventBookingCancelled = "bookingCancelled"
)

// BookingEvent is the payload for both lifecycle events. Seats is empty
// on cancellation.
type BookingEvent struct {
	Event     string `json:"event"`
	BookingID string `json:"booking_id"`
	TripID    string `json:"trip_id"`
	UserID    int64  `json:"user_id"`
	Seats     []int  `json:"seats,omitempty"`
}

type Notifier interface {
	BookingConfirmed(ctx context.Context, ev BookingEvent)
	BookingCancelled(ctx context.Context, ev BookingEvent)
}

// LogNotifier is the fallback used when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) BookingConfirmed(_ context.Context, ev BookingEvent) {
	log.Printf("[NOTIFY] action=%s booking_id=%s trip_id=%s user_id=%d seats=%v",
		EventBookingConfirmed, ev.BookingID, ev.TripID, ev.UserID, ev.Seats)
}

func (LogNotifier) BookingCancelled(_ context.Context, ev BookingEvent) {
	log.Printf("[NOTIFY] action=%s booking_id=%s trip_id=%s user_id=%d",
		EventBookingCancelled, ev.BookingID, ev.TripID, ev.UserID)
}
