package models

import (
	"time"

	"busline/internal/domain"
)

// Booking is one user's reservation of seat slots on a trip. Records are
// immutable history: cancellation flips Status, nothing is ever deleted.
type Booking struct {
	ID        string               `json:"id"`
	UserID    int64                `json:"user_id"`
	TripID    string               `json:"trip_id"`
	Seats     []int                `json:"seats"`
	Status    domain.BookingStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt *time.Time           `json:"updated_at,omitempty"` // set on cancellation only
}

// BookingWithTrip is the read-side join used for per-user listings.
type BookingWithTrip struct {
	Booking
	Trip *Trip `json:"trip,omitempty"`
}
