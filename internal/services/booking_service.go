package services

import (
	"context"
	"fmt"
	"time"

	"busline/internal/domain"
	"busline/internal/domain/models"
	"busline/internal/notify"
	"busline/internal/utils"

	"github.com/google/uuid"
)

// defaultReserveRetries bounds the optimistic retry loop. A reservation
// that keeps losing the conditional update surfaces Busy instead of
// spinning.
const defaultReserveRetries = 3

// TripStore is the slice of trip storage the ledger needs. Seat counts
// are mutated exclusively through these two primitives.
type TripStore interface {
	GetByID(ctx context.Context, id string) (models.Trip, error)
	TryReserveSeats(ctx context.Context, tripID string, seatCount, expectedAvailable int) error
	ReleaseSeats(ctx context.Context, tripID string, seatCount int) error
}

// BookingStore persists booking history. CancelConfirmed must flip the
// status and restore seats atomically, returning whether the transition
// happened.
type BookingStore interface {
	Create(ctx context.Context, b models.Booking) error
	GetByID(ctx context.Context, id string) (models.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]models.BookingWithTrip, error)
	CancelConfirmed(ctx context.Context, bookingID string) (bool, error)
}

// BookingService is the seat ledger: it accepts or rejects reservations
// against current availability and processes cancellations. Each trip's
// availability is an independent critical section; operations on
// different trips never serialize against each other.
type BookingService struct {
	Trips      TripStore
	Bookings   BookingStore
	Notifier   notify.Notifier
	MaxRetries int
	RequestID  string

	// test seams
	NewID func() string
	Now   func() time.Time
}

func (s BookingService) retries() int {
	if s.MaxRetries > 0 {
		return s.MaxRetries
	}
	return defaultReserveRetries
}

func (s BookingService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BookingService) notifier() notify.Notifier {
	if s.Notifier != nil {
		return s.Notifier
	}
	return notify.LogNotifier{}
}

// Reserve books the given seats on a trip. The check-then-reserve
// sequence runs under optimistic concurrency: the conditional decrement
// is retried on conflict up to the retry budget, then reports Busy.
// Seat decrement and booking persistence form one logical transaction;
// when persistence fails the decrement is compensated before the error
// surfaces, so availability never undercounts.
func (s BookingService) Reserve(ctx context.Context, userID int64, tripID string, seats []int) (models.Booking, error) {
	var zero models.Booking

	if userID <= 0 {
		return zero, domain.ValidationError{Field: "user_id", Msg: "must be positive"}
	}
	if len(seats) == 0 {
		return zero, domain.ValidationError{Field: "seats", Msg: "must not be empty"}
	}
	if !utils.DistinctInts(seats) {
		return zero, domain.ValidationError{Field: "seats", Msg: "duplicate seat numbers"}
	}
	for _, n := range seats {
		if n < 1 {
			return zero, domain.ValidationError{Field: "seats", Msg: fmt.Sprintf("seat number %d out of range", n)}
		}
	}

	trip, err := s.Trips.GetByID(ctx, tripID)
	if err != nil {
		return zero, err
	}
	if !trip.Active {
		return zero, domain.NotFoundError{Resource: "trip"}
	}
	for _, n := range seats {
		if n > trip.TotalSeats {
			return zero, domain.ValidationError{Field: "seats", Msg: fmt.Sprintf("seat number %d out of range", n)}
		}
	}

	count := len(seats)
	reserved := false
	attempts := s.retries()
	for attempt := 0; attempt < attempts; attempt++ {
		if trip.AvailableSeats < count {
			return zero, domain.InsufficientSeatsError{TripID: tripID, Requested: count, Available: trip.AvailableSeats}
		}
		err = s.Trips.TryReserveSeats(ctx, tripID, count, trip.AvailableSeats)
		if err == nil {
			reserved = true
			break
		}
		if !domain.IsConflict(err) {
			return zero, err
		}
		// another writer moved the count; re-read and try again
		trip, err = s.Trips.GetByID(ctx, tripID)
		if err != nil {
			return zero, err
		}
	}
	if !reserved {
		return zero, domain.BusyError{TripID: tripID, Attempts: attempts}
	}

	booking := models.Booking{
		ID:        s.newID(),
		UserID:    userID,
		TripID:    tripID,
		Seats:     append([]int(nil), seats...),
		Status:    domain.BookingConfirmed,
		CreatedAt: s.now(),
	}
	if err := s.Bookings.Create(ctx, booking); err != nil {
		// compensate: the seats were already taken from the trip
		if relErr := s.Trips.ReleaseSeats(ctx, tripID, count); relErr != nil {
			utils.LogEvent(s.RequestID, "ledger", "compensate_failed",
				fmt.Sprintf("trip_id=%s seats=%d err=%v", tripID, count, relErr))
			return zero, domain.StorageError{Op: "reserve compensation", Err: fmt.Errorf("create failed (%v), release failed (%v)", err, relErr)}
		}
		return zero, err
	}

	utils.LogEvent(s.RequestID, "ledger", "reserve",
		fmt.Sprintf("booking_id=%s trip_id=%s user_id=%d seats=%d", booking.ID, tripID, userID, count))

	// post-commit, best-effort; never blocks or fails the reservation
	go s.notifier().BookingConfirmed(context.Background(), notify.BookingEvent{
		BookingID: booking.ID,
		TripID:    tripID,
		UserID:    userID,
		Seats:     booking.Seats,
	})

	return booking, nil
}

// Cancel marks a booking cancelled and restores its seats. Cancelling an
// already-cancelled booking is a no-op success; the seat restoration
// happens exactly once regardless of retries.
func (s BookingService) Cancel(ctx context.Context, bookingID string, userID int64) error {
	if userID <= 0 {
		return domain.ValidationError{Field: "user_id", Msg: "must be positive"}
	}

	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.UserID != userID {
		return domain.ForbiddenError{Resource: "booking"}
	}
	if booking.Status == domain.BookingCancelled {
		return nil
	}

	transitioned, err := s.Bookings.CancelConfirmed(ctx, bookingID)
	if err != nil {
		return err
	}
	if !transitioned {
		// raced with another cancel; that one restored the seats
		return nil
	}

	utils.LogEvent(s.RequestID, "ledger", "cancel",
		fmt.Sprintf("booking_id=%s trip_id=%s user_id=%d", bookingID, booking.TripID, userID))

	go s.notifier().BookingCancelled(context.Background(), notify.BookingEvent{
		BookingID: bookingID,
		TripID:    booking.TripID,
		UserID:    userID,
	})

	return nil
}

// GetForUser loads one booking, enforcing ownership.
func (s BookingService) GetForUser(ctx context.Context, bookingID string, userID int64) (models.Booking, error) {
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, err
	}
	if booking.UserID != userID {
		return models.Booking{}, domain.ForbiddenError{Resource: "booking"}
	}
	return booking, nil
}

// ListForUser returns the user's bookings, trip-joined for display.
func (s BookingService) ListForUser(ctx context.Context, userID int64) ([]models.BookingWithTrip, error) {
	return s.Bookings.ListByUser(ctx, userID)
}
