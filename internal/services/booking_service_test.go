package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"busline/internal/domain"
	"busline/internal/domain/models"
)

// fakeTripStore mirrors the conditional-update semantics of the SQL
// repository so the retry loop can be exercised without a database.
type fakeTripStore struct {
	mu    sync.Mutex
	trips map[string]*models.Trip
}

func newFakeTripStore(trips ...models.Trip) *fakeTripStore {
	s := &fakeTripStore{trips: map[string]*models.Trip{}}
	for i := range trips {
		t := trips[i]
		s.trips[t.ID] = &t
	}
	return s
}

func (s *fakeTripStore) GetByID(_ context.Context, id string) (models.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return models.Trip{}, domain.NotFoundError{Resource: "trip"}
	}
	return *t, nil
}

func (s *fakeTripStore) TryReserveSeats(_ context.Context, tripID string, seatCount, expectedAvailable int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok || !t.Active {
		return domain.NotFoundError{Resource: "trip"}
	}
	if t.AvailableSeats != expectedAvailable {
		if t.AvailableSeats < seatCount {
			return domain.InsufficientSeatsError{TripID: tripID, Requested: seatCount, Available: t.AvailableSeats}
		}
		return domain.ConflictError{Resource: "trip seats"}
	}
	if t.AvailableSeats < seatCount {
		return domain.InsufficientSeatsError{TripID: tripID, Requested: seatCount, Available: t.AvailableSeats}
	}
	t.AvailableSeats -= seatCount
	return nil
}

func (s *fakeTripStore) ReleaseSeats(_ context.Context, tripID string, seatCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[tripID]
	if !ok {
		return domain.NotFoundError{Resource: "trip"}
	}
	if t.AvailableSeats+seatCount > t.TotalSeats {
		return domain.StorageError{Op: "release seats", Err: errors.New("release would exceed total seats")}
	}
	t.AvailableSeats += seatCount
	return nil
}

func (s *fakeTripStore) available(tripID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trips[tripID].AvailableSeats
}

type fakeBookingStore struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
	// createErr, when set, fails the next Create call
	createErr error
	trips     *fakeTripStore
}

func newFakeBookingStore(trips *fakeTripStore) *fakeBookingStore {
	return &fakeBookingStore{bookings: map[string]models.Booking{}, trips: trips}
}

func (s *fakeBookingStore) Create(_ context.Context, b models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		err := s.createErr
		s.createErr = nil
		return err
	}
	s.bookings[b.ID] = b
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (s *fakeBookingStore) ListByUser(_ context.Context, userID int64) ([]models.BookingWithTrip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.BookingWithTrip{}
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, models.BookingWithTrip{Booking: b})
		}
	}
	return out, nil
}

func (s *fakeBookingStore) CancelConfirmed(ctx context.Context, bookingID string) (bool, error) {
	s.mu.Lock()
	b, ok := s.bookings[bookingID]
	if !ok {
		s.mu.Unlock()
		return false, domain.NotFoundError{Resource: "booking"}
	}
	if b.Status != domain.BookingConfirmed {
		s.mu.Unlock()
		return false, nil
	}
	b.Status = domain.BookingCancelled
	now := time.Now().UTC()
	b.UpdatedAt = &now
	s.bookings[bookingID] = b
	s.mu.Unlock()
	return true, s.trips.ReleaseSeats(ctx, b.TripID, len(b.Seats))
}

func (s *fakeBookingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func activeTrip(id string, total, available int) models.Trip {
	return models.Trip{ID: id, Destination: "Da Nang", TotalSeats: total, AvailableSeats: available, Active: true}
}

func TestReserveHappyPath(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 10))
	bookings := newFakeBookingStore(trips)
	svc := BookingService{Trips: trips, Bookings: bookings}

	b, err := svc.Reserve(context.Background(), 7, "trip-1", []int{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID == "" || b.Status != domain.BookingConfirmed {
		t.Fatalf("booking not confirmed: %+v", b)
	}
	if got := trips.available("trip-1"); got != 8 {
		t.Fatalf("available seats = %d, want 8", got)
	}
}

func TestReserveValidation(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 10))
	svc := BookingService{Trips: trips, Bookings: newFakeBookingStore(trips)}
	ctx := context.Background()

	cases := []struct {
		name   string
		userID int64
		seats  []int
	}{
		{"zero user", 0, []int{1}},
		{"empty seats", 7, nil},
		{"duplicate seats", 7, []int{2, 2}},
		{"seat below range", 7, []int{0}},
		{"seat above capacity", 7, []int{31}},
	}
	for _, tc := range cases {
		if _, err := svc.Reserve(ctx, tc.userID, "trip-1", tc.seats); !domain.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestReserveInsufficientSeats(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 1))
	svc := BookingService{Trips: trips, Bookings: newFakeBookingStore(trips)}

	_, err := svc.Reserve(context.Background(), 7, "trip-1", []int{1, 2})
	if !domain.IsInsufficientSeats(err) {
		t.Fatalf("expected insufficient seats, got %v", err)
	}
	if got := trips.available("trip-1"); got != 1 {
		t.Fatalf("availability changed on rejected reservation: %d", got)
	}
}

func TestReserveRetiredTrip(t *testing.T) {
	trip := activeTrip("trip-1", 30, 10)
	trip.Active = false
	trips := newFakeTripStore(trip)
	svc := BookingService{Trips: trips, Bookings: newFakeBookingStore(trips)}

	if _, err := svc.Reserve(context.Background(), 7, "trip-1", []int{1}); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReserveNeverOversells(t *testing.T) {
	const (
		totalSeats = 10
		workers    = 50
	)
	trips := newFakeTripStore(activeTrip("trip-1", totalSeats, totalSeats))
	bookings := newFakeBookingStore(trips)
	svc := BookingService{Trips: trips, Bookings: bookings, MaxRetries: workers}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(seat int) {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), int64(seat+1), "trip-1", []int{seat%totalSeats + 1})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !domain.IsInsufficientSeats(err) && !domain.IsBusy(err) {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if succeeded > totalSeats {
		t.Fatalf("oversold: %d reservations for %d seats", succeeded, totalSeats)
	}
	if got := trips.available("trip-1"); got != totalSeats-succeeded {
		t.Fatalf("seat conservation broken: available=%d succeeded=%d total=%d", got, succeeded, totalSeats)
	}
	if bookings.count() != succeeded {
		t.Fatalf("booking count %d does not match successful reservations %d", bookings.count(), succeeded)
	}
}

func TestReserveBusyAfterRetryBudget(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 10))
	bookings := newFakeBookingStore(trips)

	// conflicting store always reports a moved counter
	svc := BookingService{
		Trips:      alwaysConflict{trips},
		Bookings:   bookings,
		MaxRetries: 3,
	}
	_, err := svc.Reserve(context.Background(), 7, "trip-1", []int{1})
	if !domain.IsBusy(err) {
		t.Fatalf("expected busy after exhausted retries, got %v", err)
	}
}

type alwaysConflict struct {
	*fakeTripStore
}

func (alwaysConflict) TryReserveSeats(context.Context, string, int, int) error {
	return domain.ConflictError{Resource: "trip seats"}
}

func TestReserveCompensatesOnPersistFailure(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 10))
	bookings := newFakeBookingStore(trips)
	bookings.createErr = fmt.Errorf("insert failed")
	svc := BookingService{Trips: trips, Bookings: bookings}

	_, err := svc.Reserve(context.Background(), 7, "trip-1", []int{1, 2})
	if err == nil {
		t.Fatalf("expected persistence failure to surface")
	}
	if got := trips.available("trip-1"); got != 10 {
		t.Fatalf("seats not compensated after failed persist: available=%d want 10", got)
	}
	if bookings.count() != 0 {
		t.Fatalf("no booking should exist after failed persist")
	}
}

func TestCancelRestoresSeatsOnce(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 10))
	bookings := newFakeBookingStore(trips)
	svc := BookingService{Trips: trips, Bookings: bookings}

	b, err := svc.Reserve(context.Background(), 7, "trip-1", []int{1, 2, 3})
	if err != nil {
		t.Fatalf("reserve error: %v", err)
	}
	if got := trips.available("trip-1"); got != 7 {
		t.Fatalf("available = %d after reserve, want 7", got)
	}

	if err := svc.Cancel(context.Background(), b.ID, 7); err != nil {
		t.Fatalf("cancel error: %v", err)
	}
	if got := trips.available("trip-1"); got != 10 {
		t.Fatalf("available = %d after cancel, want 10", got)
	}

	// repeat cancel: success, no second restoration
	if err := svc.Cancel(context.Background(), b.ID, 7); err != nil {
		t.Fatalf("repeat cancel error: %v", err)
	}
	if got := trips.available("trip-1"); got != 10 {
		t.Fatalf("repeat cancel restored seats twice: available=%d", got)
	}
}

func TestCancelForbiddenForOtherUser(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 10))
	bookings := newFakeBookingStore(trips)
	svc := BookingService{Trips: trips, Bookings: bookings}

	b, err := svc.Reserve(context.Background(), 7, "trip-1", []int{1})
	if err != nil {
		t.Fatalf("reserve error: %v", err)
	}
	if err := svc.Cancel(context.Background(), b.ID, 99); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if got := trips.available("trip-1"); got != 9 {
		t.Fatalf("forbidden cancel must not touch seats: available=%d", got)
	}
}

func TestCancelUnknownBooking(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 10))
	svc := BookingService{Trips: trips, Bookings: newFakeBookingStore(trips)}

	if err := svc.Cancel(context.Background(), "missing", 7); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetForUserEnforcesOwnership(t *testing.T) {
	trips := newFakeTripStore(activeTrip("trip-1", 30, 10))
	bookings := newFakeBookingStore(trips)
	svc := BookingService{Trips: trips, Bookings: bookings}

	b, err := svc.Reserve(context.Background(), 7, "trip-1", []int{1})
	if err != nil {
		t.Fatalf("reserve error: %v", err)
	}
	if _, err := svc.GetForUser(context.Background(), b.ID, 7); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := svc.GetForUser(context.Background(), b.ID, 8); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
}
