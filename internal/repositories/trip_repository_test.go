package repositories

import (
	"context"
	"testing"

	"busline/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTryReserveSeatsSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trips").
		WithArgs(2, "trip-1", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := TripRepository{DB: db}
	if err := repo.TryReserveSeats(context.Background(), "trip-1", 2, 10); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTryReserveSeatsConflictWhenCountMoved(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trips").
		WithArgs(2, "trip-1", 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	// re-read shows enough seats but a different value: someone else won
	mock.ExpectQuery("SELECT available_seats, active FROM trips").
		WithArgs("trip-1").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "active"}).AddRow(8, true))

	repo := TripRepository{DB: db}
	err = repo.TryReserveSeats(context.Background(), "trip-1", 2, 10)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestTryReserveSeatsInsufficientIsTerminal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trips").
		WithArgs(4, "trip-1", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT available_seats, active FROM trips").
		WithArgs("trip-1").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "active"}).AddRow(3, true))

	repo := TripRepository{DB: db}
	err = repo.TryReserveSeats(context.Background(), "trip-1", 4, 5)
	if !domain.IsInsufficientSeats(err) {
		t.Fatalf("expected insufficient seats, got %v", err)
	}
}

func TestTryReserveSeatsShortCircuitsOnObservedShortage(t *testing.T) {
	// expectedAvailable already below the request: no SQL should run
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	repo := TripRepository{DB: db}
	err = repo.TryReserveSeats(context.Background(), "trip-1", 5, 2)
	if !domain.IsInsufficientSeats(err) {
		t.Fatalf("expected insufficient seats, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestTryReserveSeatsRetiredTripIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trips").
		WithArgs(1, "trip-9", 10).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT available_seats, active FROM trips").
		WithArgs("trip-9").
		WillReturnRows(sqlmock.NewRows([]string{"available_seats", "active"}).AddRow(10, false))

	repo := TripRepository{DB: db}
	err = repo.TryReserveSeats(context.Background(), "trip-9", 1, 10)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found for retired trip, got %v", err)
	}
}

func TestReleaseSeatsSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trips").
		WithArgs(3, "trip-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := TripRepository{DB: db}
	if err := repo.ReleaseSeats(context.Background(), "trip-1", 3); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
}

func TestReleaseSeatsOverCapacityIsFault(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trips").
		WithArgs(5, "trip-1", 5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM trips").
		WithArgs("trip-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	repo := TripRepository{DB: db}
	err = repo.ReleaseSeats(context.Background(), "trip-1", 5)
	if !domain.IsStorage(err) {
		t.Fatalf("release past capacity should be a storage fault, got %v", err)
	}
}

func TestReleaseSeatsMissingTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE trips").
		WithArgs(1, "nope", 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM trips").
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := TripRepository{DB: db}
	err = repo.ReleaseSeats(context.Background(), "nope", 1)
	if !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFindByDestinationAppliesDateFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{
		"id", "source", "destination",
		"source_station_id", "source_station_name", "source_station_address",
		"destination_station_id", "destination_station_name", "destination_station_address",
		"departure_date", "departure_time", "duration_minutes", "price",
		"bus_type", "operator", "operator_size", "amenities",
		"rating", "rank_score", "total_seats", "available_seats", "active",
	}).AddRow(
		"trip-1", "Hanoi", "Da Nang",
		"s1", "Central", "1 Main St",
		"d1", "North", "9 High St",
		"21-May-2025", "08:30", 240, 350000,
		"Sleeper", "GreenBus", "Large", "wifi,water",
		4.5, 0.0, 30, 12, true,
	)
	mock.ExpectQuery("FROM trips WHERE active = 1 AND LOWER").
		WithArgs("%da nang%", "21-May-2025").
		WillReturnRows(rows)

	repo := TripRepository{DB: db}
	trips, err := repo.FindByDestination(context.Background(), "Da Nang", "21-May-2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(trips) != 1 || trips[0].ID != "trip-1" {
		t.Fatalf("unexpected result set: %+v", trips)
	}
	if len(trips[0].Amenities) != 2 {
		t.Fatalf("amenities not split, got %v", trips[0].Amenities)
	}
	if trips[0].BusType != domain.BusSleeper {
		t.Fatalf("bus type not parsed, got %v", trips[0].BusType)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM trips WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := TripRepository{DB: db}
	if _, err := repo.GetByID(context.Background(), "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
