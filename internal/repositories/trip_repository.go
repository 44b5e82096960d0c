package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	intconfig "busline/internal/config"
	"busline/internal/domain"
	"busline/internal/domain/models"
)

// TripRepository is the system of record for trips. It owns the two seat
// primitives (TryReserveSeats / ReleaseSeats); no other code path writes
// available_seats.
type TripRepository struct {
	DB *sql.DB
}

func (r TripRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const tripColumns = `id,
	COALESCE(source, ''), COALESCE(destination, ''),
	COALESCE(source_station_id, ''), COALESCE(source_station_name, ''), COALESCE(source_station_address, ''),
	COALESCE(destination_station_id, ''), COALESCE(destination_station_name, ''), COALESCE(destination_station_address, ''),
	COALESCE(departure_date, ''), COALESCE(departure_time, ''),
	COALESCE(duration_minutes, 0), COALESCE(price, 0),
	COALESCE(bus_type, ''), COALESCE(operator, ''), COALESCE(operator_size, ''),
	COALESCE(amenities, ''),
	COALESCE(rating, 0), COALESCE(rank_score, 0),
	COALESCE(total_seats, 0), COALESCE(available_seats, 0),
	active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (models.Trip, error) {
	var t models.Trip
	var amenities string
	err := row.Scan(
		&t.ID,
		&t.Source, &t.Destination,
		&t.SourceStation.ID, &t.SourceStation.Name, &t.SourceStation.Address,
		&t.DestinationStation.ID, &t.DestinationStation.Name, &t.DestinationStation.Address,
		&t.DepartureDate, &t.DepartureTime,
		&t.DurationMinutes, &t.Price,
		&t.BusType, &t.Operator, &t.OperatorSize,
		&amenities,
		&t.Rating, &t.RankScore,
		&t.TotalSeats, &t.AvailableSeats,
		&t.Active,
	)
	if err != nil {
		return models.Trip{}, err
	}
	t.Amenities = splitAmenities(amenities)
	t.Normalize()
	return t, nil
}

// GetByID returns the trip, including soft-retired ones so existing
// bookings can still resolve their trip for display.
func (r TripRepository) GetByID(ctx context.Context, id string) (models.Trip, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Trip{}, domain.ValidationError{Field: "trip_id", Msg: "must not be empty"}
	}
	row := r.db().QueryRowContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Trip{}, domain.NotFoundError{Resource: "trip"}
		}
		return models.Trip{}, domain.StorageError{Op: "get trip", Err: err}
	}
	return t, nil
}

// FindByDestination matches active trips whose destination contains the
// given text, case-insensitive. A non-empty dateFilter additionally
// requires exact calendar-day equality on the departure date.
func (r TripRepository) FindByDestination(ctx context.Context, destination, dateFilter string) ([]models.Trip, error) {
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, domain.ValidationError{Field: "destination", Msg: "must not be empty"}
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE active = 1 AND LOWER(destination) LIKE ?`
	args := []any{"%" + strings.ToLower(destination) + "%"}
	if dateFilter = strings.TrimSpace(dateFilter); dateFilter != "" {
		query += ` AND departure_date = ?`
		args = append(args, dateFilter)
	}

	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError{Op: "find trips", Err: err}
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, domain.StorageError{Op: "scan trip", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return out, domain.StorageError{Op: "find trips", Err: err}
	}
	return out, nil
}

// TryReserveSeats decrements available_seats by seatCount in a single
// conditional update guarded on the value the caller last observed.
// Zero rows affected is disambiguated by a follow-up read: a moved value
// is a Conflict (caller re-reads and retries), genuinely short capacity
// is terminal.
func (r TripRepository) TryReserveSeats(ctx context.Context, tripID string, seatCount, expectedAvailable int) error {
	if seatCount <= 0 {
		return domain.ValidationError{Field: "seats", Msg: "must be positive"}
	}
	if expectedAvailable < seatCount {
		return domain.InsufficientSeatsError{TripID: tripID, Requested: seatCount, Available: expectedAvailable}
	}

	res, err := r.db().ExecContext(ctx, `
		UPDATE trips
		SET available_seats = available_seats - ?
		WHERE id = ? AND active = 1 AND available_seats = ?`,
		seatCount, tripID, expectedAvailable,
	)
	if err != nil {
		return domain.StorageError{Op: "reserve seats", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.StorageError{Op: "reserve seats", Err: err}
	}
	if affected == 1 {
		return nil
	}

	var available int
	var active bool
	err = r.db().QueryRowContext(ctx,
		`SELECT available_seats, active FROM trips WHERE id = ?`, tripID,
	).Scan(&available, &active)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.NotFoundError{Resource: "trip"}
	case err != nil:
		return domain.StorageError{Op: "reserve seats", Err: err}
	case !active:
		return domain.NotFoundError{Resource: "trip"}
	case available < seatCount:
		return domain.InsufficientSeatsError{TripID: tripID, Requested: seatCount, Available: available}
	default:
		return domain.ConflictError{Resource: "trip seats"}
	}
}

// ReleaseSeats restores seatCount seats, capped at total_seats. Pushing
// the count past capacity means the ledger and the trip record disagree;
// that is reported as a fault, never silently clamped.
func (r TripRepository) ReleaseSeats(ctx context.Context, tripID string, seatCount int) error {
	if seatCount <= 0 {
		return domain.ValidationError{Field: "seats", Msg: "must be positive"}
	}

	res, err := r.db().ExecContext(ctx, `
		UPDATE trips
		SET available_seats = available_seats + ?
		WHERE id = ? AND available_seats + ? <= total_seats`,
		seatCount, tripID, seatCount,
	)
	if err != nil {
		return domain.StorageError{Op: "release seats", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.StorageError{Op: "release seats", Err: err}
	}
	if affected == 1 {
		return nil
	}

	var exists int
	err = r.db().QueryRowContext(ctx, `SELECT 1 FROM trips WHERE id = ?`, tripID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: "trip"}
	}
	if err != nil {
		return domain.StorageError{Op: "release seats", Err: err}
	}
	return domain.StorageError{Op: "release seats", Err: errors.New("release would exceed total seats")}
}

// Upsert is the ingestion contract: trips arrive keyed by their external
// identity. Descriptive fields are refreshed on re-ingestion; seat
// counters are written on first insert only, since afterwards they are
// ledger-owned.
func (r TripRepository) Upsert(ctx context.Context, t models.Trip) error {
	t.Normalize()
	if t.ID == "" {
		return domain.ValidationError{Field: "id", Msg: "must not be empty"}
	}
	if t.Destination == "" {
		return domain.ValidationError{Field: "destination", Msg: "must not be empty"}
	}

	_, err := r.db().ExecContext(ctx, `
		INSERT INTO trips (
			id, source, destination,
			source_station_id, source_station_name, source_station_address,
			destination_station_id, destination_station_name, destination_station_address,
			departure_date, departure_time, duration_minutes, price,
			bus_type, operator, operator_size, amenities,
			rating, rank_score, total_seats, available_seats, active
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,1)
		ON DUPLICATE KEY UPDATE
			source=VALUES(source), destination=VALUES(destination),
			source_station_id=VALUES(source_station_id), source_station_name=VALUES(source_station_name),
			source_station_address=VALUES(source_station_address),
			destination_station_id=VALUES(destination_station_id), destination_station_name=VALUES(destination_station_name),
			destination_station_address=VALUES(destination_station_address),
			departure_date=VALUES(departure_date), departure_time=VALUES(departure_time),
			duration_minutes=VALUES(duration_minutes), price=VALUES(price),
			bus_type=VALUES(bus_type), operator=VALUES(operator), operator_size=VALUES(operator_size),
			amenities=VALUES(amenities), rating=VALUES(rating), rank_score=VALUES(rank_score),
			active=1`,
		t.ID, t.Source, t.Destination,
		t.SourceStation.ID, t.SourceStation.Name, t.SourceStation.Address,
		t.DestinationStation.ID, t.DestinationStation.Name, t.DestinationStation.Address,
		t.DepartureDate, t.DepartureTime, t.DurationMinutes, t.Price,
		string(t.BusType), t.Operator, string(t.OperatorSize), joinAmenities(t.Amenities),
		t.Rating, t.RankScore, t.TotalSeats, t.AvailableSeats,
	)
	if err != nil {
		return domain.StorageError{Op: "upsert trip", Err: err}
	}
	return nil
}

// Retire soft-deletes a trip: it drops out of search but stays
// resolvable for bookings that reference it.
func (r TripRepository) Retire(ctx context.Context, id string) error {
	res, err := r.db().ExecContext(ctx, `UPDATE trips SET active = 0 WHERE id = ?`, id)
	if err != nil {
		return domain.StorageError{Op: "retire trip", Err: err}
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.NotFoundError{Resource: "trip"}
	}
	return nil
}

// List returns all active trips.
func (r TripRepository) List(ctx context.Context) ([]models.Trip, error) {
	rows, err := r.db().QueryContext(ctx, `SELECT `+tripColumns+` FROM trips WHERE active = 1 ORDER BY departure_date, departure_time, id`)
	if err != nil {
		return nil, domain.StorageError{Op: "list trips", Err: err}
	}
	defer rows.Close()

	out := []models.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return out, domain.StorageError{Op: "scan trip", Err: err}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Locations returns the distinct set of known sources and destinations.
func (r TripRepository) Locations(ctx context.Context) ([]string, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT DISTINCT source FROM trips WHERE active = 1 AND source <> ''
		UNION
		SELECT DISTINCT destination FROM trips WHERE active = 1 AND destination <> ''
		ORDER BY 1`)
	if err != nil {
		return nil, domain.StorageError{Op: "list locations", Err: err}
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return out, domain.StorageError{Op: "list locations", Err: err}
		}
		out = append(out, loc)
	}
	return out, rows.Err()
}

func joinAmenities(amenities []string) string {
	clean := make([]string, 0, len(amenities))
	for _, a := range amenities {
		if a = strings.TrimSpace(a); a != "" {
			clean = append(clean, a)
		}
	}
	return strings.Join(clean, ",")
}

func splitAmenities(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func joinSeats(seats []int) string {
	parts := make([]string, 0, len(seats))
	for _, s := range seats {
		parts = append(parts, strconv.Itoa(s))
	}
	return strings.Join(parts, ",")
}

func splitSeats(raw string) []int {
	out := []int{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n, err := strconv.Atoi(part); err == nil {
			out = append(out, n)
		}
	}
	return out
}
