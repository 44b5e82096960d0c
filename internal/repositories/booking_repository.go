package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	intconfig "busline/internal/config"
	"busline/internal/domain"
	"busline/internal/domain/models"
)

// BookingRepository stores the immutable booking history. Rows are never
// deleted; cancellation is a status change that preserves the audit
// trail.
type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

// joinedTripColumns lists trip columns for the LEFT JOIN in ListByUser.
// All scanned through sql.Null* because the trip side may be absent.
const joinedTripColumns = `t.source, t.destination,
	t.source_station_id, t.source_station_name, t.source_station_address,
	t.destination_station_id, t.destination_station_name, t.destination_station_address,
	t.departure_date, t.departure_time, t.duration_minutes, t.price,
	t.bus_type, t.operator, t.operator_size, t.amenities,
	t.rating, t.rank_score, t.total_seats, t.available_seats, t.active`

// Create persists a confirmed booking.
func (r BookingRepository) Create(ctx context.Context, b models.Booking) error {
	if strings.TrimSpace(b.ID) == "" {
		return domain.ValidationError{Field: "booking_id", Msg: "must not be empty"}
	}
	_, err := r.db().ExecContext(ctx, `
		INSERT INTO bookings (id, user_id, trip_id, seats, seat_count, status, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		b.ID, b.UserID, b.TripID, joinSeats(b.Seats), len(b.Seats), string(b.Status), b.CreatedAt,
	)
	if err != nil {
		return domain.StorageError{Op: "create booking", Err: err}
	}
	return nil
}

// GetByID fetches one booking.
func (r BookingRepository) GetByID(ctx context.Context, id string) (models.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "must not be empty"}
	}

	var b models.Booking
	var seats string
	var status string
	var updatedAt sql.NullTime
	err := r.db().QueryRowContext(ctx, `
		SELECT id, user_id, trip_id, seats, status, created_at, updated_at
		FROM bookings WHERE id = ?`, id,
	).Scan(&b.ID, &b.UserID, &b.TripID, &seats, &status, &b.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		return models.Booking{}, domain.StorageError{Op: "get booking", Err: err}
	}
	b.Seats = splitSeats(seats)
	b.Status = domain.BookingStatus(status)
	if updatedAt.Valid {
		t := updatedAt.Time
		b.UpdatedAt = &t
	}
	return b, nil
}

// ListByUser returns all bookings owned by the user, newest first, each
// joined against its trip for display. The join is a read-side
// convenience; a missing trip leaves the Trip field nil.
func (r BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.BookingWithTrip, error) {
	if userID <= 0 {
		return nil, domain.ValidationError{Field: "user_id", Msg: "must be positive"}
	}

	rows, err := r.db().QueryContext(ctx, `
		SELECT b.id, b.user_id, b.trip_id, b.seats, b.status, b.created_at, b.updated_at,
			t.id, `+joinedTripColumns+`
		FROM bookings b
		LEFT JOIN trips t ON t.id = b.trip_id
		WHERE b.user_id = ?
		ORDER BY b.created_at DESC, b.id`, userID,
	)
	if err != nil {
		return nil, domain.StorageError{Op: "list bookings", Err: err}
	}
	defer rows.Close()

	out := []models.BookingWithTrip{}
	for rows.Next() {
		var b models.BookingWithTrip
		var seats, status string
		var updatedAt sql.NullTime
		var tripID sql.NullString
		var t models.Trip
		var amenities sql.NullString
		var src, dst, ssID, ssName, ssAddr, dsID, dsName, dsAddr, depDate, depTime, busType, operator, opSize sql.NullString
		var duration, totalSeats, availableSeats sql.NullInt64
		var price sql.NullInt64
		var rating, rankScore sql.NullFloat64
		var active sql.NullBool

		if err := rows.Scan(
			&b.ID, &b.UserID, &b.TripID, &seats, &status, &b.CreatedAt, &updatedAt,
			&tripID,
			&src, &dst, &ssID, &ssName, &ssAddr, &dsID, &dsName, &dsAddr,
			&depDate, &depTime, &duration, &price, &busType, &operator, &opSize,
			&amenities, &rating, &rankScore, &totalSeats, &availableSeats, &active,
		); err != nil {
			return out, domain.StorageError{Op: "scan booking", Err: err}
		}

		b.Seats = splitSeats(seats)
		b.Status = domain.BookingStatus(status)
		if updatedAt.Valid {
			ts := updatedAt.Time
			b.UpdatedAt = &ts
		}
		if tripID.Valid {
			t.ID = tripID.String
			t.Source = src.String
			t.Destination = dst.String
			t.SourceStation = models.Station{ID: ssID.String, Name: ssName.String, Address: ssAddr.String}
			t.DestinationStation = models.Station{ID: dsID.String, Name: dsName.String, Address: dsAddr.String}
			t.DepartureDate = depDate.String
			t.DepartureTime = depTime.String
			t.DurationMinutes = int(duration.Int64)
			t.Price = price.Int64
			t.BusType = domain.BusType(busType.String)
			t.Operator = operator.String
			t.OperatorSize = domain.OperatorSize(opSize.String)
			t.Amenities = splitAmenities(amenities.String)
			t.Rating = rating.Float64
			t.RankScore = rankScore.Float64
			t.TotalSeats = int(totalSeats.Int64)
			t.AvailableSeats = int(availableSeats.Int64)
			t.Active = active.Bool
			t.Normalize()
			b.Trip = &t
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return out, domain.StorageError{Op: "list bookings", Err: err}
	}
	return out, nil
}

// CancelConfirmed flips a confirmed booking to cancelled and restores
// its seats in one transaction. The conditional status update is the
// idempotency gate: a booking already cancelled (or raced by another
// cancel) affects zero rows and the seats are restored exactly once.
// Returns false when no transition happened.
func (r BookingRepository) CancelConfirmed(ctx context.Context, bookingID string) (bool, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return false, domain.ValidationError{Field: "booking_id", Msg: "must not be empty"}
	}

	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return false, domain.StorageError{Op: "cancel booking", Err: err}
	}
	defer tx.Rollback()

	var tripID string
	var seatCount int
	err = tx.QueryRowContext(ctx,
		`SELECT trip_id, seat_count FROM bookings WHERE id = ? FOR UPDATE`, bookingID,
	).Scan(&tripID, &seatCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.NotFoundError{Resource: "booking"}
		}
		return false, domain.StorageError{Op: "cancel booking", Err: err}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.BookingCancelled), time.Now().UTC(), bookingID, string(domain.BookingConfirmed),
	)
	if err != nil {
		return false, domain.StorageError{Op: "cancel booking", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, domain.StorageError{Op: "cancel booking", Err: err}
	}
	if affected == 0 {
		// already cancelled; nothing to restore
		return false, nil
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE trips
		SET available_seats = available_seats + ?
		WHERE id = ? AND available_seats + ? <= total_seats`,
		seatCount, tripID, seatCount,
	)
	if err != nil {
		return false, domain.StorageError{Op: "restore seats", Err: err}
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return false, domain.StorageError{Op: "restore seats", Err: err}
	}
	if affected == 0 {
		// trip missing or restore would exceed capacity: either way the
		// ledger and trip record disagree, so the flip must not commit
		return false, domain.StorageError{Op: "restore seats", Err: errors.New("seat restore failed consistency check")}
	}

	if err := tx.Commit(); err != nil {
		return false, domain.StorageError{Op: "cancel booking", Err: err}
	}
	return true, nil
}
