package models

import (
	"strings"

	"busline/internal/domain"
)

// DefaultAvailableSeats is applied when ingestion delivers a trip without
// a seat count. Matches the upstream feed behaviour.
const DefaultAvailableSeats = 30

// Station is a boarding or alighting point attached to a trip.
type Station struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Trip is one scheduled departure. AvailableSeats is the only mutable
// field and is written exclusively through the seat ledger primitives.
type Trip struct {
	ID                 string              `json:"id"`
	Source             string              `json:"source"`
	Destination        string              `json:"destination"`
	SourceStation      Station             `json:"source_station"`
	DestinationStation Station             `json:"destination_station"`
	DepartureDate      string              `json:"departure_date"` // DD-MMM-YYYY, e.g. 21-May-2025
	DepartureTime      string              `json:"departure_time"` // local wall clock, e.g. 08:30
	DurationMinutes    int                 `json:"duration"`
	Price              int64               `json:"price"`
	BusType            domain.BusType      `json:"bus_type"`
	Operator           string              `json:"operator"`
	OperatorSize       domain.OperatorSize `json:"operator_type"`
	Amenities          []string            `json:"amenities"`
	Rating             float64             `json:"rating"`
	RankScore          float64             `json:"rank_score"`
	TotalSeats         int                 `json:"total_seats"`
	AvailableSeats     int                 `json:"available_seats"`
	Active             bool                `json:"active"`
}

// Normalize fills the defaults the ranking engine relies on, so a ranking
// run never sees a partially populated record. Executed once at the store
// boundary, both on ingestion writes and on reads.
func (t *Trip) Normalize() {
	t.ID = strings.TrimSpace(t.ID)
	t.Source = strings.TrimSpace(t.Source)
	t.Destination = strings.TrimSpace(t.Destination)
	t.BusType = domain.ParseBusType(string(t.BusType))
	t.OperatorSize = domain.ParseOperatorSize(string(t.OperatorSize))
	if t.Amenities == nil {
		t.Amenities = []string{}
	}
	if t.DurationMinutes < 0 {
		t.DurationMinutes = 0
	}
	if t.Price < 0 {
		t.Price = 0
	}
	if t.Rating < 0 {
		t.Rating = 0
	}
	if t.Rating > 5 {
		t.Rating = 5
	}
	if t.TotalSeats <= 0 {
		t.TotalSeats = DefaultAvailableSeats
	}
	if t.AvailableSeats < 0 || t.AvailableSeats > t.TotalSeats {
		t.AvailableSeats = t.TotalSeats
	}
}
