package domain

import "strings"

// BusType is the closed set of coach categories coming from ingestion.
type BusType string

const (
	BusSleeper   BusType = "Sleeper"
	BusLimousine BusType = "Limousine"
	BusStandard  BusType = "Standard"
	BusMinivan   BusType = "Minivan"
)

// ParseBusType maps free-form ingestion text to a known category.
// Unknown or empty values fall back to Standard.
func ParseBusType(s string) BusType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sleeper":
		return BusSleeper
	case "limousine":
		return BusLimousine
	case "minivan":
		return BusMinivan
	default:
		return BusStandard
	}
}

// OperatorSize classifies the operating company.
type OperatorSize string

const (
	OperatorSmall  OperatorSize = "Small"
	OperatorMedium OperatorSize = "Medium"
	OperatorLarge  OperatorSize = "Large"
)

// ParseOperatorSize defaults to Small for unknown values.
func ParseOperatorSize(s string) OperatorSize {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "medium":
		return OperatorMedium
	case "large":
		return OperatorLarge
	default:
		return OperatorSmall
	}
}

// BookingStatus has exactly two values; cancelled is terminal.
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// SearchTier tells the caller whether a result matched the requested
// departure date (exact) or only the destination (fallback).
type SearchTier string

const (
	TierExact    SearchTier = "exact"
	TierFallback SearchTier = "fallback"
)
