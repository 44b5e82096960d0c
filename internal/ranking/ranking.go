// Package ranking scores and orders trip candidates for a search query.
// It is pure: no storage, no errors, deterministic output for a given
// candidate set.
package ranking

import (
	"sort"

	"busline/internal/domain/models"
)

const (
	ratingWeight = 0.2
	priceWeight  = 0.1
	// priceScale turns a fare in smallest currency units into an
	// inverse-price term comparable with the rating term.
	priceScale = 1_000_000
)

// Score returns the desirability of a trip. The stored rank score wins
// when present; otherwise the blend rewards high rating and low price.
// The inverse-price term is skipped for free listings to avoid a
// division by zero.
func Score(t models.Trip) float64 {
	if t.RankScore > 0 {
		return t.RankScore
	}
	s := t.Rating * ratingWeight
	if t.Price > 0 {
		s += priceScale / float64(t.Price) * priceWeight
	}
	return s
}

// Rank orders candidates by score descending, breaking ties by price
// ascending and finally by id so identical inputs always produce the
// same order. The input slice is not modified.
func Rank(candidates []models.Trip) []models.Trip {
	out := make([]models.Trip, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		si, sj := Score(out[i]), Score(out[j])
		if si != sj {
			return si > sj
		}
		if out[i].Price != out[j].Price {
			return out[i].Price < out[j].Price
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Truncate bounds a ranked list to max entries. Non-positive max keeps
// the list unchanged.
func Truncate(trips []models.Trip, max int) []models.Trip {
	if max > 0 && len(trips) > max {
		return trips[:max]
	}
	return trips
}
