package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"busline/internal/cache"
	"busline/internal/domain"
	"busline/internal/domain/models"
	"busline/internal/ranking"
	"busline/internal/utils"
)

const (
	defaultMaxResults = 5

	labelExact    = "Matches the requested travel date"
	labelFallback = "Closest match; no departures on the requested date"
)

// SearchQuery is the caller's request. Date is optional DD-MMM-YYYY and
// defaults to the current calendar day; MaxResults below 1 falls back to
// the default of 5.
type SearchQuery struct {
	Destination string `json:"destination"`
	Date        string `json:"date"`
	MaxResults  int    `json:"max_results"`
}

// TripResult annotates a trip for one search answer. Tier is the
// machine-checkable confidence signal; Recommendation is presentation
// text derived from it. Neither is a persisted trip attribute.
type TripResult struct {
	models.Trip
	Tier           domain.SearchTier `json:"tier"`
	Recommendation string            `json:"recommendation"`
}

// TripFinder is the read-side slice of trip storage searching needs.
type TripFinder interface {
	FindByDestination(ctx context.Context, destination, dateFilter string) ([]models.Trip, error)
}

// SearchService ranks candidate trips for a query with a two-tier
// degradation policy: exact date match first, destination-only fallback
// second. An empty result set is a reportable outcome, not a failure.
type SearchService struct {
	Trips    TripFinder
	Cache    *cache.Cache
	CacheTTL time.Duration

	// Today overrides the default search date in tests.
	Today func() string
}

func (s SearchService) today() string {
	if s.Today != nil {
		return s.Today()
	}
	return utils.TodayTripDate()
}

func (s SearchService) cacheTTL() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return 30 * time.Second
}

// Search returns at most MaxResults annotated trips, deterministically
// ordered (score descending, price ascending). When both tiers are
// empty it reports NotFound: "no matching trip" is distinct from a
// degraded match.
func (s SearchService) Search(ctx context.Context, q SearchQuery) ([]TripResult, error) {
	destination := utils.NormalizeSpace(q.Destination)
	if destination == "" {
		return nil, domain.ValidationError{Field: "destination", Msg: "must not be empty"}
	}

	date := strings.TrimSpace(q.Date)
	if date == "" {
		date = s.today()
	} else if _, err := utils.ParseTripDate(date); err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "expected DD-MMM-YYYY, e.g. 21-May-2025", Err: err}
	}
	max := q.MaxResults
	if max < 1 {
		max = defaultMaxResults
	}

	key := fmt.Sprintf("search:%s|%s|%d", strings.ToLower(destination), date, max)
	var cached []TripResult
	if s.Cache.Get(ctx, key, &cached) && len(cached) > 0 {
		return cached, nil
	}

	candidates, err := s.Trips.FindByDestination(ctx, destination, date)
	if err != nil {
		return nil, err
	}
	tier := domain.TierExact

	if len(candidates) == 0 {
		candidates, err = s.Trips.FindByDestination(ctx, destination, "")
		if err != nil {
			return nil, err
		}
		tier = domain.TierFallback
	}
	if len(candidates) == 0 {
		return nil, domain.NotFoundError{Resource: "matching trip"}
	}

	ranked := ranking.Truncate(ranking.Rank(candidates), max)
	results := make([]TripResult, 0, len(ranked))
	for _, t := range ranked {
		t.RankScore = ranking.Score(t)
		results = append(results, TripResult{
			Trip:           t,
			Tier:           tier,
			Recommendation: label(tier),
		})
	}

	s.Cache.Set(ctx, key, results, s.cacheTTL())
	return results, nil
}

func label(tier domain.SearchTier) string {
	if tier == domain.TierFallback {
		return labelFallback
	}
	return labelExact
}
