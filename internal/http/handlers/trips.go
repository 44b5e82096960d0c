package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"busline/internal/domain/models"
	"busline/internal/repositories"
	"busline/internal/services"

	"github.com/gin-gonic/gin"
)

func searchService() services.SearchService {
	e := appEnv()
	return services.SearchService{
		Trips:    repositories.TripRepository{},
		Cache:    searchCache(),
		CacheTTL: e.SearchCacheTTL,
	}
}

// SearchTrips handles POST /api/trips/search.
func SearchTrips(c *gin.Context) {
	var q services.SearchQuery
	if !BindJSONOrError(c, &q) {
		return
	}
	runSearch(c, q)
}

// SearchTripsGET handles GET /api/trips/search with query parameters.
func SearchTripsGET(c *gin.Context) {
	q := services.SearchQuery{
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
	}
	if raw := strings.TrimSpace(c.Query("max_results")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			q.MaxResults = n
		}
	}
	runSearch(c, q)
}

func runSearch(c *gin.Context, q services.SearchQuery) {
	results, err := searchService().Search(c.Request.Context(), q)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// GetTrips handles GET /api/trips.
func GetTrips(c *gin.Context) {
	trips, err := repositories.TripRepository{}.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}

// GetTripByID handles GET /api/trips/:id.
func GetTripByID(c *gin.Context) {
	trip, err := repositories.TripRepository{}.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// UpsertTrip handles PUT /api/trips/:id, the ingestion contract: trip
// records arrive keyed by their external identity. Admin only.
func UpsertTrip(c *gin.Context) {
	var trip models.Trip
	if !BindJSONOrError(c, &trip) {
		return
	}
	trip.ID = strings.TrimSpace(c.Param("id"))

	if err := (repositories.TripRepository{}).Upsert(c.Request.Context(), trip); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip stored", "id": trip.ID})
}

// RetireTrip handles DELETE /api/trips/:id. Soft-retire only: bookings
// keep referencing the trip.
func RetireTrip(c *gin.Context) {
	if err := (repositories.TripRepository{}).Retire(c.Request.Context(), c.Param("id")); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "trip retired"})
}

// GetLocations handles GET /api/locations.
func GetLocations(c *gin.Context) {
	locations, err := repositories.TripRepository{}.Locations(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": locations})
}
