package api

import (
	"log"
	stdhttp "net/http"

	intconfig "busline/internal/config"
	h "busline/internal/http/handlers"
	"busline/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func NewRouter(env intconfig.Env) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	secret := []byte(env.JWTSecret)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)
		auth.GET("/me", middleware.RequireAuth(secret), h.Me)

		// Trips & search
		trips := api.Group("/trips")
		trips.POST("/search", h.SearchTrips)
		trips.GET("/search", h.SearchTripsGET)
		trips.GET("", h.GetTrips)
		trips.GET("/:id", h.GetTripByID)
		trips.PUT("/:id", middleware.RequireAuth(secret), middleware.RequireRoles("admin"), h.UpsertTrip)
		trips.DELETE("/:id", middleware.RequireAuth(secret), middleware.RequireRoles("admin"), h.RetireTrip)

		api.GET("/locations", h.GetLocations)

		// Bookings
		bookings := api.Group("/bookings", middleware.RequireAuth(secret))
		bookings.POST("", h.CreateBooking)
		bookings.DELETE("/:id", h.CancelBooking)
		bookings.GET("/user/:userId", h.GetUserBookings)
		bookings.GET("/:id/e-ticket", h.GetBookingETicket)
	}

	return r
}
