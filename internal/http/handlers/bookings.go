package handlers

import (
	"net/http"
	"strconv"

	"busline/internal/http/middleware"
	"busline/internal/repositories"
	"busline/internal/services"

	"github.com/gin-gonic/gin"
)

func bookingService(c *gin.Context) services.BookingService {
	e := appEnv()
	return services.BookingService{
		Trips:      repositories.TripRepository{},
		Bookings:   repositories.BookingRepository{},
		Notifier:   eventNotifier(),
		MaxRetries: e.ReserveRetries,
		RequestID:  middleware.GetRequestID(c),
	}
}

type createBookingRequest struct {
	TripID string `json:"trip_id"`
	Seats  []int  `json:"seats"`
}

// CreateBooking handles POST /api/bookings. The owning user comes from
// the token, never from the payload.
func CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := bookingService(c).Reserve(c.Request.Context(), middleware.AuthUserID(c), req.TripID, req.Seats)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking_id": booking.ID, "booking": booking})
}

// CancelBooking handles DELETE /api/bookings/:id. Repeating the call on
// an already-cancelled booking succeeds without restoring seats twice.
func CancelBooking(c *gin.Context) {
	if err := bookingService(c).Cancel(c.Request.Context(), c.Param("id"), middleware.AuthUserID(c)); err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking cancelled"})
}

// GetUserBookings handles GET /api/bookings/user/:userId.
func GetUserBookings(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || userID <= 0 {
		RespondError(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	if userID != middleware.AuthUserID(c) {
		RespondError(c, http.StatusForbidden, "forbidden", nil)
		return
	}

	bookings, err := bookingService(c).ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBookingETicket handles GET /api/bookings/:id/e-ticket.
func GetBookingETicket(c *gin.Context) {
	svc := services.TicketService{
		Bookings:  repositories.BookingRepository{},
		Trips:     repositories.TripRepository{},
		RequestID: middleware.GetRequestID(c),
	}
	pdf, filename, err := svc.GenerateETicket(c.Request.Context(), c.Param("id"), middleware.AuthUserID(c))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
