package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"busline/internal/domain"
	"busline/internal/domain/models"
	"busline/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// TicketService renders a printable e-ticket PDF for a confirmed
// booking.
type TicketService struct {
	Bookings  BookingStore
	Trips     TripStore
	RequestID string

	// Loader overrides data loading in tests.
	Loader func(ctx context.Context, bookingID string) (models.Booking, models.Trip, error)
}

// GenerateETicket builds the PDF for a booking owned by the user.
// Cancelled bookings have no valid ticket.
func (s TicketService) GenerateETicket(ctx context.Context, bookingID string, userID int64) ([]byte, string, error) {
	booking, trip, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}
	if booking.UserID != userID {
		return nil, "", domain.ForbiddenError{Resource: "booking"}
	}
	if booking.Status != domain.BookingConfirmed {
		return nil, "", domain.ValidationError{Field: "booking", Msg: "booking is cancelled"}
	}

	utils.LogEvent(s.RequestID, "ticket", "generate_eticket", fmt.Sprintf("booking_id=%s", booking.ID))
	return buildETicketPDF(booking, trip)
}

func (s TicketService) load(ctx context.Context, bookingID string) (models.Booking, models.Trip, error) {
	if s.Loader != nil {
		return s.Loader(ctx, bookingID)
	}
	booking, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	trip, err := s.Trips.GetByID(ctx, booking.TripID)
	if err != nil {
		return models.Booking{}, models.Trip{}, err
	}
	return booking, trip, nil
}

func buildETicketPDF(b models.Booking, t models.Trip) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("E-Ticket", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "E-TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking        : %s", b.ID),
		fmt.Sprintf("Route          : %s -> %s", safe(t.Source, "-"), safe(t.Destination, "-")),
		fmt.Sprintf("Boarding at    : %s", safe(t.SourceStation.Name, "-")),
		fmt.Sprintf("Arriving at    : %s", safe(t.DestinationStation.Name, "-")),
		fmt.Sprintf("Date / Time    : %s %s", safe(t.DepartureDate, "-"), safe(t.DepartureTime, "-")),
		fmt.Sprintf("Operator       : %s (%s)", safe(t.Operator, "-"), t.BusType),
		fmt.Sprintf("Seats          : %s", seatList(b.Seats)),
		fmt.Sprintf("Price per seat : %d", t.Price),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Please present this e-ticket at boarding. Valid for the listed seats only.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("ETICKET_%s.pdf", b.ID)
	return buf.Bytes(), filename, nil
}

func safe(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func seatList(seats []int) string {
	parts := make([]string, 0, len(seats))
	for _, n := range seats {
		parts = append(parts, fmt.Sprintf("%d", n))
	}
	return strings.Join(parts, ", ")
}
