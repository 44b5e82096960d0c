package services

import (
	"bytes"
	"context"
	"testing"

	"busline/internal/domain"
	"busline/internal/domain/models"
)

func ticketLoader(b models.Booking, t models.Trip) func(context.Context, string) (models.Booking, models.Trip, error) {
	return func(context.Context, string) (models.Booking, models.Trip, error) {
		return b, t, nil
	}
}

func TestGenerateETicketProducesPDF(t *testing.T) {
	booking := models.Booking{ID: "bk-1", UserID: 7, TripID: "trip-1", Seats: []int{3, 4}, Status: domain.BookingConfirmed}
	trip := models.Trip{ID: "trip-1", Source: "Hanoi", Destination: "Da Nang", Operator: "GreenBus"}
	svc := TicketService{Loader: ticketLoader(booking, trip)}

	pdf, filename, err := svc.GenerateETicket(context.Background(), "bk-1", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filename != "ETICKET_bk-1.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output does not look like a PDF (%d bytes)", len(pdf))
	}
}

func TestGenerateETicketForbiddenForNonOwner(t *testing.T) {
	booking := models.Booking{ID: "bk-1", UserID: 7, Status: domain.BookingConfirmed}
	svc := TicketService{Loader: ticketLoader(booking, models.Trip{})}

	if _, _, err := svc.GenerateETicket(context.Background(), "bk-1", 99); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestGenerateETicketRejectsCancelledBooking(t *testing.T) {
	booking := models.Booking{ID: "bk-1", UserID: 7, Status: domain.BookingCancelled}
	svc := TicketService{Loader: ticketLoader(booking, models.Trip{})}

	if _, _, err := svc.GenerateETicket(context.Background(), "bk-1", 7); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
