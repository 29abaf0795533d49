package handlers

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"trip-booking/internal/services"
	"trip-booking/models"
)

type BookingHandler struct {
	app            *pocketbase.PocketBase
	bookingService *services.BookingService
}

func NewBookingHandler(app *pocketbase.PocketBase, bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{app: app, bookingService: bookingService}
}

// CreateBooking - customer opens a pending booking against an approved ticket
func (h *BookingHandler) CreateBooking(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		TicketID string `json:"ticket_id"`
		Quantity int    `json:"quantity"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Quantity < 1 {
		return apis.NewBadRequestError("quantity must be at least 1", nil)
	}

	booking, err := h.bookingService.Create(e.Request.Context(), e.Auth.Id, req.TicketID, req.Quantity)
	if err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusCreated, booking)
}

// GetBookingHistory - the caller's bookings, newest first
func (h *BookingHandler) GetBookingHistory(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookings, err := h.app.FindRecordsByFilter(
		"bookings",
		"customer = {:customer}",
		"-created",
		20,
		0,
		dbx.Params{"customer": e.Auth.Id},
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to get bookings", err)
	}

	result := []map[string]any{}
	for _, booking := range bookings {
		entry := map[string]any{
			"id":              booking.Id,
			"ticket_id":       booking.GetString("ticket"),
			"quantity":        booking.GetInt("quantity"),
			"total":           booking.GetFloat("total"),
			"status":          booking.GetString("status"),
			"transaction_ref": booking.GetString("transaction_ref"),
			"created":         booking.GetDateTime("created"),
		}

		if ticket, err := h.app.FindRecordById("tickets", booking.GetString("ticket")); err == nil {
			entry["origin"] = ticket.GetString("origin")
			entry["destination"] = ticket.GetString("destination")
			entry["transport"] = ticket.GetString("transport")
		}

		result = append(result, entry)
	}

	return e.JSON(http.StatusOK, result)
}

// DecideBooking - vendor accepts or rejects a pending booking
func (h *BookingHandler) DecideBooking(e *core.RequestEvent) error {
	bookingID := e.Request.PathValue("bookingId")

	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.bookingService.Decide(e.Request.Context(), bookingID, models.BookingStatus(req.Outcome)); err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"booking_id": bookingID,
		"status":     req.Outcome,
	})
}
