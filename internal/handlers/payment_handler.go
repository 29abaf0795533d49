package handlers

import (
	"fmt"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"trip-booking/internal/services"
	"trip-booking/internal/services/payment"
	"trip-booking/internal/store"
	"trip-booking/models"
	"trip-booking/utils"
)

type PaymentHandler struct {
	app            *pocketbase.PocketBase
	store          store.Store
	bookingService *services.BookingService
	gateway        payment.Gateway
	breaker        *utils.CircuitBreaker
}

func NewPaymentHandler(app *pocketbase.PocketBase, st store.Store, bookingService *services.BookingService, gateway payment.Gateway) *PaymentHandler {
	return &PaymentHandler{
		app:            app,
		store:          st,
		bookingService: bookingService,
		gateway:        gateway,
		breaker:        utils.NewCircuitBreaker("payment-gateway"),
	}
}

// PayBooking - create a charge intent for an accepted booking and return the
// opaque client token
func (h *PaymentHandler) PayBooking(e *core.RequestEvent) error {
	if h.gateway == nil {
		return apis.NewApiError(http.StatusServiceUnavailable, "Payment gateway not configured", nil)
	}

	bookingID := e.Request.PathValue("bookingId")

	var req struct {
		Phone string `json:"phone"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	ctx := e.Request.Context()

	booking, err := h.store.FindBooking(ctx, bookingID)
	if err != nil {
		return toApiError(err)
	}
	if booking.Status != models.BookingAccepted {
		return apis.NewBadRequestError(
			fmt.Sprintf("booking must be accepted before payment, currently %s", booking.Status), nil)
	}

	refLabel, _ := utils.GenerateCode(4)

	token, err := h.breaker.Execute(ctx, func() (any, error) {
		return h.gateway.CreateChargeIntent(ctx, &payment.ChargeRequest{
			BookingID:      booking.ID,
			Amount:         booking.Total,
			Phone:          req.Phone,
			Description:    fmt.Sprintf("booking %s", booking.ID),
			ReferenceLabel: refLabel,
		})
	})
	if err != nil {
		return apis.NewApiError(http.StatusBadGateway, "Failed to create charge intent", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"booking_id":   booking.ID,
		"amount":       booking.Total,
		"client_token": token,
	})
}

// ConfirmPayment - record a completed payment against its booking; safe to
// retry with the same external reference
func (h *PaymentHandler) ConfirmPayment(e *core.RequestEvent) error {
	var req struct {
		BookingID   string `json:"booking_id"`
		ExternalRef string `json:"external_ref"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.BookingID == "" || req.ExternalRef == "" {
		return apis.NewBadRequestError("booking_id and external_ref are required", nil)
	}

	if err := h.bookingService.MarkPaid(e.Request.Context(), req.BookingID, req.ExternalRef); err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"booking_id": req.BookingID,
		"status":     string(models.BookingPaid),
	})
}

// GetPaymentStatus - booking payment state plus its transaction, if any
func (h *PaymentHandler) GetPaymentStatus(e *core.RequestEvent) error {
	bookingID := e.Request.PathValue("bookingId")
	ctx := e.Request.Context()

	booking, err := h.store.FindBooking(ctx, bookingID)
	if err != nil {
		return toApiError(err)
	}

	response := map[string]any{
		"booking_id": booking.ID,
		"status":     booking.Status,
	}
	if tx, err := h.store.FindTransactionByBooking(ctx, bookingID); err == nil {
		response["transaction"] = tx
	}

	return e.JSON(http.StatusOK, response)
}
