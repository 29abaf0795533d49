package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"trip-booking/internal/services"
	"trip-booking/models"
)

type AdminHandler struct {
	app          *pocketbase.PocketBase
	verification *services.VerificationService
	allocator    *services.AllocatorService
	fraud        *services.FraudService
}

func NewAdminHandler(app *pocketbase.PocketBase, verification *services.VerificationService, allocator *services.AllocatorService, fraud *services.FraudService) *AdminHandler {
	return &AdminHandler{
		app:          app,
		verification: verification,
		allocator:    allocator,
		fraud:        fraud,
	}
}

// VerifyTicket - admin approves or rejects a pending ticket listing
func (h *AdminHandler) VerifyTicket(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	var req struct {
		Decision string `json:"decision"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	err := h.verification.Verify(e.Request.Context(), ticketID, models.VerificationStatus(req.Decision))
	if err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id":    ticketID,
		"verification": req.Decision,
	})
}

// ReinstateTicket - admin reverses a normal rejection; fraud rejections stay
func (h *AdminHandler) ReinstateTicket(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	if err := h.verification.Reinstate(e.Request.Context(), ticketID); err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id":    ticketID,
		"verification": string(models.VerificationApproved),
	})
}

// AdvertiseTicket - grant one of the promotional slots
func (h *AdminHandler) AdvertiseTicket(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	if err := h.allocator.GrantSlot(e.Request.Context(), ticketID); err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id":  ticketID,
		"advertised": true,
	})
}

// UnadvertiseTicket - return the ticket's slot to the pool
func (h *AdminHandler) UnadvertiseTicket(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	if err := h.allocator.RevokeSlot(e.Request.Context(), ticketID); err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"ticket_id":  ticketID,
		"advertised": false,
	})
}

// MarkVendorFraud - cascade a fraud determination across the vendor's tickets
func (h *AdminHandler) MarkVendorFraud(e *core.RequestEvent) error {
	vendorID := e.Request.PathValue("vendorId")

	report, err := h.fraud.MarkVendorFraudulent(e.Request.Context(), vendorID)
	if err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusOK, report)
}
