package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/shopspring/decimal"

	"trip-booking/internal/services"
	"trip-booking/internal/store"
	"trip-booking/models"
)

type TicketHandler struct {
	app   *pocketbase.PocketBase
	store store.Store
	cache *services.TicketCache
}

func NewTicketHandler(app *pocketbase.PocketBase, st store.Store, cache *services.TicketCache) *TicketHandler {
	return &TicketHandler{app: app, store: st, cache: cache}
}

// CreateTicket - vendor lists a new ticket; it starts in pending verification
func (h *TicketHandler) CreateTicket(e *core.RequestEvent) error {
	var req struct {
		VendorID    string  `json:"vendor_id"`
		Transport   string  `json:"transport"`
		Origin      string  `json:"origin"`
		Destination string  `json:"destination"`
		Departure   string  `json:"departure"`
		Price       float64 `json:"price"`
		Quantity    int     `json:"quantity"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if req.VendorID == "" || req.Origin == "" || req.Destination == "" {
		return apis.NewBadRequestError("vendor_id, origin and destination are required", nil)
	}
	if req.Quantity < 1 {
		return apis.NewBadRequestError("quantity must be at least 1", nil)
	}
	if req.Price < 0 {
		return apis.NewBadRequestError("price must not be negative", nil)
	}

	departure, err := time.Parse(time.RFC3339, req.Departure)
	if err != nil {
		return apis.NewBadRequestError("departure must be RFC3339", err)
	}

	ctx := e.Request.Context()
	if _, err := h.store.FindVendor(ctx, req.VendorID); err != nil {
		return toApiError(err)
	}

	ticket := &models.Ticket{
		VendorID:    req.VendorID,
		Transport:   models.Transport(req.Transport),
		Origin:      req.Origin,
		Destination: req.Destination,
		Departure:   departure,
		Price:       decimal.NewFromFloat(req.Price),
		Remaining:   req.Quantity,
	}
	if err := h.store.CreateTicket(ctx, ticket); err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusCreated, ticket)
}

// GetTicket - fetch a single ticket
func (h *TicketHandler) GetTicket(e *core.RequestEvent) error {
	ticketID := e.Request.PathValue("ticketId")

	ticket, err := h.store.FindTicket(e.Request.Context(), ticketID)
	if err != nil {
		return toApiError(err)
	}

	return e.JSON(http.StatusOK, ticket)
}

// GetAdvertisedTickets - the promotional banner listing, served from cache
// when warm
func (h *TicketHandler) GetAdvertisedTickets(e *core.RequestEvent) error {
	ctx := e.Request.Context()

	if payload, ok := h.cache.GetAdvertised(ctx); ok {
		return e.JSON(http.StatusOK, json.RawMessage(payload))
	}

	tickets, err := h.store.ListAdvertisedTickets(ctx)
	if err != nil {
		return toApiError(err)
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}

	payload, err := json.Marshal(map[string]any{
		"tickets": tickets,
		"count":   len(tickets),
	})
	if err != nil {
		return apis.NewApiError(http.StatusInternalServerError, "Something went wrong", err)
	}

	h.cache.SetAdvertised(ctx, payload)
	return e.JSON(http.StatusOK, json.RawMessage(payload))
}
