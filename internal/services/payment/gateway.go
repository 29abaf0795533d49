// Package payment defines the charge-intent gateway boundary. The core only
// ever asks a gateway to create a charge intent for an amount and records the
// external transaction reference that eventually comes back; everything else
// about the provider is opaque.
package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider identifies a payment gateway implementation.
type Provider string

const (
	ProviderPayLao Provider = "paylao"
)

// ChargeRequest asks the gateway for a charge intent.
type ChargeRequest struct {
	BookingID      string          `json:"booking_id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Phone          string          `json:"phone,omitempty"`
	Description    string          `json:"description,omitempty"`
	ReferenceLabel string          `json:"reference_label,omitempty"`
}

// Notification is a payment outcome pushed by the gateway.
type Notification struct {
	BookingID   string          `json:"booking_id"`
	ExternalRef string          `json:"external_ref"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Timestamp   int64           `json:"timestamp"`
}

// Succeeded reports whether the notification confirms a completed payment.
func (n *Notification) Succeeded() bool {
	return n.Status == "success"
}

// Gateway is the common surface of all payment providers.
type Gateway interface {
	// GetProvider returns the provider type.
	GetProvider() Provider

	// CreateChargeIntent creates a charge intent and returns an opaque
	// client token the frontend hands to the provider.
	CreateChargeIntent(ctx context.Context, req *ChargeRequest) (string, error)

	// SetNotificationChannel sets the channel receiving payment outcomes.
	SetNotificationChannel(ch chan *Notification)

	// Close gracefully closes any connections.
	Close(ctx context.Context) error
}
