package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

type Transport string

const (
	TransportBus   Transport = "bus"
	TransportVan   Transport = "van"
	TransportBoat  Transport = "boat"
	TransportTrain Transport = "train"
)

// Ticket is a sellable inventory unit for a route offering. The remaining
// quantity, verification status and advertised flag are mutated only through
// their owning services; everything else is set once at creation.
type Ticket struct {
	ID           string             `json:"id"`
	VendorID     string             `json:"vendor_id"`
	Transport    Transport          `json:"transport"`
	Origin       string             `json:"origin"`
	Destination  string             `json:"destination"`
	Departure    time.Time          `json:"departure"`
	Price        decimal.Decimal    `json:"price"`
	Remaining    int                `json:"remaining"`
	Verification VerificationStatus `json:"verification"`
	Advertised   bool               `json:"advertised"`
	FraudFlagged bool               `json:"fraud_flagged"`
	VerifiedAt   time.Time          `json:"verified_at,omitzero"`
	AdvertisedAt time.Time          `json:"advertised_at,omitzero"`
	Created      time.Time          `json:"created"`
	Updated      time.Time          `json:"updated"`
}

// ValidDecision reports whether d is an admin verification outcome.
func ValidDecision(d VerificationStatus) bool {
	return d == VerificationApproved || d == VerificationRejected
}

// Bookable reports whether bookings may be created against the ticket.
func (t *Ticket) Bookable() bool {
	return t.Verification == VerificationApproved
}
