package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending  BookingStatus = "pending"
	BookingAccepted BookingStatus = "accepted"
	BookingRejected BookingStatus = "rejected"
	BookingPaid     BookingStatus = "paid"
)

// bookingTransitions is the single source of truth for booking lifecycle
// legality. rejected and paid have no outgoing edges.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:  {BookingAccepted, BookingRejected},
	BookingAccepted: {BookingPaid},
}

// CanTransitionBooking reports whether from -> to is a legal booking move.
func CanTransitionBooking(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TerminalBookingStatus reports whether s has no outgoing transitions.
func TerminalBookingStatus(s BookingStatus) bool {
	return len(bookingTransitions[s]) == 0
}

type Booking struct {
	ID             string          `json:"id"`
	TicketID       string          `json:"ticket_id"`
	CustomerID     string          `json:"customer_id"`
	Quantity       int             `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
	Status         BookingStatus   `json:"status"`
	TransactionRef string          `json:"transaction_ref,omitempty"`
	PaidAt         time.Time       `json:"paid_at,omitzero"`
	Created        time.Time       `json:"created"`
	Updated        time.Time       `json:"updated"`
}
