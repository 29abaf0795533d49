package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionBooking_LegalMoves(t *testing.T) {
	assert.True(t, CanTransitionBooking(BookingPending, BookingAccepted))
	assert.True(t, CanTransitionBooking(BookingPending, BookingRejected))
	assert.True(t, CanTransitionBooking(BookingAccepted, BookingPaid))
}

func TestCanTransitionBooking_IllegalMoves(t *testing.T) {
	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
	}{
		{"pending cannot go straight to paid", BookingPending, BookingPaid},
		{"accepted cannot be rejected", BookingAccepted, BookingRejected},
		{"accepted cannot revert to pending", BookingAccepted, BookingPending},
		{"rejected is terminal", BookingRejected, BookingAccepted},
		{"rejected cannot be paid", BookingRejected, BookingPaid},
		{"paid is terminal", BookingPaid, BookingPending},
		{"paid cannot be paid again", BookingPaid, BookingPaid},
		{"no self loop on pending", BookingPending, BookingPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, CanTransitionBooking(tt.from, tt.to))
		})
	}
}

func TestCanTransitionBooking_UnknownStatus(t *testing.T) {
	assert.False(t, CanTransitionBooking(BookingStatus("limbo"), BookingAccepted))
	assert.False(t, CanTransitionBooking(BookingPending, BookingStatus("limbo")))
}

func TestTerminalBookingStatus(t *testing.T) {
	assert.False(t, TerminalBookingStatus(BookingPending))
	assert.False(t, TerminalBookingStatus(BookingAccepted))
	assert.True(t, TerminalBookingStatus(BookingRejected))
	assert.True(t, TerminalBookingStatus(BookingPaid))
}

func TestValidDecision(t *testing.T) {
	assert.True(t, ValidDecision(VerificationApproved))
	assert.True(t, ValidDecision(VerificationRejected))
	assert.False(t, ValidDecision(VerificationPending))
	assert.False(t, ValidDecision(VerificationStatus("maybe")))
	assert.False(t, ValidDecision(VerificationStatus("")))
}

func TestTicket_Bookable(t *testing.T) {
	ticket := Ticket{Verification: VerificationApproved}
	assert.True(t, ticket.Bookable())

	ticket.Verification = VerificationPending
	assert.False(t, ticket.Bookable())

	ticket.Verification = VerificationRejected
	assert.False(t, ticket.Bookable())
}

func TestBooking_TotalIsExactDecimal(t *testing.T) {
	// 3 x 150000.50 must come out exact, not float-ish.
	price := decimal.RequireFromString("150000.50")
	total := price.Mul(decimal.NewFromInt(3))

	assert.True(t, total.Equal(decimal.RequireFromString("450001.50")))
}
