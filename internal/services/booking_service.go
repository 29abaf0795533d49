package services

import (
	"context"
	"errors"
	"fmt"

	pubnub "github.com/pubnub/go"
	"github.com/shopspring/decimal"

	"trip-booking/internal/status"
	"trip-booking/internal/store"
	"trip-booking/models"
	"trip-booking/monitoring"
)

// BookingService advances bookings through their lifecycle:
// pending -> accepted|rejected (vendor decision), accepted -> paid (payment
// completion). The paid transition, the inventory decrement and the
// transaction insert commit as one atomic unit or not at all.
type BookingService struct {
	Store  store.Store
	PubNub *pubnub.PubNub
	ledger *LedgerService
}

func NewBookingService(s store.Store, pn *pubnub.PubNub, ledger *LedgerService) *BookingService {
	return &BookingService{Store: s, PubNub: pn, ledger: ledger}
}

// Create opens a pending booking against an approved ticket. The quantity is
// not reserved yet; stock is only committed at payment time.
func (s *BookingService) Create(ctx context.Context, customerID, ticketID string, qty int) (*models.Booking, error) {
	if qty < 1 {
		return nil, fmt.Errorf("booking: quantity must be at least 1, got %d", qty)
	}

	ticket, err := s.Store.FindTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.Bookable() {
		return nil, status.ErrTicketNotApproved
	}

	booking := &models.Booking{
		TicketID:   ticketID,
		CustomerID: customerID,
		Quantity:   qty,
		Total:      ticket.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
	if err := s.Store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	monitoring.TrackBookingTransition("pending", "ok")
	return booking, nil
}

// Decide records the vendor's accept/reject outcome. Legal only while the
// booking is pending.
func (s *BookingService) Decide(ctx context.Context, bookingID string, outcome models.BookingStatus) error {
	if outcome != models.BookingAccepted && outcome != models.BookingRejected {
		return status.ErrInvalidDecision
	}

	applied, err := s.Store.TransitionBooking(ctx, bookingID, models.BookingPending, outcome)
	if err != nil {
		monitoring.TrackBookingTransition(string(outcome), "error")
		return err
	}
	if !applied {
		booking, err := s.Store.FindBooking(ctx, bookingID)
		if err != nil {
			monitoring.TrackBookingTransition(string(outcome), "not_found")
			return err
		}
		monitoring.TrackBookingTransition(string(outcome), "illegal")
		return fmt.Errorf("%w: booking is %s", status.ErrInvalidTransition, booking.Status)
	}

	monitoring.TrackBookingTransition(string(outcome), "ok")
	s.notifyCustomer(ctx, bookingID, map[string]any{
		"type":       "booking_decided",
		"booking_id": bookingID,
		"status":     string(outcome),
	})
	return nil
}

// MarkPaid commits the paid transition. Inside one transaction it verifies
// the booking is accepted, reserves the booked quantity, inserts the
// transaction record and flips the status; a failure at any step rolls the
// whole unit back, leaving the booking accepted and no transaction row.
//
// Retrying with the transaction reference already recorded for the booking
// is a no-op success, so gateway redeliveries cannot double-decrement.
func (s *BookingService) MarkPaid(ctx context.Context, bookingID, transactionRef string) error {
	if transactionRef == "" {
		return fmt.Errorf("%w: transaction reference required", status.ErrInvalidDecision)
	}

	err := s.Store.Atomic(ctx, func(tx store.Store) error {
		booking, err := tx.FindBooking(ctx, bookingID)
		if err != nil {
			return err
		}

		existing, err := tx.FindTransactionByBooking(ctx, bookingID)
		switch {
		case err == nil:
			if booking.Status == models.BookingPaid && existing.ExternalRef == transactionRef {
				return nil
			}
			return fmt.Errorf("%w: booking already has transaction %s", status.ErrInvalidTransition, existing.ExternalRef)
		case errors.Is(err, status.ErrTransactionNotFound):
			// First attempt for this booking.
		default:
			return err
		}

		if !models.CanTransitionBooking(booking.Status, models.BookingPaid) {
			return fmt.Errorf("%w: booking is %s", status.ErrInvalidTransition, booking.Status)
		}

		if err := s.ledger.reserve(ctx, tx, booking.TicketID, booking.Quantity); err != nil {
			return err
		}

		if err := tx.CreateTransaction(ctx, &models.Transaction{
			BookingID:   bookingID,
			Amount:      booking.Total,
			ExternalRef: transactionRef,
		}); err != nil {
			return err
		}

		applied, err := tx.SetBookingPaid(ctx, bookingID, transactionRef)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: booking is no longer accepted", status.ErrInvalidTransition)
		}
		return nil
	})
	if err != nil {
		monitoring.TrackBookingTransition("paid", "failed")
		return err
	}

	monitoring.TrackBookingTransition("paid", "ok")
	s.notifyCustomer(ctx, bookingID, map[string]any{
		"type":            "payment_success",
		"booking_id":      bookingID,
		"transaction_ref": transactionRef,
	})
	return nil
}

func (s *BookingService) notifyCustomer(ctx context.Context, bookingID string, message map[string]any) {
	if s.PubNub == nil {
		return
	}

	booking, err := s.Store.FindBooking(ctx, bookingID)
	if err != nil {
		return
	}

	channel := fmt.Sprintf("user-%s", booking.CustomerID)
	s.PubNub.Publish().
		Channel(channel).
		Message(message).
		Execute()
}
