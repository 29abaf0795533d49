package services

import (
	"context"
	"errors"
	"fmt"

	"trip-booking/internal/status"
	"trip-booking/internal/store"
	"trip-booking/monitoring"
)

// LedgerService owns every mutation of a ticket's remaining quantity. The
// check and the decrement happen in one guarded store write, so two
// concurrent reservations can never both pass the check against stale data.
type LedgerService struct {
	Store store.Store
}

func NewLedgerService(s store.Store) *LedgerService {
	return &LedgerService{Store: s}
}

// Reserve decrements the ticket's remaining quantity by qty, failing with
// ErrInsufficientStock when fewer than qty units remain. On failure nothing
// is mutated.
func (s *LedgerService) Reserve(ctx context.Context, ticketID string, qty int) error {
	return s.reserve(ctx, s.Store, ticketID, qty)
}

// reserve runs against an explicit store so the booking paid commit can call
// it inside its transaction scope.
func (s *LedgerService) reserve(ctx context.Context, st store.Store, ticketID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("reserve: quantity must be positive, got %d", qty)
	}

	applied, err := st.AdjustQuantity(ctx, ticketID, -qty)
	if err != nil {
		monitoring.TrackReserve("error")
		return err
	}
	if !applied {
		if _, err := st.FindTicket(ctx, ticketID); err != nil {
			if errors.Is(err, status.ErrTicketNotFound) {
				monitoring.TrackReserve("not_found")
			}
			return err
		}
		monitoring.TrackReserve("insufficient")
		return status.ErrInsufficientStock
	}

	monitoring.TrackReserve("ok")
	return nil
}

// Restock returns qty units to the ticket's remaining quantity. Not used by
// the current booking flow (paid bookings are final) but carries the same
// atomicity guarantee as Reserve.
func (s *LedgerService) Restock(ctx context.Context, ticketID string, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("restock: quantity must be positive, got %d", qty)
	}

	applied, err := s.Store.AdjustQuantity(ctx, ticketID, qty)
	if err != nil {
		monitoring.TrackRestock("error")
		return err
	}
	if !applied {
		// A positive delta only fails to apply when the row is missing.
		if _, err := s.Store.FindTicket(ctx, ticketID); err != nil {
			monitoring.TrackRestock("not_found")
			return err
		}
		return fmt.Errorf("%w: restock did not apply", status.ErrStoreUnavailable)
	}

	monitoring.TrackRestock("ok")
	return nil
}
