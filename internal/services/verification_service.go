package services

import (
	"context"

	"trip-booking/internal/status"
	"trip-booking/internal/store"
	"trip-booking/models"
)

// VerificationService owns a ticket's verification status. Verify handles the
// normal admin flow from pending; Reinstate is the explicitly separate
// reversal of a normal rejection. Fraud rejections (fraud flag set) are
// terminal and cannot be reinstated.
type VerificationService struct {
	Store store.Store
	cache *TicketCache
}

func NewVerificationService(s store.Store, cache *TicketCache) *VerificationService {
	return &VerificationService{Store: s, cache: cache}
}

// Verify records the admin decision for a pending ticket. Any transition to
// rejected clears the advertised flag in the same store write.
func (s *VerificationService) Verify(ctx context.Context, ticketID string, decision models.VerificationStatus) error {
	if !models.ValidDecision(decision) {
		return status.ErrInvalidDecision
	}

	applied, err := s.Store.TransitionVerification(ctx, ticketID, models.VerificationPending, decision)
	if err != nil {
		return err
	}
	if !applied {
		if _, err := s.Store.FindTicket(ctx, ticketID); err != nil {
			return err
		}
		return status.ErrInvalidTransition
	}

	if decision == models.VerificationRejected {
		s.cache.Invalidate(ctx)
	}
	return nil
}

// Reinstate moves a normally-rejected ticket back to approved. The store
// guard refuses the move when the rejection came from a fraud cascade.
func (s *VerificationService) Reinstate(ctx context.Context, ticketID string) error {
	applied, err := s.Store.TransitionVerification(ctx, ticketID, models.VerificationRejected, models.VerificationApproved)
	if err != nil {
		return err
	}
	if !applied {
		if _, err := s.Store.FindTicket(ctx, ticketID); err != nil {
			return err
		}
		return status.ErrInvalidTransition
	}
	return nil
}
