package services

import (
	"context"

	"trip-booking/internal/status"
	"trip-booking/internal/store"
	"trip-booking/models"
	"trip-booking/monitoring"
)

// DefaultSlotCapacity is the size of the promotional advertisement pool.
const DefaultSlotCapacity = 6

// AllocatorService owns the advertised flag on tickets. The pool bound is
// enforced inside a single guarded store write, so concurrent grants racing
// for the last slot resolve to exactly one winner.
type AllocatorService struct {
	Store    store.Store
	Capacity int
	cache    *TicketCache
}

func NewAllocatorService(s store.Store, capacity int, cache *TicketCache) *AllocatorService {
	if capacity <= 0 {
		capacity = DefaultSlotCapacity
	}
	return &AllocatorService{Store: s, Capacity: capacity, cache: cache}
}

// GrantSlot gives the ticket one of the advertisement slots. Granting a slot
// to a ticket that already holds one is a no-op success.
func (s *AllocatorService) GrantSlot(ctx context.Context, ticketID string) error {
	applied, err := s.Store.GrantAdvertisement(ctx, ticketID, s.Capacity)
	if err != nil {
		monitoring.TrackSlot("grant", "error")
		return err
	}
	if applied {
		monitoring.TrackSlot("grant", "ok")
		s.cache.Invalidate(ctx)
		return nil
	}

	// The guard did not hold; read the ticket to find out why.
	ticket, err := s.Store.FindTicket(ctx, ticketID)
	if err != nil {
		monitoring.TrackSlot("grant", "not_found")
		return err
	}
	if ticket.Advertised {
		return nil
	}
	if ticket.Verification != models.VerificationApproved {
		monitoring.TrackSlot("grant", "not_approved")
		return status.ErrTicketNotApproved
	}
	monitoring.TrackSlot("grant", "pool_full")
	return status.ErrSlotPoolFull
}

// RevokeSlot clears the ticket's advertised flag. Revoking an unadvertised
// ticket is a no-op success; only a missing ticket is an error.
func (s *AllocatorService) RevokeSlot(ctx context.Context, ticketID string) error {
	found, err := s.Store.RevokeAdvertisement(ctx, ticketID)
	if err != nil {
		monitoring.TrackSlot("revoke", "error")
		return err
	}
	if !found {
		monitoring.TrackSlot("revoke", "not_found")
		return status.ErrTicketNotFound
	}

	monitoring.TrackSlot("revoke", "ok")
	s.cache.Invalidate(ctx)
	return nil
}
