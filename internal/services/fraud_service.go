package services

import (
	"context"
	"errors"

	"trip-booking/internal/status"
	"trip-booking/internal/store"
	"trip-booking/monitoring"
)

// CascadeReport summarizes a vendor fraud cascade.
type CascadeReport struct {
	VendorID        string `json:"vendor_id"`
	TicketsSeen     int    `json:"tickets_seen"`
	TicketsRejected int    `json:"tickets_rejected"`
	SlotsFreed      int    `json:"slots_freed"`
}

// FraudService cascades an admin fraud determination across a vendor's
// tickets. Each ticket is force-rejected with a single guarded write; the
// cascade as a whole is a sequence of those, not one unbounded transaction,
// and re-running it is harmless.
type FraudService struct {
	Store store.Store
	cache *TicketCache
}

func NewFraudService(s store.Store, cache *TicketCache) *FraudService {
	return &FraudService{Store: s, cache: cache}
}

// MarkVendorFraudulent rejects every ticket the vendor owns and revokes any
// advertisement slots they held. Already-rejected tickets are left as-is.
// Bookings already paid are untouched; completed transactions are not
// retroactively invalidated.
func (s *FraudService) MarkVendorFraudulent(ctx context.Context, vendorID string) (*CascadeReport, error) {
	if _, err := s.Store.FindVendor(ctx, vendorID); err != nil {
		return nil, err
	}

	if _, err := s.Store.SetVendorFraudulent(ctx, vendorID); err != nil {
		return nil, err
	}

	tickets, err := s.Store.ListVendorTickets(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	report := &CascadeReport{VendorID: vendorID, TicketsSeen: len(tickets)}
	for _, ticket := range tickets {
		changed, slotFreed, err := s.Store.ForceRejectTicket(ctx, ticket.ID)
		if errors.Is(err, status.ErrTicketNotFound) {
			continue
		}
		if err != nil {
			// Per-ticket writes already applied stay applied; the caller
			// retries the cascade and the remainder is picked up then.
			return nil, err
		}
		if changed {
			report.TicketsRejected++
		}
		if slotFreed {
			report.SlotsFreed++
		}
	}

	if report.SlotsFreed > 0 {
		s.cache.Invalidate(ctx)
	}
	monitoring.TrackFraudCascade(report.TicketsRejected)
	return report, nil
}
