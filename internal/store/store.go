// Package store defines the persistence boundary of the booking consistency
// core. The interface carries exactly two kinds of primitives: guarded
// single-record conditional updates (check and apply in one indivisible step)
// and a transactional scope for the multi-field paid commit. Business legality
// rules live in the services; adapters only apply guarded writes.
package store

import (
	"context"

	"trip-booking/models"
)

// Store is implemented by the PocketBase adapter (production) and the
// in-memory adapter (tests, local development).
//
// Finders return the matching status.Err*NotFound sentinel when the record is
// absent and an error wrapping status.ErrStoreUnavailable on infrastructure
// failure. Conditional updates return applied=false, err=nil when the guard
// did not hold; the caller classifies why.
type Store interface {
	FindTicket(ctx context.Context, id string) (*models.Ticket, error)
	FindBooking(ctx context.Context, id string) (*models.Booking, error)
	FindVendor(ctx context.Context, id string) (*models.Vendor, error)
	FindTransactionByBooking(ctx context.Context, bookingID string) (*models.Transaction, error)
	ListVendorTickets(ctx context.Context, vendorID string) ([]*models.Ticket, error)
	ListAdvertisedTickets(ctx context.Context) ([]*models.Ticket, error)

	CreateTicket(ctx context.Context, t *models.Ticket) error
	CreateBooking(ctx context.Context, b *models.Booking) error
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// AdjustQuantity adds delta to the ticket's remaining quantity, guarded
	// on the result staying non-negative.
	AdjustQuantity(ctx context.Context, ticketID string, delta int) (applied bool, err error)

	// GrantAdvertisement sets the advertised flag, guarded on the ticket
	// being approved, not yet advertised, and the pool holding fewer than
	// capacity advertised approved tickets.
	GrantAdvertisement(ctx context.Context, ticketID string, capacity int) (applied bool, err error)

	// RevokeAdvertisement unconditionally clears the advertised flag.
	// found=false means no such ticket.
	RevokeAdvertisement(ctx context.Context, ticketID string) (found bool, err error)

	// TransitionVerification moves verification status from -> to, guarded on
	// the current status. Any move to rejected clears the advertised flag in
	// the same statement; a move out of rejected is additionally guarded on
	// the ticket not being fraud flagged.
	TransitionVerification(ctx context.Context, ticketID string, from, to models.VerificationStatus) (applied bool, err error)

	// ForceRejectTicket is the fraud-cascade write: reject, clear the
	// advertised flag and set the fraud flag, guarded on the ticket not
	// already being rejected. slotFreed reports whether the ticket held an
	// advertisement slot immediately before the write.
	ForceRejectTicket(ctx context.Context, ticketID string) (changed bool, slotFreed bool, err error)

	// TransitionBooking moves booking status from -> to, guarded on the
	// current status.
	TransitionBooking(ctx context.Context, bookingID string, from, to models.BookingStatus) (applied bool, err error)

	// SetBookingPaid moves the booking to paid and records the transaction
	// reference and paid time, guarded on the current status being accepted.
	SetBookingPaid(ctx context.Context, bookingID, transactionRef string) (applied bool, err error)

	SetVendorFraudulent(ctx context.Context, vendorID string) (found bool, err error)

	// Atomic runs fn inside a single transaction; every operation on the
	// passed Store commits together or not at all.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}
