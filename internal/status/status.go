package status

import "errors"

var (
	ErrTicketNotFound      = errors.New("ticket: not found")
	ErrBookingNotFound     = errors.New("booking: not found")
	ErrVendorNotFound      = errors.New("vendor: not found")
	ErrTransactionNotFound = errors.New("transaction: not found")

	ErrInvalidTransition = errors.New("state: invalid transition")
	ErrInvalidDecision   = errors.New("state: invalid decision")

	ErrInsufficientStock = errors.New("ledger: insufficient stock")
	ErrSlotPoolFull      = errors.New("allocator: slot pool full")
	ErrTicketNotApproved = errors.New("ticket: not approved")

	ErrStoreUnavailable = errors.New("store: unavailable")
)
