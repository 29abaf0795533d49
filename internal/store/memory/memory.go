// Package memory implements store.Store with a single in-process lock, the
// fallback discipline for a store without native conditional updates: every
// guarded write holds the lock across its check and its mutation. It backs
// the service tests and local development without a database.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"trip-booking/internal/status"
	"trip-booking/internal/store"
	"trip-booking/models"
)

type Store struct {
	mu sync.Mutex

	tickets      map[string]*models.Ticket
	bookings     map[string]*models.Booking
	transactions map[string]*models.Transaction
	vendors      map[string]*models.Vendor
	seq          int
}

func New() *Store {
	return &Store{
		tickets:      make(map[string]*models.Ticket),
		bookings:     make(map[string]*models.Booking),
		transactions: make(map[string]*models.Transaction),
		vendors:      make(map[string]*models.Vendor),
	}
}

// SeedVendor and SeedTicket install fixtures without going through the
// creation paths; ids may be chosen by the caller.
func (s *Store) SeedVendor(v *models.Vendor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = s.nextID("vendor")
	}
	s.vendors[v.ID] = v
}

func (s *Store) SeedTicket(t *models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = s.nextID("ticket")
	}
	if t.Verification == "" {
		t.Verification = models.VerificationPending
	}
	s.tickets[t.ID] = t
}

func (s *Store) FindTicket(ctx context.Context, id string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findTicket(id)
}

func (s *Store) FindBooking(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findBooking(id)
}

func (s *Store) FindVendor(ctx context.Context, id string) (*models.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[id]
	if !ok {
		return nil, status.ErrVendorNotFound
	}
	out := *v
	return &out, nil
}

func (s *Store) FindTransactionByBooking(ctx context.Context, bookingID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findTransactionByBooking(bookingID)
}

func (s *Store) ListVendorTickets(ctx context.Context, vendorID string) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Ticket
	for _, t := range s.tickets {
		if t.VendorID == vendorID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *Store) ListAdvertisedTickets(ctx context.Context) ([]*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Ticket
	for _, t := range s.tickets {
		if t.Advertised && t.Verification == models.VerificationApproved {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *Store) CreateTicket(ctx context.Context, t *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTicket(t)
}

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createBooking(b)
}

func (s *Store) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTransaction(tx)
}

func (s *Store) AdjustQuantity(ctx context.Context, ticketID string, delta int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adjustQuantity(ticketID, delta)
}

func (s *Store) GrantAdvertisement(ctx context.Context, ticketID string, capacity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grantAdvertisement(ticketID, capacity)
}

func (s *Store) RevokeAdvertisement(ctx context.Context, ticketID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revokeAdvertisement(ticketID)
}

func (s *Store) TransitionVerification(ctx context.Context, ticketID string, from, to models.VerificationStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionVerification(ticketID, from, to)
}

func (s *Store) ForceRejectTicket(ctx context.Context, ticketID string) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.forceRejectTicket(ticketID)
}

func (s *Store) TransitionBooking(ctx context.Context, bookingID string, from, to models.BookingStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transitionBooking(bookingID, from, to)
}

func (s *Store) SetBookingPaid(ctx context.Context, bookingID, transactionRef string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setBookingPaid(bookingID, transactionRef)
}

func (s *Store) SetVendorFraudulent(ctx context.Context, vendorID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vendors[vendorID]
	if !ok {
		return false, nil
	}
	v.Fraudulent = true
	return true, nil
}

// Atomic holds the lock for the whole of fn and rolls the state back to a
// snapshot if fn fails, so a failed paid commit leaves nothing behind.
func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.snapshot()
	if err := fn(&txView{s: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// txView exposes the already-locked store inside Atomic.
type txView struct {
	s *Store
}

func (v *txView) FindTicket(ctx context.Context, id string) (*models.Ticket, error) {
	return v.s.findTicket(id)
}

func (v *txView) FindBooking(ctx context.Context, id string) (*models.Booking, error) {
	return v.s.findBooking(id)
}

func (v *txView) FindVendor(ctx context.Context, id string) (*models.Vendor, error) {
	vendor, ok := v.s.vendors[id]
	if !ok {
		return nil, status.ErrVendorNotFound
	}
	out := *vendor
	return &out, nil
}

func (v *txView) FindTransactionByBooking(ctx context.Context, bookingID string) (*models.Transaction, error) {
	return v.s.findTransactionByBooking(bookingID)
}

func (v *txView) ListVendorTickets(ctx context.Context, vendorID string) ([]*models.Ticket, error) {
	var out []*models.Ticket
	for _, t := range v.s.tickets {
		if t.VendorID == vendorID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (v *txView) ListAdvertisedTickets(ctx context.Context) ([]*models.Ticket, error) {
	var out []*models.Ticket
	for _, t := range v.s.tickets {
		if t.Advertised && t.Verification == models.VerificationApproved {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (v *txView) CreateTicket(ctx context.Context, t *models.Ticket) error {
	return v.s.createTicket(t)
}

func (v *txView) CreateBooking(ctx context.Context, b *models.Booking) error {
	return v.s.createBooking(b)
}

func (v *txView) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return v.s.createTransaction(tx)
}

func (v *txView) AdjustQuantity(ctx context.Context, ticketID string, delta int) (bool, error) {
	return v.s.adjustQuantity(ticketID, delta)
}

func (v *txView) GrantAdvertisement(ctx context.Context, ticketID string, capacity int) (bool, error) {
	return v.s.grantAdvertisement(ticketID, capacity)
}

func (v *txView) RevokeAdvertisement(ctx context.Context, ticketID string) (bool, error) {
	return v.s.revokeAdvertisement(ticketID)
}

func (v *txView) TransitionVerification(ctx context.Context, ticketID string, from, to models.VerificationStatus) (bool, error) {
	return v.s.transitionVerification(ticketID, from, to)
}

func (v *txView) ForceRejectTicket(ctx context.Context, ticketID string) (bool, bool, error) {
	return v.s.forceRejectTicket(ticketID)
}

func (v *txView) TransitionBooking(ctx context.Context, bookingID string, from, to models.BookingStatus) (bool, error) {
	return v.s.transitionBooking(bookingID, from, to)
}

func (v *txView) SetBookingPaid(ctx context.Context, bookingID, transactionRef string) (bool, error) {
	return v.s.setBookingPaid(bookingID, transactionRef)
}

func (v *txView) SetVendorFraudulent(ctx context.Context, vendorID string) (bool, error) {
	vendor, ok := v.s.vendors[vendorID]
	if !ok {
		return false, nil
	}
	vendor.Fraudulent = true
	return true, nil
}

func (v *txView) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	// Already inside the lock; nested scopes just run.
	return fn(v)
}

// Locked internals. Callers must hold mu.

func (s *Store) findTicket(id string) (*models.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, status.ErrTicketNotFound
	}
	out := *t
	return &out, nil
}

func (s *Store) findBooking(id string) (*models.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, status.ErrBookingNotFound
	}
	out := *b
	return &out, nil
}

func (s *Store) findTransactionByBooking(bookingID string) (*models.Transaction, error) {
	for _, tx := range s.transactions {
		if tx.BookingID == bookingID {
			out := *tx
			return &out, nil
		}
	}
	return nil, status.ErrTransactionNotFound
}

func (s *Store) createTicket(t *models.Ticket) error {
	if t.ID == "" {
		t.ID = s.nextID("ticket")
	}
	t.Verification = models.VerificationPending
	t.Advertised = false
	t.FraudFlagged = false
	t.Created = time.Now()
	t.Updated = t.Created
	copied := *t
	s.tickets[t.ID] = &copied
	return nil
}

func (s *Store) createBooking(b *models.Booking) error {
	if b.ID == "" {
		b.ID = s.nextID("booking")
	}
	b.Status = models.BookingPending
	b.Created = time.Now()
	b.Updated = b.Created
	copied := *b
	s.bookings[b.ID] = &copied
	return nil
}

func (s *Store) createTransaction(tx *models.Transaction) error {
	for _, existing := range s.transactions {
		if existing.BookingID == tx.BookingID {
			return fmt.Errorf("%w: duplicate transaction for booking %s", status.ErrStoreUnavailable, tx.BookingID)
		}
	}
	if tx.ID == "" {
		tx.ID = s.nextID("txn")
	}
	tx.Created = time.Now()
	copied := *tx
	s.transactions[tx.ID] = &copied
	return nil
}

func (s *Store) adjustQuantity(ticketID string, delta int) (bool, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return false, nil
	}
	if t.Remaining+delta < 0 {
		return false, nil
	}
	t.Remaining += delta
	return true, nil
}

func (s *Store) grantAdvertisement(ticketID string, capacity int) (bool, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return false, nil
	}
	if t.Verification != models.VerificationApproved || t.Advertised {
		return false, nil
	}
	granted := 0
	for _, other := range s.tickets {
		if other.Advertised && other.Verification == models.VerificationApproved {
			granted++
		}
	}
	if granted >= capacity {
		return false, nil
	}
	t.Advertised = true
	t.AdvertisedAt = time.Now()
	return true, nil
}

func (s *Store) revokeAdvertisement(ticketID string) (bool, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return false, nil
	}
	t.Advertised = false
	return true, nil
}

func (s *Store) transitionVerification(ticketID string, from, to models.VerificationStatus) (bool, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return false, nil
	}
	if t.Verification != from {
		return false, nil
	}
	if from == models.VerificationRejected && t.FraudFlagged {
		return false, nil
	}
	t.Verification = to
	t.VerifiedAt = time.Now()
	if to == models.VerificationRejected {
		t.Advertised = false
	}
	return true, nil
}

func (s *Store) forceRejectTicket(ticketID string) (bool, bool, error) {
	t, ok := s.tickets[ticketID]
	if !ok {
		return false, false, status.ErrTicketNotFound
	}
	if t.Verification == models.VerificationRejected {
		return false, false, nil
	}
	slotFreed := t.Advertised
	t.Verification = models.VerificationRejected
	t.Advertised = false
	t.FraudFlagged = true
	t.VerifiedAt = time.Now()
	return true, slotFreed, nil
}

func (s *Store) transitionBooking(bookingID string, from, to models.BookingStatus) (bool, error) {
	b, ok := s.bookings[bookingID]
	if !ok {
		return false, nil
	}
	if b.Status != from {
		return false, nil
	}
	b.Status = to
	b.Updated = time.Now()
	return true, nil
}

func (s *Store) setBookingPaid(bookingID, transactionRef string) (bool, error) {
	b, ok := s.bookings[bookingID]
	if !ok {
		return false, nil
	}
	if b.Status != models.BookingAccepted {
		return false, nil
	}
	b.Status = models.BookingPaid
	b.TransactionRef = transactionRef
	b.PaidAt = time.Now()
	b.Updated = b.PaidAt
	return true, nil
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%04d", prefix, s.seq)
}

type state struct {
	tickets      map[string]*models.Ticket
	bookings     map[string]*models.Booking
	transactions map[string]*models.Transaction
	vendors      map[string]*models.Vendor
	seq          int
}

func (s *Store) snapshot() *state {
	snap := &state{
		tickets:      make(map[string]*models.Ticket, len(s.tickets)),
		bookings:     make(map[string]*models.Booking, len(s.bookings)),
		transactions: make(map[string]*models.Transaction, len(s.transactions)),
		vendors:      make(map[string]*models.Vendor, len(s.vendors)),
		seq:          s.seq,
	}
	for id, t := range s.tickets {
		copied := *t
		snap.tickets[id] = &copied
	}
	for id, b := range s.bookings {
		copied := *b
		snap.bookings[id] = &copied
	}
	for id, tx := range s.transactions {
		copied := *tx
		snap.transactions[id] = &copied
	}
	for id, v := range s.vendors {
		copied := *v
		snap.vendors[id] = &copied
	}
	return snap
}

func (s *Store) restore(snap *state) {
	s.tickets = snap.tickets
	s.bookings = snap.bookings
	s.transactions = snap.transactions
	s.vendors = snap.vendors
	s.seq = snap.seq
}
