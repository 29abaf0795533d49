// Package pb implements store.Store on top of PocketBase. Conditional updates
// are single guarded UPDATE statements so the check and the write happen in
// one step inside SQLite; Atomic maps to RunInTransaction.
package pb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/shopspring/decimal"

	"trip-booking/internal/status"
	"trip-booking/internal/store"
	"trip-booking/models"
)

const (
	collTickets      = "tickets"
	collBookings     = "bookings"
	collTransactions = "transactions"
	collVendors      = "vendors"
)

type Store struct {
	app core.App
}

func New(app core.App) *Store {
	return &Store{app: app}
}

func (s *Store) FindTicket(ctx context.Context, id string) (*models.Ticket, error) {
	record, err := s.app.FindRecordById(collTickets, id)
	if err != nil {
		return nil, notFoundOr(err, status.ErrTicketNotFound)
	}
	return ticketFromRecord(record), nil
}

func (s *Store) FindBooking(ctx context.Context, id string) (*models.Booking, error) {
	record, err := s.app.FindRecordById(collBookings, id)
	if err != nil {
		return nil, notFoundOr(err, status.ErrBookingNotFound)
	}
	return bookingFromRecord(record), nil
}

func (s *Store) FindVendor(ctx context.Context, id string) (*models.Vendor, error) {
	record, err := s.app.FindRecordById(collVendors, id)
	if err != nil {
		return nil, notFoundOr(err, status.ErrVendorNotFound)
	}
	return &models.Vendor{
		ID:         record.Id,
		Name:       record.GetString("name"),
		Phone:      record.GetString("phone"),
		Fraudulent: record.GetBool("fraudulent"),
		Created:    record.GetDateTime("created").Time(),
		Updated:    record.GetDateTime("updated").Time(),
	}, nil
}

func (s *Store) FindTransactionByBooking(ctx context.Context, bookingID string) (*models.Transaction, error) {
	record, err := s.app.FindFirstRecordByFilter(
		collTransactions,
		"booking = {:booking}",
		dbx.Params{"booking": bookingID},
	)
	if err != nil {
		return nil, notFoundOr(err, status.ErrTransactionNotFound)
	}
	return &models.Transaction{
		ID:          record.Id,
		BookingID:   record.GetString("booking"),
		Amount:      decimal.NewFromFloat(record.GetFloat("amount")),
		ExternalRef: record.GetString("external_ref"),
		Created:     record.GetDateTime("created").Time(),
	}, nil
}

func (s *Store) ListVendorTickets(ctx context.Context, vendorID string) ([]*models.Ticket, error) {
	records, err := s.app.FindRecordsByFilter(
		collTickets,
		"vendor = {:vendor}",
		"-created",
		0,
		0,
		dbx.Params{"vendor": vendorID},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list vendor tickets: %v", status.ErrStoreUnavailable, err)
	}
	tickets := make([]*models.Ticket, len(records))
	for i, record := range records {
		tickets[i] = ticketFromRecord(record)
	}
	return tickets, nil
}

func (s *Store) ListAdvertisedTickets(ctx context.Context) ([]*models.Ticket, error) {
	records, err := s.app.FindRecordsByFilter(
		collTickets,
		"advertised = true && verification = 'approved'",
		"-advertised_at",
		0,
		0,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list advertised tickets: %v", status.ErrStoreUnavailable, err)
	}
	tickets := make([]*models.Ticket, len(records))
	for i, record := range records {
		tickets[i] = ticketFromRecord(record)
	}
	return tickets, nil
}

func (s *Store) CreateTicket(ctx context.Context, t *models.Ticket) error {
	collection, err := s.app.FindCollectionByNameOrId(collTickets)
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}

	record := core.NewRecord(collection)
	record.Set("vendor", t.VendorID)
	record.Set("transport", string(t.Transport))
	record.Set("origin", t.Origin)
	record.Set("destination", t.Destination)
	record.Set("departure", t.Departure)
	price, _ := t.Price.Float64()
	record.Set("price", price)
	record.Set("remaining", t.Remaining)
	record.Set("verification", string(models.VerificationPending))
	record.Set("advertised", false)
	record.Set("fraud_flagged", false)

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("%w: save ticket: %v", status.ErrStoreUnavailable, err)
	}

	t.ID = record.Id
	t.Verification = models.VerificationPending
	t.Created = record.GetDateTime("created").Time()
	t.Updated = record.GetDateTime("updated").Time()
	return nil
}

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	collection, err := s.app.FindCollectionByNameOrId(collBookings)
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}

	record := core.NewRecord(collection)
	record.Set("ticket", b.TicketID)
	record.Set("customer", b.CustomerID)
	record.Set("quantity", b.Quantity)
	total, _ := b.Total.Float64()
	record.Set("total", total)
	record.Set("status", string(models.BookingPending))

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("%w: save booking: %v", status.ErrStoreUnavailable, err)
	}

	b.ID = record.Id
	b.Status = models.BookingPending
	b.Created = record.GetDateTime("created").Time()
	b.Updated = record.GetDateTime("updated").Time()
	return nil
}

func (s *Store) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	collection, err := s.app.FindCollectionByNameOrId(collTransactions)
	if err != nil {
		return fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}

	record := core.NewRecord(collection)
	record.Set("booking", tx.BookingID)
	amount, _ := tx.Amount.Float64()
	record.Set("amount", amount)
	record.Set("external_ref", tx.ExternalRef)

	// The unique index on booking makes a double insert fail here rather
	// than silently producing a second transaction row.
	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("%w: save transaction: %v", status.ErrStoreUnavailable, err)
	}

	tx.ID = record.Id
	tx.Created = record.GetDateTime("created").Time()
	return nil
}

func (s *Store) AdjustQuantity(ctx context.Context, ticketID string, delta int) (bool, error) {
	return s.exec(
		"UPDATE tickets SET remaining = remaining + {:delta} WHERE id = {:id} AND remaining + {:delta} >= 0",
		dbx.Params{"id": ticketID, "delta": delta},
	)
}

func (s *Store) GrantAdvertisement(ctx context.Context, ticketID string, capacity int) (bool, error) {
	return s.exec(
		`UPDATE tickets SET advertised = TRUE, advertised_at = {:now}
		WHERE id = {:id} AND verification = 'approved' AND advertised = FALSE
		AND (SELECT COUNT(*) FROM tickets WHERE advertised = TRUE AND verification = 'approved') < {:capacity}`,
		dbx.Params{"id": ticketID, "now": types.NowDateTime().String(), "capacity": capacity},
	)
}

func (s *Store) RevokeAdvertisement(ctx context.Context, ticketID string) (bool, error) {
	return s.exec(
		"UPDATE tickets SET advertised = FALSE WHERE id = {:id}",
		dbx.Params{"id": ticketID},
	)
}

func (s *Store) TransitionVerification(ctx context.Context, ticketID string, from, to models.VerificationStatus) (bool, error) {
	set := "verification = {:to}, verified_at = {:now}"
	if to == models.VerificationRejected {
		set += ", advertised = FALSE"
	}
	guard := "id = {:id} AND verification = {:from}"
	if from == models.VerificationRejected {
		guard += " AND fraud_flagged = FALSE"
	}
	return s.exec(
		"UPDATE tickets SET "+set+" WHERE "+guard,
		dbx.Params{
			"id":   ticketID,
			"from": string(from),
			"to":   string(to),
			"now":  types.NowDateTime().String(),
		},
	)
}

func (s *Store) ForceRejectTicket(ctx context.Context, ticketID string) (bool, bool, error) {
	ticket, err := s.FindTicket(ctx, ticketID)
	if err != nil {
		return false, false, err
	}
	if ticket.Verification == models.VerificationRejected {
		return false, false, nil
	}

	changed, err := s.exec(
		`UPDATE tickets SET verification = 'rejected', advertised = FALSE, fraud_flagged = TRUE, verified_at = {:now}
		WHERE id = {:id} AND verification != 'rejected'`,
		dbx.Params{"id": ticketID, "now": types.NowDateTime().String()},
	)
	if err != nil {
		return false, false, err
	}
	return changed, changed && ticket.Advertised, nil
}

func (s *Store) TransitionBooking(ctx context.Context, bookingID string, from, to models.BookingStatus) (bool, error) {
	return s.exec(
		"UPDATE bookings SET status = {:to} WHERE id = {:id} AND status = {:from}",
		dbx.Params{"id": bookingID, "from": string(from), "to": string(to)},
	)
}

func (s *Store) SetBookingPaid(ctx context.Context, bookingID, transactionRef string) (bool, error) {
	return s.exec(
		`UPDATE bookings SET status = 'paid', transaction_ref = {:ref}, paid_at = {:now}
		WHERE id = {:id} AND status = 'accepted'`,
		dbx.Params{"id": bookingID, "ref": transactionRef, "now": types.NowDateTime().String()},
	)
}

func (s *Store) SetVendorFraudulent(ctx context.Context, vendorID string) (bool, error) {
	return s.exec(
		"UPDATE vendors SET fraudulent = TRUE WHERE id = {:id}",
		dbx.Params{"id": vendorID},
	)
}

func (s *Store) Atomic(ctx context.Context, fn func(tx store.Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(New(txApp))
	})
}

// exec runs a guarded UPDATE and reports whether it touched a row.
func (s *Store) exec(query string, params dbx.Params) (bool, error) {
	result, err := s.app.DB().NewQuery(query).Bind(params).Execute()
	if err != nil {
		return false, fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
	}
	return rows > 0, nil
}

func notFoundOr(err error, notFound error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%w: %v", status.ErrStoreUnavailable, err)
}

func ticketFromRecord(record *core.Record) *models.Ticket {
	return &models.Ticket{
		ID:           record.Id,
		VendorID:     record.GetString("vendor"),
		Transport:    models.Transport(record.GetString("transport")),
		Origin:       record.GetString("origin"),
		Destination:  record.GetString("destination"),
		Departure:    record.GetDateTime("departure").Time(),
		Price:        decimal.NewFromFloat(record.GetFloat("price")),
		Remaining:    record.GetInt("remaining"),
		Verification: models.VerificationStatus(record.GetString("verification")),
		Advertised:   record.GetBool("advertised"),
		FraudFlagged: record.GetBool("fraud_flagged"),
		VerifiedAt:   record.GetDateTime("verified_at").Time(),
		AdvertisedAt: record.GetDateTime("advertised_at").Time(),
		Created:      record.GetDateTime("created").Time(),
		Updated:      record.GetDateTime("updated").Time(),
	}
}

func bookingFromRecord(record *core.Record) *models.Booking {
	return &models.Booking{
		ID:             record.Id,
		TicketID:       record.GetString("ticket"),
		CustomerID:     record.GetString("customer"),
		Quantity:       record.GetInt("quantity"),
		Total:          decimal.NewFromFloat(record.GetFloat("total")),
		Status:         models.BookingStatus(record.GetString("status")),
		TransactionRef: record.GetString("transaction_ref"),
		PaidAt:         record.GetDateTime("paid_at").Time(),
		Created:        record.GetDateTime("created").Time(),
		Updated:        record.GetDateTime("updated").Time(),
	}
}
