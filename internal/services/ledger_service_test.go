package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-booking/internal/status"
	"trip-booking/internal/store/memory"
	"trip-booking/models"
)

func newLedgerFixture(remaining int) (*LedgerService, *memory.Store) {
	st := memory.New()
	st.SeedTicket(&models.Ticket{ID: "t1", Remaining: remaining, Verification: models.VerificationApproved})
	return NewLedgerService(st), st
}

func TestLedgerReserve_Success(t *testing.T) {
	ledger, st := newLedgerFixture(10)
	ctx := context.Background()

	err := ledger.Reserve(ctx, "t1", 4)
	require.NoError(t, err)

	ticket, err := st.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 6, ticket.Remaining)
}

func TestLedgerReserve_Insufficient(t *testing.T) {
	ledger, st := newLedgerFixture(3)
	ctx := context.Background()

	err := ledger.Reserve(ctx, "t1", 4)
	assert.ErrorIs(t, err, status.ErrInsufficientStock)

	// Nothing was decremented on failure.
	ticket, err := st.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, ticket.Remaining)
}

func TestLedgerReserve_ExactRemainder(t *testing.T) {
	ledger, st := newLedgerFixture(4)
	ctx := context.Background()

	err := ledger.Reserve(ctx, "t1", 4)
	require.NoError(t, err)

	ticket, err := st.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, ticket.Remaining)

	// Sold out now.
	err = ledger.Reserve(ctx, "t1", 1)
	assert.ErrorIs(t, err, status.ErrInsufficientStock)
}

func TestLedgerReserve_InvalidQuantity(t *testing.T) {
	ledger, _ := newLedgerFixture(10)
	ctx := context.Background()

	assert.Error(t, ledger.Reserve(ctx, "t1", 0))
	assert.Error(t, ledger.Reserve(ctx, "t1", -2))
}

func TestLedgerReserve_UnknownTicket(t *testing.T) {
	ledger, _ := newLedgerFixture(10)

	err := ledger.Reserve(context.Background(), "missing", 1)
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

// Two reservations racing for 5 units when each wants 3: exactly one may win.
func TestLedgerReserve_ConcurrentBoundary(t *testing.T) {
	ledger, st := newLedgerFixture(5)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.Reserve(ctx, "t1", 3)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, status.ErrInsufficientStock)
		}
	}
	assert.Equal(t, 1, winners)

	ticket, err := st.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, ticket.Remaining)
}

func TestLedgerReserve_NeverNegative(t *testing.T) {
	ledger, st := newLedgerFixture(10)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ledger.Reserve(ctx, "t1", 1)
		}()
	}
	wg.Wait()

	ticket, err := st.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, ticket.Remaining)
}

func TestLedgerRestock(t *testing.T) {
	ledger, st := newLedgerFixture(2)
	ctx := context.Background()

	err := ledger.Restock(ctx, "t1", 3)
	require.NoError(t, err)

	ticket, err := st.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 5, ticket.Remaining)
}

func TestLedgerRestock_UnknownTicket(t *testing.T) {
	ledger, _ := newLedgerFixture(2)

	err := ledger.Restock(context.Background(), "missing", 3)
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}
