package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-booking/internal/status"
	"trip-booking/internal/store"
	"trip-booking/models"
)

func TestAdjustQuantity_Guard(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SeedTicket(&models.Ticket{ID: "t1", Remaining: 5, Verification: models.VerificationApproved})

	applied, err := s.AdjustQuantity(ctx, "t1", -3)
	require.NoError(t, err)
	assert.True(t, applied)

	// 2 left; a further -3 must not apply and must not mutate.
	applied, err = s.AdjustQuantity(ctx, "t1", -3)
	require.NoError(t, err)
	assert.False(t, applied)

	ticket, err := s.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, ticket.Remaining)

	// Down to exactly zero is allowed.
	applied, err = s.AdjustQuantity(ctx, "t1", -2)
	require.NoError(t, err)
	assert.True(t, applied)

	ticket, err = s.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 0, ticket.Remaining)
}

func TestAdjustQuantity_MissingTicket(t *testing.T) {
	s := New()

	applied, err := s.AdjustQuantity(context.Background(), "nope", -1)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestGrantAdvertisement_CapacityGuard(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, id := range []string{"t1", "t2", "t3"} {
		s.SeedTicket(&models.Ticket{ID: id, Verification: models.VerificationApproved})
	}

	applied, err := s.GrantAdvertisement(ctx, "t1", 2)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = s.GrantAdvertisement(ctx, "t2", 2)
	require.NoError(t, err)
	assert.True(t, applied)

	// Pool of 2 is full.
	applied, err = s.GrantAdvertisement(ctx, "t3", 2)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestGrantAdvertisement_RequiresApproval(t *testing.T) {
	s := New()
	s.SeedTicket(&models.Ticket{ID: "t1", Verification: models.VerificationPending})

	applied, err := s.GrantAdvertisement(context.Background(), "t1", 6)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestGrantAdvertisement_AlreadyAdvertised(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SeedTicket(&models.Ticket{ID: "t1", Verification: models.VerificationApproved, Advertised: true})

	applied, err := s.GrantAdvertisement(ctx, "t1", 6)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestTransitionVerification_Guards(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SeedTicket(&models.Ticket{ID: "t1", Verification: models.VerificationPending})

	applied, err := s.TransitionVerification(ctx, "t1", models.VerificationPending, models.VerificationApproved)
	require.NoError(t, err)
	assert.True(t, applied)

	// Stale from-state no longer matches.
	applied, err = s.TransitionVerification(ctx, "t1", models.VerificationPending, models.VerificationRejected)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestTransitionVerification_RejectClearsAdvertised(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SeedTicket(&models.Ticket{ID: "t1", Verification: models.VerificationApproved, Advertised: true})

	applied, err := s.TransitionVerification(ctx, "t1", models.VerificationApproved, models.VerificationRejected)
	require.NoError(t, err)
	assert.True(t, applied)

	ticket, err := s.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ticket.Advertised)
}

func TestTransitionVerification_FraudFlagBlocksReinstate(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SeedTicket(&models.Ticket{ID: "t1", Verification: models.VerificationRejected, FraudFlagged: true})

	applied, err := s.TransitionVerification(ctx, "t1", models.VerificationRejected, models.VerificationApproved)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestForceRejectTicket(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SeedTicket(&models.Ticket{ID: "t1", Verification: models.VerificationApproved, Advertised: true})

	changed, slotFreed, err := s.ForceRejectTicket(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, slotFreed)

	ticket, err := s.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationRejected, ticket.Verification)
	assert.False(t, ticket.Advertised)
	assert.True(t, ticket.FraudFlagged)

	// Second pass is a no-op.
	changed, slotFreed, err = s.ForceRejectTicket(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, slotFreed)
}

func TestForceRejectTicket_Missing(t *testing.T) {
	s := New()

	_, _, err := s.ForceRejectTicket(context.Background(), "nope")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestCreateTransaction_OnePerBooking(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.CreateTransaction(ctx, &models.Transaction{BookingID: "b1", ExternalRef: "ref-1"})
	require.NoError(t, err)

	err = s.CreateTransaction(ctx, &models.Transaction{BookingID: "b1", ExternalRef: "ref-2"})
	assert.Error(t, err)

	tx, err := s.FindTransactionByBooking(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", tx.ExternalRef)
}

func TestAtomic_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SeedTicket(&models.Ticket{ID: "t1", Remaining: 10, Verification: models.VerificationApproved})

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx store.Store) error {
		applied, err := tx.AdjustQuantity(ctx, "t1", -4)
		require.NoError(t, err)
		require.True(t, applied)

		if err := tx.CreateTransaction(ctx, &models.Transaction{BookingID: "b1", ExternalRef: "ref"}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Both writes rolled back.
	ticket, err := s.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 10, ticket.Remaining)

	_, err = s.FindTransactionByBooking(ctx, "b1")
	assert.ErrorIs(t, err, status.ErrTransactionNotFound)
}

func TestAtomic_CommitsOnSuccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.SeedTicket(&models.Ticket{ID: "t1", Remaining: 10, Verification: models.VerificationApproved})

	err := s.Atomic(ctx, func(tx store.Store) error {
		_, err := tx.AdjustQuantity(ctx, "t1", -4)
		return err
	})
	require.NoError(t, err)

	ticket, err := s.FindTicket(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 6, ticket.Remaining)
}

func TestFindSentinels(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.FindTicket(ctx, "nope")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)

	_, err = s.FindBooking(ctx, "nope")
	assert.ErrorIs(t, err, status.ErrBookingNotFound)

	_, err = s.FindVendor(ctx, "nope")
	assert.ErrorIs(t, err, status.ErrVendorNotFound)
}
