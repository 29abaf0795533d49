package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-booking/internal/status"
	"trip-booking/internal/store/memory"
	"trip-booking/models"
)

func newFraudFixture() (*FraudService, *memory.Store) {
	st := memory.New()
	st.SeedVendor(&models.Vendor{ID: "v1", Name: "Mekong Express"})
	return NewFraudService(st, nil), st
}

func TestMarkVendorFraudulent_Cascade(t *testing.T) {
	svc, st := newFraudFixture()
	ctx := context.Background()

	st.SeedTicket(&models.Ticket{ID: "t1", VendorID: "v1", Verification: models.VerificationApproved, Advertised: true})
	st.SeedTicket(&models.Ticket{ID: "t2", VendorID: "v1", Verification: models.VerificationApproved})
	st.SeedTicket(&models.Ticket{ID: "t3", VendorID: "v1", Verification: models.VerificationPending})
	st.SeedTicket(&models.Ticket{ID: "t4", VendorID: "v1", Verification: models.VerificationRejected})
	st.SeedTicket(&models.Ticket{ID: "other", VendorID: "v2", Verification: models.VerificationApproved})

	report, err := svc.MarkVendorFraudulent(ctx, "v1")
	require.NoError(t, err)

	assert.Equal(t, "v1", report.VendorID)
	assert.Equal(t, 4, report.TicketsSeen)
	assert.Equal(t, 3, report.TicketsRejected, "already-rejected ticket is skipped")
	assert.Equal(t, 1, report.SlotsFreed)

	for _, id := range []string{"t1", "t2", "t3"} {
		ticket, err := st.FindTicket(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.VerificationRejected, ticket.Verification)
		assert.True(t, ticket.FraudFlagged)
		assert.False(t, ticket.Advertised)
	}

	// Other vendors are untouched.
	other, err := st.FindTicket(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, other.Verification)

	vendor, err := st.FindVendor(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, vendor.Fraudulent)
}

func TestMarkVendorFraudulent_Rerun(t *testing.T) {
	svc, st := newFraudFixture()
	ctx := context.Background()

	st.SeedTicket(&models.Ticket{ID: "t1", VendorID: "v1", Verification: models.VerificationApproved})

	first, err := svc.MarkVendorFraudulent(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, first.TicketsRejected)

	second, err := svc.MarkVendorFraudulent(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.TicketsSeen)
	assert.Equal(t, 0, second.TicketsRejected)
	assert.Equal(t, 0, second.SlotsFreed)
}

func TestMarkVendorFraudulent_FreesSlotsForOthers(t *testing.T) {
	svc, st := newFraudFixture()
	alloc := NewAllocatorService(st, 1, nil)
	ctx := context.Background()

	st.SeedTicket(&models.Ticket{ID: "bad", VendorID: "v1", Verification: models.VerificationApproved})
	st.SeedTicket(&models.Ticket{ID: "good", VendorID: "v2", Verification: models.VerificationApproved})

	require.NoError(t, alloc.GrantSlot(ctx, "bad"))
	assert.ErrorIs(t, alloc.GrantSlot(ctx, "good"), status.ErrSlotPoolFull)

	report, err := svc.MarkVendorFraudulent(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.SlotsFreed)

	// The cascade freed the slot.
	require.NoError(t, alloc.GrantSlot(ctx, "good"))
}

func TestMarkVendorFraudulent_BlocksReinstate(t *testing.T) {
	svc, st := newFraudFixture()
	verification := NewVerificationService(st, nil)
	ctx := context.Background()

	st.SeedTicket(&models.Ticket{ID: "t1", VendorID: "v1", Verification: models.VerificationApproved})

	_, err := svc.MarkVendorFraudulent(ctx, "v1")
	require.NoError(t, err)

	err = verification.Reinstate(ctx, "t1")
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
}

func TestMarkVendorFraudulent_UnknownVendor(t *testing.T) {
	svc, _ := newFraudFixture()

	_, err := svc.MarkVendorFraudulent(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrVendorNotFound)
}

func TestMarkVendorFraudulent_NoTickets(t *testing.T) {
	svc, _ := newFraudFixture()

	report, err := svc.MarkVendorFraudulent(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.TicketsSeen)
	assert.Equal(t, 0, report.TicketsRejected)
}
