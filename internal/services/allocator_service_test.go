package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trip-booking/internal/status"
	"trip-booking/internal/store/memory"
	"trip-booking/models"
)

func seedApprovedTickets(st *memory.Store, n int) []string {
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("t%d", i+1)
		st.SeedTicket(&models.Ticket{ID: id, Remaining: 10, Verification: models.VerificationApproved})
		ids[i] = id
	}
	return ids
}

func TestGrantSlot_FillsPoolThenRefuses(t *testing.T) {
	st := memory.New()
	alloc := NewAllocatorService(st, DefaultSlotCapacity, nil)
	ctx := context.Background()

	ids := seedApprovedTickets(st, 7)
	for _, id := range ids[:6] {
		require.NoError(t, alloc.GrantSlot(ctx, id))
	}

	err := alloc.GrantSlot(ctx, ids[6])
	assert.ErrorIs(t, err, status.ErrSlotPoolFull)

	advertised, err := st.ListAdvertisedTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, advertised, 6)
}

func TestGrantSlot_AlreadyAdvertisedIsNoop(t *testing.T) {
	st := memory.New()
	alloc := NewAllocatorService(st, DefaultSlotCapacity, nil)
	ctx := context.Background()

	seedApprovedTickets(st, 1)
	require.NoError(t, alloc.GrantSlot(ctx, "t1"))

	// Granting again neither errors nor consumes another slot.
	require.NoError(t, alloc.GrantSlot(ctx, "t1"))

	advertised, err := st.ListAdvertisedTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, advertised, 1)
}

func TestGrantSlot_RequiresApprovedTicket(t *testing.T) {
	st := memory.New()
	alloc := NewAllocatorService(st, DefaultSlotCapacity, nil)
	ctx := context.Background()

	st.SeedTicket(&models.Ticket{ID: "pending", Verification: models.VerificationPending})
	st.SeedTicket(&models.Ticket{ID: "rejected", Verification: models.VerificationRejected})

	assert.ErrorIs(t, alloc.GrantSlot(ctx, "pending"), status.ErrTicketNotApproved)
	assert.ErrorIs(t, alloc.GrantSlot(ctx, "rejected"), status.ErrTicketNotApproved)
}

func TestGrantSlot_UnknownTicket(t *testing.T) {
	st := memory.New()
	alloc := NewAllocatorService(st, DefaultSlotCapacity, nil)

	err := alloc.GrantSlot(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

// Ten tickets race for the last free slot; exactly one grant may succeed.
func TestGrantSlot_LastSlotRace(t *testing.T) {
	st := memory.New()
	alloc := NewAllocatorService(st, DefaultSlotCapacity, nil)
	ctx := context.Background()

	ids := seedApprovedTickets(st, 15)
	for _, id := range ids[:5] {
		require.NoError(t, alloc.GrantSlot(ctx, id))
	}

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i, id := range ids[5:] {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = alloc.GrantSlot(ctx, id)
		}(i, id)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, status.ErrSlotPoolFull)
		}
	}
	assert.Equal(t, 1, winners)

	advertised, err := st.ListAdvertisedTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, advertised, 6)
}

func TestRevokeSlot_FreesCapacity(t *testing.T) {
	st := memory.New()
	alloc := NewAllocatorService(st, 2, nil)
	ctx := context.Background()

	ids := seedApprovedTickets(st, 3)
	require.NoError(t, alloc.GrantSlot(ctx, ids[0]))
	require.NoError(t, alloc.GrantSlot(ctx, ids[1]))
	assert.ErrorIs(t, alloc.GrantSlot(ctx, ids[2]), status.ErrSlotPoolFull)

	require.NoError(t, alloc.RevokeSlot(ctx, ids[0]))

	// The freed slot is grantable again.
	require.NoError(t, alloc.GrantSlot(ctx, ids[2]))
}

func TestRevokeSlot_UnadvertisedIsNoop(t *testing.T) {
	st := memory.New()
	alloc := NewAllocatorService(st, DefaultSlotCapacity, nil)

	seedApprovedTickets(st, 1)
	assert.NoError(t, alloc.RevokeSlot(context.Background(), "t1"))
}

func TestRevokeSlot_UnknownTicket(t *testing.T) {
	st := memory.New()
	alloc := NewAllocatorService(st, DefaultSlotCapacity, nil)

	err := alloc.RevokeSlot(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestNewAllocatorService_DefaultsCapacity(t *testing.T) {
	alloc := NewAllocatorService(memory.New(), 0, nil)
	assert.Equal(t, DefaultSlotCapacity, alloc.Capacity)
}
