package ticketing_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartdevs17/event-ticketing/internal/chain"
	"github.com/smartdevs17/event-ticketing/internal/payments"
	"github.com/smartdevs17/event-ticketing/internal/ticketing"
)

const (
	minTicketPrice = uint64(1_000_000)
	futureHeight   = uint64(1_000)
	startHeight    = uint64(100)
	initialBalance = uint64(100_000_000)
)

var (
	contractOwner = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	organizer     = common.HexToAddress("0x0000000000000000000000000000000000000001")
	buyer         = common.HexToAddress("0x0000000000000000000000000000000000000002")
	otherBuyer    = common.HexToAddress("0x0000000000000000000000000000000000000003")
)

type testEnv struct {
	engine  *ticketing.Engine
	heights *chain.ManualSource
	bank    *payments.MemoryBank
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithConfig(t, &ticketing.EngineConfig{
		ContractOwner:      contractOwner,
		MinTicketPrice:     minTicketPrice,
		PlatformFeePercent: 5,
	})
}

func newTestEnvWithConfig(t *testing.T, cfg *ticketing.EngineConfig) *testEnv {
	t.Helper()

	heights := chain.NewManualSource(startHeight)
	bank := payments.NewMemoryBank(&payments.Config{
		Provider:       payments.ProviderMemory,
		InitialBalance: initialBalance,
		AutoFund:       true,
	})

	return &testEnv{
		engine:  ticketing.NewEngine(cfg, heights, bank),
		heights: heights,
		bank:    bank,
	}
}

func defaultEventParams() *ticketing.CreateEventParams {
	return &ticketing.CreateEventParams{
		Name:         "Tech Conference 2026",
		Description:  "Annual technology conference with industry leaders",
		Venue:        "Convention Center",
		EventHeight:  futureHeight,
		TotalTickets: 100,
		TicketPrice:  minTicketPrice,
		RefundWindow: 1_000,
		Category:     "Technology",
	}
}

func TestCreateEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		env := newTestEnv(t)

		id, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), id)

		event, found := env.engine.GetEvent(id)
		require.True(t, found)
		assert.Equal(t, "Tech Conference 2026", event.Name)
		assert.Equal(t, organizer, event.Organizer)
		assert.Equal(t, uint64(100), event.TotalTickets)
		assert.Equal(t, uint64(0), event.TicketsSold)
		assert.Equal(t, uint64(0), event.Revenue)
		assert.True(t, event.IsActive)
	})

	t.Run("SequentialIDs", func(t *testing.T) {
		env := newTestEnv(t)

		first, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)
		second, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)

		assert.Equal(t, uint64(1), first)
		assert.Equal(t, uint64(2), second)
	})

	t.Run("PriceBelowMinimum", func(t *testing.T) {
		env := newTestEnv(t)

		params := defaultEventParams()
		params.TicketPrice = minTicketPrice - 1

		_, err := env.engine.CreateEvent(ctx, params, organizer)
		assert.ErrorIs(t, err, ticketing.ErrInvalidPrice)
	})

	t.Run("RefundWindowAboveMaximum", func(t *testing.T) {
		env := newTestEnv(t)

		params := defaultEventParams()
		params.RefundWindow = ticketing.MaxRefundWindow + 1

		_, err := env.engine.CreateEvent(ctx, params, organizer)
		assert.ErrorIs(t, err, ticketing.ErrInvalidPrice)
	})

	t.Run("EventHeightInPast", func(t *testing.T) {
		env := newTestEnv(t)

		params := defaultEventParams()
		params.EventHeight = startHeight

		_, err := env.engine.CreateEvent(ctx, params, organizer)
		assert.ErrorIs(t, err, ticketing.ErrEventExpired)
	})

	t.Run("ZeroCapacity", func(t *testing.T) {
		env := newTestEnv(t)

		params := defaultEventParams()
		params.TotalTickets = 0

		_, err := env.engine.CreateEvent(ctx, params, organizer)
		assert.ErrorIs(t, err, ticketing.ErrInvalidPrice)
	})

	t.Run("OrganizerStats", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)
		_, err = env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)

		stats, found := env.engine.GetOrganizerRevenue(organizer)
		require.True(t, found)
		assert.Equal(t, uint64(2), stats.EventsOrganized)
		assert.Equal(t, uint64(0), stats.TotalRevenue)
	})
}

func TestPurchaseTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		env := newTestEnv(t)

		eventID, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)

		ticketID, err := env.engine.PurchaseTicket(ctx, eventID, buyer)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), ticketID)

		ticket, found := env.engine.GetTicket(ticketID)
		require.True(t, found)
		assert.Equal(t, eventID, ticket.EventID)
		assert.Equal(t, buyer, ticket.Owner)
		assert.Equal(t, minTicketPrice, ticket.PurchasePrice)
		assert.Equal(t, startHeight, ticket.PurchaseHeight)
		assert.False(t, ticket.IsUsed)
		assert.False(t, ticket.IsRefunded)

		event, found := env.engine.GetEvent(eventID)
		require.True(t, found)
		assert.Equal(t, uint64(1), event.TicketsSold)
		assert.Equal(t, minTicketPrice, event.Revenue)
	})

	t.Run("ChargesTheBuyer", func(t *testing.T) {
		env := newTestEnv(t)

		eventID, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)

		_, err = env.engine.PurchaseTicket(ctx, eventID, buyer)
		require.NoError(t, err)

		buyerBalance, err := env.bank.Balance(ctx, buyer)
		require.NoError(t, err)
		organizerBalance, err := env.bank.Balance(ctx, organizer)
		require.NoError(t, err)

		assert.Equal(t, initialBalance-minTicketPrice, buyerBalance)
		assert.Equal(t, initialBalance+minTicketPrice, organizerBalance)
	})

	t.Run("EventNotFound", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.engine.PurchaseTicket(ctx, 999, buyer)
		assert.ErrorIs(t, err, ticketing.ErrEventNotFound)
	})

	t.Run("SoldOut", func(t *testing.T) {
		env := newTestEnv(t)

		params := defaultEventParams()
		params.TotalTickets = 1

		eventID, err := env.engine.CreateEvent(ctx, params, organizer)
		require.NoError(t, err)

		_, err = env.engine.PurchaseTicket(ctx, eventID, buyer)
		require.NoError(t, err)

		_, err = env.engine.PurchaseTicket(ctx, eventID, otherBuyer)
		assert.ErrorIs(t, err, ticketing.ErrSoldOut)
	})

	t.Run("RevenueAccumulates", func(t *testing.T) {
		env := newTestEnv(t)

		eventID, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			_, err := env.engine.PurchaseTicket(ctx, eventID, buyer)
			require.NoError(t, err)
		}

		event, found := env.engine.GetEvent(eventID)
		require.True(t, found)
		assert.Equal(t, uint64(5), event.TicketsSold)
		assert.Equal(t, 5*minTicketPrice, event.Revenue)
	})

	t.Run("PaymentFailed", func(t *testing.T) {
		heights := chain.NewManualSource(startHeight)
		emptyBank := payments.NewMemoryBank(&payments.Config{Provider: payments.ProviderMemory})
		engine := ticketing.NewEngine(&ticketing.EngineConfig{
			ContractOwner:  contractOwner,
			MinTicketPrice: minTicketPrice,
		}, heights, emptyBank)

		eventID, err := engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)

		_, err = engine.PurchaseTicket(ctx, eventID, buyer)
		assert.ErrorIs(t, err, ticketing.ErrPaymentFailed)

		// No partial effect
		event, found := engine.GetEvent(eventID)
		require.True(t, found)
		assert.Equal(t, uint64(0), event.TicketsSold)
		assert.Equal(t, uint64(0), event.Revenue)
		_, found = engine.GetTicket(1)
		assert.False(t, found)
		_, found = engine.GetUserTickets(buyer)
		assert.False(t, found)
	})

	t.Run("PerOwnerCap", func(t *testing.T) {
		env := newTestEnvWithConfig(t, &ticketing.EngineConfig{
			ContractOwner:      contractOwner,
			MinTicketPrice:     minTicketPrice,
			MaxTicketsPerOwner: 1,
		})

		eventID, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)

		_, err = env.engine.PurchaseTicket(ctx, eventID, buyer)
		require.NoError(t, err)

		_, err = env.engine.PurchaseTicket(ctx, eventID, buyer)
		assert.ErrorIs(t, err, ticketing.ErrSoldOut)
	})
}

func TestOwnershipIndex(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	eventID, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
	require.NoError(t, err)

	// Interleave purchases: buyer gets tickets 1 and 3
	_, err = env.engine.PurchaseTicket(ctx, eventID, buyer)
	require.NoError(t, err)
	_, err = env.engine.PurchaseTicket(ctx, eventID, otherBuyer)
	require.NoError(t, err)
	_, err = env.engine.PurchaseTicket(ctx, eventID, buyer)
	require.NoError(t, err)

	tickets, found := env.engine.GetUserTickets(buyer)
	require.True(t, found)
	assert.Equal(t, []uint64{1, 3}, tickets.OwnedTickets)

	// Refunding does not remove the ticket from the index
	require.NoError(t, env.engine.RefundTicket(ctx, 1, buyer))
	tickets, found = env.engine.GetUserTickets(buyer)
	require.True(t, found)
	assert.Equal(t, []uint64{1, 3}, tickets.OwnedTickets)
}

func TestValidateTicket(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, uint64) {
		env := newTestEnv(t)
		eventID, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)
		ticketID, err := env.engine.PurchaseTicket(ctx, eventID, buyer)
		require.NoError(t, err)
		return env, ticketID
	}

	t.Run("TicketNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.engine.ValidateTicket(ctx, 999, organizer)
		assert.ErrorIs(t, err, ticketing.ErrTicketNotFound)
	})

	t.Run("NotAuthorized", func(t *testing.T) {
		env, ticketID := setup(t)
		err := env.engine.ValidateTicket(ctx, ticketID, buyer)
		assert.ErrorIs(t, err, ticketing.ErrNotAuthorized)
	})

	t.Run("Success", func(t *testing.T) {
		env, ticketID := setup(t)

		require.NoError(t, env.engine.ValidateTicket(ctx, ticketID, organizer))

		ticket, found := env.engine.GetTicket(ticketID)
		require.True(t, found)
		assert.True(t, ticket.IsUsed)
		assert.False(t, ticket.IsRefunded)
	})

	t.Run("SecondValidationFails", func(t *testing.T) {
		env, ticketID := setup(t)

		require.NoError(t, env.engine.ValidateTicket(ctx, ticketID, organizer))
		err := env.engine.ValidateTicket(ctx, ticketID, organizer)
		assert.ErrorIs(t, err, ticketing.ErrTicketClosed)
	})

	t.Run("RefundAfterValidateFails", func(t *testing.T) {
		env, ticketID := setup(t)

		require.NoError(t, env.engine.ValidateTicket(ctx, ticketID, organizer))
		err := env.engine.RefundTicket(ctx, ticketID, buyer)
		assert.ErrorIs(t, err, ticketing.ErrTicketClosed)
	})
}

func TestRefundTicket(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*testEnv, uint64, uint64) {
		env := newTestEnv(t)
		eventID, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
		require.NoError(t, err)
		ticketID, err := env.engine.PurchaseTicket(ctx, eventID, buyer)
		require.NoError(t, err)
		return env, eventID, ticketID
	}

	t.Run("TicketNotFound", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.engine.RefundTicket(ctx, 999, buyer)
		assert.ErrorIs(t, err, ticketing.ErrTicketNotFound)
	})

	t.Run("NotAuthorized", func(t *testing.T) {
		env, _, ticketID := setup(t)
		err := env.engine.RefundTicket(ctx, ticketID, otherBuyer)
		assert.ErrorIs(t, err, ticketing.ErrNotAuthorized)
	})

	t.Run("Success", func(t *testing.T) {
		env, eventID, ticketID := setup(t)

		require.NoError(t, env.engine.RefundTicket(ctx, ticketID, buyer))

		ticket, found := env.engine.GetTicket(ticketID)
		require.True(t, found)
		assert.True(t, ticket.IsRefunded)
		assert.False(t, ticket.IsUsed)

		// Revenue is reversed; capacity is not returned to the pool
		event, found := env.engine.GetEvent(eventID)
		require.True(t, found)
		assert.Equal(t, uint64(0), event.Revenue)
		assert.Equal(t, uint64(1), event.TicketsSold)

		// The owner got the money back
		balance, err := env.bank.Balance(ctx, buyer)
		require.NoError(t, err)
		assert.Equal(t, initialBalance, balance)
	})

	t.Run("WindowClosed", func(t *testing.T) {
		env, _, ticketID := setup(t)

		env.heights.Advance(1_001)

		err := env.engine.RefundTicket(ctx, ticketID, buyer)
		assert.ErrorIs(t, err, ticketing.ErrRefundWindowClosed)
	})

	t.Run("WindowBoundaryInclusive", func(t *testing.T) {
		env, _, ticketID := setup(t)

		// current height == purchase height + refund window is still refundable
		env.heights.Advance(1_000)

		require.NoError(t, env.engine.RefundTicket(ctx, ticketID, buyer))
	})

	t.Run("DoubleRefundFails", func(t *testing.T) {
		env, _, ticketID := setup(t)

		require.NoError(t, env.engine.RefundTicket(ctx, ticketID, buyer))
		err := env.engine.RefundTicket(ctx, ticketID, buyer)
		assert.ErrorIs(t, err, ticketing.ErrTicketClosed)
	})

	t.Run("ValidateAfterRefundFails", func(t *testing.T) {
		env, _, ticketID := setup(t)

		require.NoError(t, env.engine.RefundTicket(ctx, ticketID, buyer))
		err := env.engine.ValidateTicket(ctx, ticketID, organizer)
		assert.ErrorIs(t, err, ticketing.ErrTicketClosed)
	})
}

func TestAdministration(t *testing.T) {
	ctx := context.Background()

	t.Run("DefaultFee", func(t *testing.T) {
		env := newTestEnv(t)
		assert.Equal(t, uint64(50_000), env.engine.CalculatePlatformFee(1_000_000))
	})

	t.Run("UpdateFee", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.engine.UpdatePlatformFee(ctx, 10, contractOwner))
		assert.Equal(t, uint64(100_000), env.engine.CalculatePlatformFee(1_000_000))
	})

	t.Run("FeeFloorDivision", func(t *testing.T) {
		env := newTestEnv(t)
		assert.Equal(t, uint64(0), env.engine.CalculatePlatformFee(19))
	})

	t.Run("UpdateFeeNotOwner", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.engine.UpdatePlatformFee(ctx, 10, organizer)
		assert.ErrorIs(t, err, ticketing.ErrNotAuthorized)
	})

	t.Run("FeeAbove100", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.engine.UpdatePlatformFee(ctx, 101, contractOwner)
		assert.ErrorIs(t, err, ticketing.ErrInvalidPrice)
	})

	t.Run("UpdateMinTicketPrice", func(t *testing.T) {
		env := newTestEnv(t)

		require.NoError(t, env.engine.UpdateMinTicketPrice(ctx, 2_000_000, contractOwner))

		params := defaultEventParams()
		params.TicketPrice = 1_500_000
		_, err := env.engine.CreateEvent(ctx, params, organizer)
		assert.ErrorIs(t, err, ticketing.ErrInvalidPrice)

		params.TicketPrice = 2_000_000
		_, err = env.engine.CreateEvent(ctx, params, organizer)
		assert.NoError(t, err)
	})

	t.Run("UpdateMinTicketPriceNotOwner", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.engine.UpdateMinTicketPrice(ctx, 1, buyer)
		assert.ErrorIs(t, err, ticketing.ErrNotAuthorized)
	})
}

func TestQueriesOnAbsentKeys(t *testing.T) {
	env := newTestEnv(t)

	_, found := env.engine.GetEvent(999)
	assert.False(t, found)

	_, found = env.engine.GetTicket(999)
	assert.False(t, found)

	_, found = env.engine.GetUserTickets(buyer)
	assert.False(t, found)

	_, found = env.engine.GetOrganizerRevenue(organizer)
	assert.False(t, found)
}

func TestOrganizerRevenueConsistency(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	firstEvent, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
	require.NoError(t, err)

	params := defaultEventParams()
	params.TicketPrice = 2 * minTicketPrice
	secondEvent, err := env.engine.CreateEvent(ctx, params, organizer)
	require.NoError(t, err)

	_, err = env.engine.PurchaseTicket(ctx, firstEvent, buyer)
	require.NoError(t, err)
	_, err = env.engine.PurchaseTicket(ctx, secondEvent, buyer)
	require.NoError(t, err)
	refundable, err := env.engine.PurchaseTicket(ctx, secondEvent, otherBuyer)
	require.NoError(t, err)

	require.NoError(t, env.engine.RefundTicket(ctx, refundable, otherBuyer))

	// The aggregate mirrors the sum of per-event revenues
	first, found := env.engine.GetEvent(firstEvent)
	require.True(t, found)
	second, found := env.engine.GetEvent(secondEvent)
	require.True(t, found)

	stats, found := env.engine.GetOrganizerRevenue(organizer)
	require.True(t, found)
	assert.Equal(t, first.Revenue+second.Revenue, stats.TotalRevenue)
	assert.Equal(t, uint64(2), stats.EventsOrganized)
}

func TestTicketIDsMonotonicAcrossEvents(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	firstEvent, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
	require.NoError(t, err)
	secondEvent, err := env.engine.CreateEvent(ctx, defaultEventParams(), organizer)
	require.NoError(t, err)

	first, err := env.engine.PurchaseTicket(ctx, firstEvent, buyer)
	require.NoError(t, err)
	second, err := env.engine.PurchaseTicket(ctx, secondEvent, buyer)
	require.NoError(t, err)
	third, err := env.engine.PurchaseTicket(ctx, firstEvent, otherBuyer)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
	assert.Equal(t, uint64(3), third)
}
