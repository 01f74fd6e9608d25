package ticketing

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/smartdevs17/event-ticketing/internal/models"
)

// Queries never mutate state and never fail: a missing key reports absent
// through the second return value. Returned records are copies, safe to hold
// across later operations.

// GetEvent returns the event with the given id
func (e *Engine) GetEvent(id uint64) (*models.Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, ok := e.events[id]
	if !ok {
		return nil, false
	}
	copied := *event
	return &copied, true
}

// GetTicket returns the ticket with the given id
func (e *Engine) GetTicket(id uint64) (*models.Ticket, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ticket, ok := e.tickets[id]
	if !ok {
		return nil, false
	}
	copied := *ticket
	return &copied, true
}

// GetUserTickets returns the ordered list of ticket ids ever purchased by an
// identity. Refunded and used tickets stay in the list.
func (e *Engine) GetUserTickets(owner common.Address) (*models.UserTickets, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ids, ok := e.ownership[owner]
	if !ok {
		return nil, false
	}

	owned := make([]uint64, len(ids))
	copy(owned, ids)

	return &models.UserTickets{Owner: owner, OwnedTickets: owned}, true
}

// GetOrganizerRevenue returns the aggregate counters for an organizer
func (e *Engine) GetOrganizerRevenue(organizer common.Address) (*models.OrganizerStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats, ok := e.organizers[organizer]
	if !ok {
		return nil, false
	}
	copied := *stats
	return &copied, true
}

// GetContractConfig returns a copy of the configuration singleton
func (e *Engine) GetContractConfig() models.ContractConfig {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.config
}

// CurrentHeight returns the ledger height as seen by the engine
func (e *Engine) CurrentHeight() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.currentHeight()
}
