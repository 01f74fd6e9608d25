package models

import (
	"github.com/ethereum/go-ethereum/common"
)

// Event represents a ticketed event registered on the ledger
type Event struct {
	ID           uint64         `json:"id" db:"id"`
	Name         string         `json:"name" db:"name"`
	Description  string         `json:"description" db:"description"`
	Venue        string         `json:"venue" db:"venue"`
	EventHeight  uint64         `json:"event_height" db:"event_height"`
	TotalTickets uint64         `json:"total_tickets" db:"total_tickets"`
	TicketsSold  uint64         `json:"tickets_sold" db:"tickets_sold"`
	TicketPrice  uint64         `json:"ticket_price" db:"ticket_price"`
	RefundWindow uint64         `json:"refund_window" db:"refund_window"`
	Category     string         `json:"category" db:"category"`
	Organizer    common.Address `json:"organizer" db:"organizer"`
	Revenue      uint64         `json:"revenue" db:"revenue"`
	IsActive     bool           `json:"is_active" db:"is_active"`
}

// Ticket represents a single ticket sold against an event
type Ticket struct {
	ID             uint64         `json:"id" db:"id"`
	EventID        uint64         `json:"event_id" db:"event_id"`
	Owner          common.Address `json:"owner" db:"owner"`
	PurchasePrice  uint64         `json:"purchase_price" db:"purchase_price"`
	PurchaseHeight uint64         `json:"purchase_height" db:"purchase_height"`
	IsUsed         bool           `json:"is_used" db:"is_used"`
	IsRefunded     bool           `json:"is_refunded" db:"is_refunded"`
}

// OrganizerStats aggregates counters per organizer identity
type OrganizerStats struct {
	Organizer       common.Address `json:"organizer" db:"organizer"`
	EventsOrganized uint64         `json:"events_organized" db:"events_organized"`
	TotalRevenue    uint64         `json:"total_revenue" db:"total_revenue"`
}

// ContractConfig is the global configuration singleton
type ContractConfig struct {
	ContractOwner      common.Address `json:"contract_owner" db:"contract_owner"`
	MinTicketPrice     uint64         `json:"min_ticket_price" db:"min_ticket_price"`
	PlatformFeePercent uint64         `json:"platform_fee_percent" db:"platform_fee_percent"`
	NextEventID        uint64         `json:"next_event_id" db:"next_event_id"`
	NextTicketID       uint64         `json:"next_ticket_id" db:"next_ticket_id"`
}

// UserTickets is the ownership index entry for one identity.
// The list is append-only: refunded and used tickets stay in it.
type UserTickets struct {
	Owner        common.Address `json:"owner"`
	OwnedTickets []uint64       `json:"owned_tickets"`
}
