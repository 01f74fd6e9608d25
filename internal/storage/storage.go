package storage

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartdevs17/event-ticketing/internal/metrics"
	"github.com/smartdevs17/event-ticketing/internal/models"
)

// Store defines the interface for ticketing state persistence. The engine's
// in-memory registries stay authoritative; the store is written through after
// each committed operation and read once at bootstrap.
type Store interface {
	// Connection management
	Connect() error
	Close() error
	Ping() error
	Migrate() error

	// Write-through operations
	SaveEvent(ctx context.Context, event *models.Event) error
	SaveTicket(ctx context.Context, ticket *models.Ticket) error
	AppendOwnership(ctx context.Context, owner common.Address, ticketID uint64) error
	SaveOrganizerStats(ctx context.Context, stats *models.OrganizerStats) error
	SaveContractConfig(ctx context.Context, cfg *models.ContractConfig) error

	// Bootstrap
	LoadState(ctx context.Context) (*State, error)

	// Statistics and monitoring
	GetStats() (*StoreStats, error)
	SetMetricsManager(m *metrics.Manager)
}

// State is a full snapshot of the persisted ticketing maps. Config is nil
// when the database has never been written, meaning a fresh deployment.
type State struct {
	Config     *models.ContractConfig
	Events     map[uint64]*models.Event
	Tickets    map[uint64]*models.Ticket
	Ownership  map[common.Address][]uint64
	Organizers map[common.Address]*models.OrganizerStats
}

// NewState returns an empty snapshot
func NewState() *State {
	return &State{
		Events:     make(map[uint64]*models.Event),
		Tickets:    make(map[uint64]*models.Ticket),
		Ownership:  make(map[common.Address][]uint64),
		Organizers: make(map[common.Address]*models.OrganizerStats),
	}
}

// StoreStats provides storage statistics
type StoreStats struct {
	Type            string     `json:"type"`
	TotalEvents     int64      `json:"total_events"`
	TotalTickets    int64      `json:"total_tickets"`
	TotalOwners     int64      `json:"total_owners"`
	TotalOrganizers int64      `json:"total_organizers"`
	LastWrite       *time.Time `json:"last_write,omitempty"`
}

// StoreConfig holds storage configuration
type StoreConfig struct {
	Type             string        `json:"type"`
	ConnectionString string        `json:"connection_string"`
	MaxConnections   int           `json:"max_connections"`
	MaxIdleTime      time.Duration `json:"max_idle_time"`
}
