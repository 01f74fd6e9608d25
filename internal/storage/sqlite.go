package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/smartdevs17/event-ticketing/internal/metrics"
	"github.com/smartdevs17/event-ticketing/internal/models"
	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db         *sql.DB
	config     *StoreConfig
	logger     *logrus.Logger
	migrations []*Migration

	metricsManager *metrics.Manager
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(config *StoreConfig) *SQLiteStore {
	return &SQLiteStore{
		config:     config,
		logger:     utils.GetLogger(),
		migrations: GetSQLiteMigrations(),
	}
}

// SetMetricsManager attaches a metrics manager for database instrumentation
func (s *SQLiteStore) SetMetricsManager(m *metrics.Manager) {
	s.metricsManager = m
}

// Connect establishes database connection
func (s *SQLiteStore) Connect() error {
	// Ensure directory exists
	dir := filepath.Dir(s.config.ConnectionString)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase, "Failed to create database directory", err.Error())
		}
	}

	db, err := sql.Open("sqlite", s.config.ConnectionString)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to open SQLite database", err.Error())
	}

	// Configure connection pool
	db.SetMaxOpenConns(s.config.MaxConnections)
	db.SetMaxIdleConns(s.config.MaxConnections / 2)
	db.SetConnMaxLifetime(s.config.MaxIdleTime)

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to enable WAL mode", err.Error())
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to enable foreign keys", err.Error())
	}

	s.db = db
	s.logger.WithField("path", s.config.ConnectionString).Info("SQLite database connected")

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		s.logger.Info("SQLite database connection closed")
		return err
	}
	return nil
}

// Ping checks database connectivity
func (s *SQLiteStore) Ping() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}
	return s.db.Ping()
}

// Migrate runs database migrations
func (s *SQLiteStore) Migrate() error {
	if s.db == nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Database not connected", "")
	}

	s.logger.Info("Starting database migrations")

	for _, migration := range s.migrations {
		s.logger.WithFields(logrus.Fields{
			"version":     migration.Version,
			"description": migration.Description,
		}).Debug("Applying migration")

		if _, err := s.db.Exec(migration.SQL); err != nil {
			return utils.NewAppError(utils.ErrCodeDatabase,
				fmt.Sprintf("Migration %s failed", migration.Version),
				err.Error())
		}
	}

	s.logger.Info("Database migrations completed")
	return nil
}

// SaveEvent upserts an event record
func (s *SQLiteStore) SaveEvent(ctx context.Context, event *models.Event) error {
	start := time.Now()

	query := `
		INSERT OR REPLACE INTO events
		(id, name, description, venue, event_height, total_tickets, tickets_sold,
		 ticket_price, refund_window, category, organizer, revenue, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.Name, event.Description, event.Venue, event.EventHeight,
		event.TotalTickets, event.TicketsSold, event.TicketPrice, event.RefundWindow,
		event.Category, event.Organizer.Hex(), event.Revenue, event.IsActive)

	s.recordOperation("upsert", "events", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save event", err.Error())
	}
	return nil
}

// SaveTicket upserts a ticket record
func (s *SQLiteStore) SaveTicket(ctx context.Context, ticket *models.Ticket) error {
	start := time.Now()

	query := `
		INSERT OR REPLACE INTO tickets
		(id, event_id, owner, purchase_price, purchase_height, is_used, is_refunded)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		ticket.ID, ticket.EventID, ticket.Owner.Hex(), ticket.PurchasePrice,
		ticket.PurchaseHeight, ticket.IsUsed, ticket.IsRefunded)

	s.recordOperation("upsert", "tickets", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save ticket", err.Error())
	}
	return nil
}

// AppendOwnership records a ticket id in the owner's index
func (s *SQLiteStore) AppendOwnership(ctx context.Context, owner common.Address, ticketID uint64) error {
	start := time.Now()

	query := `INSERT OR IGNORE INTO ticket_owners (owner, ticket_id) VALUES (?, ?)`

	_, err := s.db.ExecContext(ctx, query, owner.Hex(), ticketID)

	s.recordOperation("insert", "ticket_owners", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to append ownership", err.Error())
	}
	return nil
}

// SaveOrganizerStats upserts an organizer statistics record
func (s *SQLiteStore) SaveOrganizerStats(ctx context.Context, stats *models.OrganizerStats) error {
	start := time.Now()

	query := `
		INSERT OR REPLACE INTO organizer_stats (organizer, events_organized, total_revenue, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`

	_, err := s.db.ExecContext(ctx, query,
		stats.Organizer.Hex(), stats.EventsOrganized, stats.TotalRevenue)

	s.recordOperation("upsert", "organizer_stats", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save organizer stats", err.Error())
	}
	return nil
}

// SaveContractConfig upserts the configuration singleton
func (s *SQLiteStore) SaveContractConfig(ctx context.Context, cfg *models.ContractConfig) error {
	start := time.Now()

	query := `
		INSERT OR REPLACE INTO contract_config
		(id, contract_owner, min_ticket_price, platform_fee_percent, next_event_id, next_ticket_id, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	_, err := s.db.ExecContext(ctx, query,
		cfg.ContractOwner.Hex(), cfg.MinTicketPrice, cfg.PlatformFeePercent,
		cfg.NextEventID, cfg.NextTicketID)

	s.recordOperation("upsert", "contract_config", err, start)

	if err != nil {
		return utils.NewAppError(utils.ErrCodeDatabase, "Failed to save contract config", err.Error())
	}
	return nil
}

// LoadState reads the full persisted snapshot for engine bootstrap
func (s *SQLiteStore) LoadState(ctx context.Context) (*State, error) {
	state := NewState()

	// Config singleton
	row := s.db.QueryRowContext(ctx, `
		SELECT contract_owner, min_ticket_price, platform_fee_percent, next_event_id, next_ticket_id
		FROM contract_config WHERE id = 1
	`)

	var cfg models.ContractConfig
	var owner string
	err := row.Scan(&owner, &cfg.MinTicketPrice, &cfg.PlatformFeePercent, &cfg.NextEventID, &cfg.NextTicketID)
	if err != nil && err != sql.ErrNoRows {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to load contract config", err.Error())
	}
	if err == nil {
		cfg.ContractOwner = common.HexToAddress(owner)
		state.Config = &cfg
	}

	// Events
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, venue, event_height, total_tickets, tickets_sold,
		       ticket_price, refund_window, category, organizer, revenue, is_active
		FROM events
	`)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to load events", err.Error())
	}
	defer rows.Close()

	for rows.Next() {
		var event models.Event
		var organizer string
		if err := rows.Scan(&event.ID, &event.Name, &event.Description, &event.Venue,
			&event.EventHeight, &event.TotalTickets, &event.TicketsSold, &event.TicketPrice,
			&event.RefundWindow, &event.Category, &organizer, &event.Revenue, &event.IsActive); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan event", err.Error())
		}
		event.Organizer = common.HexToAddress(organizer)
		state.Events[event.ID] = &event
	}
	if err := rows.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to iterate events", err.Error())
	}

	// Tickets
	ticketRows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, owner, purchase_price, purchase_height, is_used, is_refunded
		FROM tickets
	`)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to load tickets", err.Error())
	}
	defer ticketRows.Close()

	for ticketRows.Next() {
		var ticket models.Ticket
		var ticketOwner string
		if err := ticketRows.Scan(&ticket.ID, &ticket.EventID, &ticketOwner,
			&ticket.PurchasePrice, &ticket.PurchaseHeight, &ticket.IsUsed, &ticket.IsRefunded); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan ticket", err.Error())
		}
		ticket.Owner = common.HexToAddress(ticketOwner)
		state.Tickets[ticket.ID] = &ticket
	}
	if err := ticketRows.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to iterate tickets", err.Error())
	}

	// Ownership index, in purchase order (ticket ids are monotonic)
	ownerRows, err := s.db.QueryContext(ctx, `
		SELECT owner, ticket_id FROM ticket_owners ORDER BY ticket_id ASC
	`)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to load ownership index", err.Error())
	}
	defer ownerRows.Close()

	for ownerRows.Next() {
		var ownerHex string
		var ticketID uint64
		if err := ownerRows.Scan(&ownerHex, &ticketID); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan ownership entry", err.Error())
		}
		addr := common.HexToAddress(ownerHex)
		state.Ownership[addr] = append(state.Ownership[addr], ticketID)
	}
	if err := ownerRows.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to iterate ownership index", err.Error())
	}

	// Organizer statistics
	statsRows, err := s.db.QueryContext(ctx, `
		SELECT organizer, events_organized, total_revenue FROM organizer_stats
	`)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to load organizer stats", err.Error())
	}
	defer statsRows.Close()

	for statsRows.Next() {
		var stats models.OrganizerStats
		var organizerHex string
		if err := statsRows.Scan(&organizerHex, &stats.EventsOrganized, &stats.TotalRevenue); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to scan organizer stats", err.Error())
		}
		stats.Organizer = common.HexToAddress(organizerHex)
		state.Organizers[stats.Organizer] = &stats
	}
	if err := statsRows.Err(); err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to iterate organizer stats", err.Error())
	}

	return state, nil
}

// GetStats returns storage statistics
func (s *SQLiteStore) GetStats() (*StoreStats, error) {
	stats := &StoreStats{Type: "sqlite"}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM events", &stats.TotalEvents},
		{"SELECT COUNT(*) FROM tickets", &stats.TotalTickets},
		{"SELECT COUNT(DISTINCT owner) FROM ticket_owners", &stats.TotalOwners},
		{"SELECT COUNT(*) FROM organizer_stats", &stats.TotalOrganizers},
	}

	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, utils.NewAppError(utils.ErrCodeDatabase, "Failed to collect storage stats", err.Error())
		}
	}

	return stats, nil
}

func (s *SQLiteStore) recordOperation(operation, table string, err error, start time.Time) {
	if s.metricsManager == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	s.metricsManager.GetPrometheusMetrics().RecordDatabaseOperation(
		operation, table, status, time.Since(start))
}
