package ticketing

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/event-ticketing/internal/metrics"
	"github.com/smartdevs17/event-ticketing/internal/models"
	"github.com/smartdevs17/event-ticketing/internal/notification"
	"github.com/smartdevs17/event-ticketing/internal/payments"
	"github.com/smartdevs17/event-ticketing/internal/storage"
	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// MaxRefundWindow is the upper bound on a per-event refund window, expressed
// as a ledger height delta.
const MaxRefundWindow = 1_209_600

// Defaults applied to a fresh deployment
const (
	DefaultMinTicketPrice     = 1_000_000
	DefaultPlatformFeePercent = 5
)

// HeightSource supplies the current ledger height, non-decreasing across
// calls. The engine reads it once per operation and never advances it.
type HeightSource interface {
	CurrentHeight() uint64
}

// EngineConfig holds the deployment parameters of the contract state
type EngineConfig struct {
	ContractOwner      common.Address `json:"contract_owner"`
	MinTicketPrice     uint64         `json:"min_ticket_price"`
	PlatformFeePercent uint64         `json:"platform_fee_percent"`
	// MaxTicketsPerOwner caps ownership index growth per identity.
	// Zero means unlimited, matching the original contract.
	MaxTicketsPerOwner uint64 `json:"max_tickets_per_owner"`
}

// Engine is the event/ticket state machine. All state lives in the four maps
// plus the configuration singleton; one mutex serializes operations so every
// operation applies atomically with respect to all others. The in-memory
// state is authoritative; the store, when present, is written through after
// each committed operation.
type Engine struct {
	mu sync.Mutex

	config             models.ContractConfig
	maxTicketsPerOwner uint64

	events     map[uint64]*models.Event
	tickets    map[uint64]*models.Ticket
	ownership  map[common.Address][]uint64
	organizers map[common.Address]*models.OrganizerStats

	heights HeightSource
	bank    payments.Bank

	store          storage.Store
	notifier       notification.Publisher
	metricsManager *metrics.Manager
	logger         *logrus.Entry
}

// NewEngine creates an engine with a fresh deployment state
func NewEngine(cfg *EngineConfig, heights HeightSource, bank payments.Bank) *Engine {
	minPrice := cfg.MinTicketPrice
	if minPrice == 0 {
		minPrice = DefaultMinTicketPrice
	}

	return &Engine{
		config: models.ContractConfig{
			ContractOwner:      cfg.ContractOwner,
			MinTicketPrice:     minPrice,
			PlatformFeePercent: cfg.PlatformFeePercent,
			NextEventID:        1,
			NextTicketID:       1,
		},
		maxTicketsPerOwner: cfg.MaxTicketsPerOwner,
		events:             make(map[uint64]*models.Event),
		tickets:            make(map[uint64]*models.Ticket),
		ownership:          make(map[common.Address][]uint64),
		organizers:         make(map[common.Address]*models.OrganizerStats),
		heights:            heights,
		bank:               bank,
		logger:             utils.GetLogger().WithField("component", "ticketing"),
	}
}

// SetStore attaches a persistence store for write-through and bootstrap
func (e *Engine) SetStore(store storage.Store) {
	e.store = store
}

// SetNotifier attaches a lifecycle event publisher
func (e *Engine) SetNotifier(p notification.Publisher) {
	e.notifier = p
}

// SetMetricsManager attaches a metrics manager
func (e *Engine) SetMetricsManager(m *metrics.Manager) {
	e.metricsManager = m
}

// Bootstrap replaces the engine state with the persisted snapshot, if one
// exists. A database that has never been written leaves the fresh deployment
// state in place.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if e.store == nil {
		return nil
	}

	state, err := e.store.LoadState(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if state.Config == nil {
		e.logger.Info("No persisted state, starting from fresh deployment")
		return nil
	}

	e.config = *state.Config
	e.events = state.Events
	e.tickets = state.Tickets
	e.ownership = state.Ownership
	e.organizers = state.Organizers

	e.logger.WithFields(logrus.Fields{
		"events":  len(e.events),
		"tickets": len(e.tickets),
	}).Info("State restored from storage")

	return nil
}

// EngineStats summarizes the in-memory state
type EngineStats struct {
	Events       int    `json:"events"`
	Tickets      int    `json:"tickets"`
	Owners       int    `json:"owners"`
	Organizers   int    `json:"organizers"`
	LedgerHeight uint64 `json:"ledger_height"`
}

// GetStats returns engine statistics
func (e *Engine) GetStats() *EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return &EngineStats{
		Events:       len(e.events),
		Tickets:      len(e.tickets),
		Owners:       len(e.ownership),
		Organizers:   len(e.organizers),
		LedgerHeight: e.heights.CurrentHeight(),
	}
}

// currentHeight reads the oracle once and mirrors it to the metrics gauge
func (e *Engine) currentHeight() uint64 {
	height := e.heights.CurrentHeight()
	if e.metricsManager != nil {
		e.metricsManager.GetPrometheusMetrics().UpdateLedgerHeight(height)
	}
	return height
}

// recordOperation records metrics for one contract operation attempt
func (e *Engine) recordOperation(operation string, start time.Time, err error) {
	if e.metricsManager == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "failure"
	}
	e.metricsManager.GetPrometheusMetrics().RecordOperation(operation, status, time.Since(start))
}

// notify publishes a lifecycle event after a committed transition
func (e *Engine) notify(eventType string, data map[string]interface{}) {
	if e.notifier == nil {
		return
	}
	e.notifier.Publish(&notification.LifecycleEvent{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// Write-through helpers. The operation is already committed in memory when
// these run, so a storage failure is surfaced as a log + counter, not an
// operation failure.

func (e *Engine) persistEvent(ctx context.Context, event *models.Event) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveEvent(ctx, event); err != nil {
		e.writeThroughError("event", err)
	}
}

func (e *Engine) persistTicket(ctx context.Context, ticket *models.Ticket) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveTicket(ctx, ticket); err != nil {
		e.writeThroughError("ticket", err)
	}
}

func (e *Engine) persistOwnership(ctx context.Context, owner common.Address, ticketID uint64) {
	if e.store == nil {
		return
	}
	if err := e.store.AppendOwnership(ctx, owner, ticketID); err != nil {
		e.writeThroughError("ownership", err)
	}
}

func (e *Engine) persistOrganizerStats(ctx context.Context, stats *models.OrganizerStats) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveOrganizerStats(ctx, stats); err != nil {
		e.writeThroughError("organizer_stats", err)
	}
}

func (e *Engine) persistConfig(ctx context.Context) {
	if e.store == nil {
		return
	}
	cfg := e.config
	if err := e.store.SaveContractConfig(ctx, &cfg); err != nil {
		e.writeThroughError("contract_config", err)
	}
}

func (e *Engine) writeThroughError(record string, err error) {
	e.logger.WithField("record", record).WithError(err).Error("Write-through failed")
	if e.metricsManager != nil {
		e.metricsManager.GetPrometheusMetrics().WriteThroughErrorsTotal.Inc()
	}
}
