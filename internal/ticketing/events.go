package ticketing

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/smartdevs17/event-ticketing/internal/models"
	"github.com/smartdevs17/event-ticketing/internal/notification"
)

// CreateEventParams carries the caller-supplied event fields
type CreateEventParams struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Venue        string `json:"venue"`
	EventHeight  uint64 `json:"event_height"`
	TotalTickets uint64 `json:"total_tickets"`
	TicketPrice  uint64 `json:"ticket_price"`
	RefundWindow uint64 `json:"refund_window"`
	Category     string `json:"category"`
}

// CreateEvent registers a new event and returns its id. The ticket price must
// meet the configured minimum, the refund window must not exceed
// MaxRefundWindow (both violations report ErrInvalidPrice), and the event
// height must be in the future relative to the current ledger height.
func (e *Engine) CreateEvent(ctx context.Context, params *CreateEventParams, organizer common.Address) (uint64, error) {
	start := time.Now()

	id, err := e.createEvent(ctx, params, organizer)
	e.recordOperation("create-event", start, err)
	return id, err
}

func (e *Engine) createEvent(ctx context.Context, params *CreateEventParams, organizer common.Address) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if params.TicketPrice < e.config.MinTicketPrice {
		return 0, ErrInvalidPrice
	}
	if params.RefundWindow > MaxRefundWindow {
		return 0, ErrInvalidPrice
	}
	if params.TotalTickets == 0 {
		return 0, ErrInvalidPrice
	}

	height := e.currentHeight()
	if params.EventHeight <= height {
		return 0, ErrEventExpired
	}

	id := e.config.NextEventID
	e.config.NextEventID++

	event := &models.Event{
		ID:           id,
		Name:         params.Name,
		Description:  params.Description,
		Venue:        params.Venue,
		EventHeight:  params.EventHeight,
		TotalTickets: params.TotalTickets,
		TicketsSold:  0,
		TicketPrice:  params.TicketPrice,
		RefundWindow: params.RefundWindow,
		Category:     params.Category,
		Organizer:    organizer,
		Revenue:      0,
		IsActive:     true,
	}
	e.events[id] = event

	stats, ok := e.organizers[organizer]
	if !ok {
		stats = &models.OrganizerStats{Organizer: organizer}
		e.organizers[organizer] = stats
	}
	stats.EventsOrganized++

	e.persistEvent(ctx, event)
	e.persistOrganizerStats(ctx, stats)
	e.persistConfig(ctx)

	if e.metricsManager != nil {
		e.metricsManager.GetPrometheusMetrics().EventsCreatedTotal.Inc()
	}

	e.notify(notification.TypeEventCreated, map[string]interface{}{
		"event_id":  id,
		"name":      params.Name,
		"organizer": organizer.Hex(),
	})

	return id, nil
}
