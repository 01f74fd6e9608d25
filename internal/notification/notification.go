package notification

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// Lifecycle event types emitted by the ticketing engine
const (
	TypeEventCreated    = "event_created"
	TypeTicketPurchased = "ticket_purchased"
	TypeTicketValidated = "ticket_validated"
	TypeTicketRefunded  = "ticket_refunded"
	TypeFeeUpdated      = "platform_fee_updated"
	TypeMinPriceUpdated = "min_ticket_price_updated"
)

// LifecycleEvent describes a committed state transition
type LifecycleEvent struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Publisher is the notification interface consumed by the engine
type Publisher interface {
	Publish(event *LifecycleEvent)
}

// Channel delivers lifecycle events to one destination
type Channel interface {
	Name() string
	Send(ctx context.Context, event *LifecycleEvent) error
}

// ManagerConfig holds notification manager configuration
type ManagerConfig struct {
	Enabled       bool          `json:"enabled"`
	Timeout       time.Duration `json:"timeout"`
	RetryAttempts int           `json:"retry_attempts"`
	RetryDelay    time.Duration `json:"retry_delay"`
	WebhookURL    string        `json:"webhook_url"`
}

// Manager fans lifecycle events out to the configured channels. Delivery is
// fire-and-forget: a failed notification never affects the committed
// operation it describes.
type Manager struct {
	config *ManagerConfig
	logger *logrus.Entry

	mu       sync.Mutex
	channels []Channel
	wg       sync.WaitGroup

	stats Stats
}

// Stats tracks notification delivery counts
type Stats struct {
	Sent   uint64 `json:"sent"`
	Failed uint64 `json:"failed"`
}

// NewManager creates a new notification manager
func NewManager(config *ManagerConfig) *Manager {
	m := &Manager{
		config: config,
		logger: utils.GetLogger().WithField("component", "notification"),
	}

	if config.Enabled {
		m.channels = append(m.channels, NewLogChannel())
		if config.WebhookURL != "" {
			m.channels = append(m.channels, NewWebhookChannel(config))
		}
	}

	return m
}

// Publish dispatches an event to all channels asynchronously
func (m *Manager) Publish(event *LifecycleEvent) {
	if !m.config.Enabled || len(m.channels) == 0 {
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), m.config.Timeout)
		defer cancel()

		for _, channel := range m.channels {
			m.deliver(ctx, channel, event)
		}
	}()
}

// Stop waits for in-flight deliveries to finish
func (m *Manager) Stop() error {
	m.wg.Wait()
	m.logger.Info("Notification manager stopped")
	return nil
}

// GetStats returns delivery statistics
func (m *Manager) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

func (m *Manager) deliver(ctx context.Context, channel Channel, event *LifecycleEvent) {
	var err error
	for attempt := 0; attempt <= m.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				err = ctx.Err()
			case <-time.After(m.config.RetryDelay):
			}
			if ctx.Err() != nil {
				break
			}
		}

		if err = channel.Send(ctx, event); err == nil {
			break
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.stats.Failed++
		m.logger.WithFields(logrus.Fields{
			"channel": channel.Name(),
			"type":    event.Type,
		}).WithError(err).Warn("Notification delivery failed")
		return
	}
	m.stats.Sent++
}
