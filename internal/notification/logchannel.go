package notification

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/event-ticketing/pkg/utils"
)

// LogChannel writes lifecycle events to the application log
type LogChannel struct {
	logger *logrus.Entry
}

// NewLogChannel creates a new log channel
func NewLogChannel() *LogChannel {
	return &LogChannel{
		logger: utils.GetLogger().WithField("component", "notification_log"),
	}
}

// Name returns the channel name
func (c *LogChannel) Name() string {
	return "log"
}

// Send logs the event
func (c *LogChannel) Send(ctx context.Context, event *LifecycleEvent) error {
	c.logger.WithFields(logrus.Fields{
		"type": event.Type,
		"data": event.Data,
	}).Info("Lifecycle event")
	return nil
}
