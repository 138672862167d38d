package notifier

import (
	"context"

	"github.com/devpilot/devpilot/internal/app/logging"
	"github.com/devpilot/devpilot/internal/application/port/output"
)

// LogChannel writes transition events to the application log.
type LogChannel struct{}

// NewLogChannel creates a log channel
func NewLogChannel() *LogChannel {
	return &LogChannel{}
}

// Name identifies the channel
func (c *LogChannel) Name() string {
	return "log"
}

// Send logs the event
func (c *LogChannel) Send(ctx context.Context, event output.TransitionEvent) error {
	logging.Info("task %s (%s): %s -> %s [%s]",
		event.TaskID, event.ProjectName, event.FromStage, event.ToStage, event.Status)
	return nil
}
