package notifier

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/devpilot/devpilot/internal/app/logging"
	"github.com/devpilot/devpilot/internal/application/port/output"
)

// Channel is one external delivery target for transition events.
type Channel interface {
	// Name identifies the channel in logs
	Name() string

	// Send delivers one event
	Send(ctx context.Context, event output.TransitionEvent) error
}

// Dispatcher fans transition events out to all registered channels.
// Delivery is best effort: channel failures are logged and swallowed, never
// surfaced to the workflow.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
}

// NewDispatcher creates a dispatcher over the given channels
func NewDispatcher(channels []Channel, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{channels: channels, timeout: timeout}
}

// Notify delivers the event to every channel. It blocks at most for the
// dispatcher timeout and never returns an error to the caller.
func (d *Dispatcher) Notify(ctx context.Context, event output.TransitionEvent) {
	if len(d.channels) == 0 {
		return
	}

	// Deliveries must outlive a cancelled workflow request.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	g, gctx := errgroup.WithContext(sendCtx)
	g.SetLimit(4)
	for _, ch := range d.channels {
		g.Go(func() error {
			if err := ch.Send(gctx, event); err != nil {
				logging.Warn("notify %s: task %s event %s failed: %v", ch.Name(), event.TaskID, event.EventID, err)
			}
			// Channel errors are swallowed so one failing channel does not
			// cancel the sibling deliveries.
			return nil
		})
	}
	_ = g.Wait()
}
