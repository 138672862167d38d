package output

import (
	"context"
	"time"
)

// Notifier forwards workflow transition events to zero or more external
// services. Delivery is best effort: implementations log failures and never
// return them to the workflow.
type Notifier interface {
	Notify(ctx context.Context, event TransitionEvent)
}

// TransitionEvent describes one successful workflow transition
type TransitionEvent struct {
	EventID     string    // Unique event ID
	TaskID      string    // Task the transition belongs to
	ProjectName string    // Project name for display
	FromStage   string    // Stage before the transition (empty on start)
	ToStage     string    // Stage after the transition (empty once completed)
	Status      string    // Lifecycle status after the transition
	OccurredAt  time.Time // Transition timestamp
}
