package repository

import (
	"context"

	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/model/task"
)

// TaskRepository persists workflow tasks together with their artifact and
// feedback history. Implementations must return model.ErrNotFound from
// FindByID for unknown IDs.
type TaskRepository interface {
	// Save persists a task and its full artifact/feedback history
	Save(ctx context.Context, t *task.Task) error

	// FindByID retrieves a task by its ID
	FindByID(ctx context.Context, id model.TaskID) (*task.Task, error)

	// List retrieves tasks by filter criteria, newest first
	List(ctx context.Context, filter TaskFilter) ([]*task.Task, error)
}

// TaskFilter defines criteria for filtering tasks
type TaskFilter struct {
	Statuses []model.Status // Filter by lifecycle statuses
	Limit    int            // Limit number of results (0 = no limit)
	Offset   int            // Offset for pagination
}
