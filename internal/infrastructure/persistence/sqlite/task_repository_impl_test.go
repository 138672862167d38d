package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/model/stage"
	"github.com/devpilot/devpilot/internal/domain/model/task"
	"github.com/devpilot/devpilot/internal/domain/repository"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// in-memory sqlite gives each pool connection its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, NewMigrator(db).Migrate())
	return db
}

func TestMigrator_Idempotent(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, NewMigrator(db).Migrate())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestTaskRepository_SaveAndFindByID(t *testing.T) {
	repo := NewTaskRepository(setupDB(t))
	ctx := context.Background()

	tk, err := task.NewTask("Alpha", "a todo app")
	require.NoError(t, err)
	_, err = tk.AttachArtifact("REQ-1: users can create todos")
	require.NoError(t, err)
	_, err = tk.ApplyDecision(stage.Requirements, model.DecisionReject, "split into must/should")
	require.NoError(t, err)
	_, err = tk.AttachArtifact("REQ-1 (must): users can create todos")
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, tk))

	loaded, err := repo.FindByID(ctx, tk.ID())
	require.NoError(t, err)

	assert.True(t, loaded.ID().Equals(tk.ID()))
	assert.Equal(t, "Alpha", loaded.ProjectName())
	assert.Equal(t, "a todo app", loaded.InitialInput())
	assert.Equal(t, model.StatusAwaitingReview, loaded.Status())
	assert.Equal(t, 0, loaded.StageIndex())
	assert.WithinDuration(t, tk.CreatedAt().Value(), loaded.CreatedAt().Value(), time.Second)

	artifacts := loaded.Artifacts()
	require.Len(t, artifacts, 2)
	assert.Equal(t, model.ApprovalRejected, artifacts[0].Approval())
	assert.NotNil(t, artifacts[0].ResolvedAt())
	assert.Equal(t, model.ApprovalPending, artifacts[1].Approval())
	assert.Nil(t, artifacts[1].ResolvedAt())
	assert.Equal(t, "REQ-1 (must): users can create todos", artifacts[1].Content())

	feedback := loaded.FeedbackRecords()
	require.Len(t, feedback, 1)
	assert.Equal(t, "split into must/should", feedback[0].Content())
	assert.True(t, feedback[0].Applied())
}

func TestTaskRepository_SaveIsUpsert(t *testing.T) {
	repo := NewTaskRepository(setupDB(t))
	ctx := context.Background()

	tk, err := task.NewTask("Alpha", "a todo app")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tk))

	_, err = tk.AttachArtifact("REQ-1")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tk))

	loaded, err := repo.FindByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.Equal(t, model.StatusAwaitingReview, loaded.Status())
	assert.Len(t, loaded.Artifacts(), 1)
}

func TestTaskRepository_FindByID_NotFound(t *testing.T) {
	repo := NewTaskRepository(setupDB(t))

	id, err := model.NewTaskIDFromString("01ZZZZZZZZZZZZZZZZZZZZZZZZ")
	require.NoError(t, err)
	_, err = repo.FindByID(context.Background(), id)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTaskRepository_List(t *testing.T) {
	repo := NewTaskRepository(setupDB(t))
	ctx := context.Background()

	running, err := task.NewTask("Alpha", "input")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, running))

	cancelled, err := task.NewTask("Beta", "input")
	require.NoError(t, err)
	require.NoError(t, cancelled.Cancel())
	require.NoError(t, repo.Save(ctx, cancelled))

	all, err := repo.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyCancelled, err := repo.List(ctx, repository.TaskFilter{Statuses: []model.Status{model.StatusCancelled}})
	require.NoError(t, err)
	require.Len(t, onlyCancelled, 1)
	assert.Equal(t, "Beta", onlyCancelled[0].ProjectName())

	limited, err := repo.List(ctx, repository.TaskFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestTaskRepository_List_NewestFirst(t *testing.T) {
	repo := NewTaskRepository(setupDB(t))
	ctx := context.Background()

	// the whole-second timestamp would sort as newest if trailing
	// fractional zeros were trimmed from the stored strings
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	older := reconstructAt(t, "Older", base)
	newer := reconstructAt(t, "Newer", base.Add(500*time.Millisecond))
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	tasks, err := repo.List(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Newer", tasks[0].ProjectName())
	assert.Equal(t, "Older", tasks[1].ProjectName())
}

func reconstructAt(t *testing.T, name string, createdAt time.Time) *task.Task {
	t.Helper()
	tk, err := task.Reconstruct(
		model.NewTaskID(), name, "input", model.StatusRunning,
		0, nil, nil, createdAt, createdAt,
	)
	require.NoError(t, err)
	return tk
}
