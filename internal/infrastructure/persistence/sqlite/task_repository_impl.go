package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/model/artifact"
	"github.com/devpilot/devpilot/internal/domain/model/task"
	"github.com/devpilot/devpilot/internal/domain/repository"
)

// timeFormat keeps a fixed fractional width so lexicographic order of the
// stored strings is chronological (RFC3339Nano trims trailing zeros).
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// TaskRepositoryImpl implements repository.TaskRepository with SQLite
type TaskRepositoryImpl struct {
	db *sql.DB
}

// NewTaskRepository creates a new SQLite-based task repository
func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

// Save persists a task together with its artifact and feedback history.
// The history rows are rewritten as a whole inside one transaction; tasks
// are never deleted, so this is a pure upsert.
func (r *TaskRepositoryImpl) Save(ctx context.Context, t *task.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, project_name, initial_input, status, stage_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			stage_index = excluded.stage_index,
			updated_at = excluded.updated_at
	`,
		t.ID().String(),
		t.ProjectName(),
		t.InitialInput(),
		t.Status().String(),
		t.StageIndex(),
		t.CreatedAt().Value().UTC().Format(timeFormat),
		t.UpdatedAt().Value().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM artifacts WHERE task_id = ?", t.ID().String()); err != nil {
		return fmt.Errorf("clear artifacts: %w", err)
	}
	for seq, a := range t.Artifacts() {
		var resolvedAt interface{}
		if ts := a.ResolvedAt(); ts != nil {
			resolvedAt = ts.Value().UTC().Format(timeFormat)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO artifacts (id, task_id, stage, content, approval, produced_at, resolved_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			a.ID(),
			t.ID().String(),
			a.Stage(),
			a.Content(),
			a.Approval().String(),
			a.ProducedAt().Value().UTC().Format(timeFormat),
			resolvedAt,
			seq,
		)
		if err != nil {
			return fmt.Errorf("save artifact %s: %w", a.ID(), err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM feedback_records WHERE task_id = ?", t.ID().String()); err != nil {
		return fmt.Errorf("clear feedback: %w", err)
	}
	for seq, f := range t.FeedbackRecords() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO feedback_records (id, task_id, stage, content, applied, created_at, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			f.ID(),
			t.ID().String(),
			f.Stage(),
			f.Content(),
			boolToInt(f.Applied()),
			f.CreatedAt().Value().UTC().Format(timeFormat),
			seq,
		)
		if err != nil {
			return fmt.Errorf("save feedback %s: %w", f.ID(), err)
		}
	}

	return tx.Commit()
}

// FindByID retrieves a task with its full history
func (r *TaskRepositoryImpl) FindByID(ctx context.Context, id model.TaskID) (*task.Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, project_name, initial_input, status, stage_index, created_at, updated_at
		FROM tasks WHERE id = ?
	`, id.String())

	t, err := r.scanTask(ctx, row)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves tasks matching the filter, newest first
func (r *TaskRepositoryImpl) List(ctx context.Context, filter repository.TaskFilter) ([]*task.Task, error) {
	query := `
		SELECT id FROM tasks
	`
	var args []interface{}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, s.String())
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(ids))
	for _, rawID := range ids {
		id, err := model.NewTaskIDFromString(rawID)
		if err != nil {
			return nil, err
		}
		t, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) scanTask(ctx context.Context, row *sql.Row) (*task.Task, error) {
	var (
		rawID        string
		projectName  string
		initialInput string
		status       string
		stageIndex   int
		createdAtStr string
		updatedAtStr string
	)
	err := row.Scan(&rawID, &projectName, &initialInput, &status, &stageIndex, &createdAtStr, &updatedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	id, err := model.NewTaskIDFromString(rawID)
	if err != nil {
		return nil, err
	}
	createdAt, err := parseTime(createdAtStr)
	if err != nil {
		return nil, err
	}
	updatedAt, err := parseTime(updatedAtStr)
	if err != nil {
		return nil, err
	}

	artifacts, err := r.loadArtifacts(ctx, id)
	if err != nil {
		return nil, err
	}
	feedback, err := r.loadFeedback(ctx, id)
	if err != nil {
		return nil, err
	}

	return task.Reconstruct(
		id,
		projectName,
		initialInput,
		model.Status(status),
		stageIndex,
		artifacts,
		feedback,
		createdAt,
		updatedAt,
	)
}

func (r *TaskRepositoryImpl) loadArtifacts(ctx context.Context, id model.TaskID) ([]*artifact.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, stage, content, approval, produced_at, resolved_at
		FROM artifacts WHERE task_id = ? ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*artifact.Artifact
	for rows.Next() {
		var (
			artifactID    string
			stageName     string
			content       string
			approval      string
			producedAtStr string
			resolvedAtStr sql.NullString
		)
		if err := rows.Scan(&artifactID, &stageName, &content, &approval, &producedAtStr, &resolvedAtStr); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}

		producedAt, err := parseTime(producedAtStr)
		if err != nil {
			return nil, err
		}
		var resolvedAt *time.Time
		if resolvedAtStr.Valid {
			ts, err := parseTime(resolvedAtStr.String)
			if err != nil {
				return nil, err
			}
			resolvedAt = &ts
		}

		artifacts = append(artifacts, artifact.Reconstruct(
			artifactID,
			id,
			stageName,
			content,
			model.ApprovalStatus(approval),
			producedAt,
			resolvedAt,
		))
	}
	return artifacts, rows.Err()
}

func (r *TaskRepositoryImpl) loadFeedback(ctx context.Context, id model.TaskID) ([]*artifact.FeedbackRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, stage, content, applied, created_at
		FROM feedback_records WHERE task_id = ? ORDER BY seq
	`, id.String())
	if err != nil {
		return nil, fmt.Errorf("load feedback: %w", err)
	}
	defer rows.Close()

	var records []*artifact.FeedbackRecord
	for rows.Next() {
		var (
			feedbackID   string
			stageName    string
			content      string
			applied      int
			createdAtStr string
		)
		if err := rows.Scan(&feedbackID, &stageName, &content, &applied, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		createdAt, err := parseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		records = append(records, artifact.ReconstructFeedback(
			feedbackID,
			id,
			stageName,
			content,
			applied != 0,
			createdAt,
		))
	}
	return records, rows.Err()
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
