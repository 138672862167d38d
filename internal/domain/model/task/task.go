package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/model/artifact"
	"github.com/devpilot/devpilot/internal/domain/model/stage"
)

// Task is one end-to-end run of the lifecycle workflow for a project.
// It owns the stage cursor, the artifact history and the feedback records;
// all mutations go through gate transitions on this aggregate.
type Task struct {
	id           model.TaskID
	projectName  string
	initialInput string
	status       model.Status
	stageIndex   int
	artifacts    []*artifact.Artifact
	feedback     []*artifact.FeedbackRecord
	createdAt    model.Timestamp
	updatedAt    model.Timestamp
}

// NewTask creates a task positioned at the first stage
func NewTask(projectName, initialInput string) (*Task, error) {
	if projectName == "" {
		return nil, errors.New("project name cannot be empty")
	}

	now := model.NewTimestamp()
	return &Task{
		id:           model.NewTaskID(),
		projectName:  projectName,
		initialInput: initialInput,
		status:       model.StatusRunning,
		stageIndex:   0,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a task from stored data
func Reconstruct(
	id model.TaskID,
	projectName string,
	initialInput string,
	status model.Status,
	stageIndex int,
	artifacts []*artifact.Artifact,
	feedback []*artifact.FeedbackRecord,
	createdAt time.Time,
	updatedAt time.Time,
) (*Task, error) {
	if stageIndex < 0 || stageIndex > stage.Count() {
		return nil, fmt.Errorf("stage index out of range: %d", stageIndex)
	}
	return &Task{
		id:           id,
		projectName:  projectName,
		initialInput: initialInput,
		status:       status,
		stageIndex:   stageIndex,
		artifacts:    artifacts,
		feedback:     feedback,
		createdAt:    model.NewTimestampFromTime(createdAt),
		updatedAt:    model.NewTimestampFromTime(updatedAt),
	}, nil
}

// ID returns the task ID
func (t *Task) ID() model.TaskID {
	return t.id
}

// ProjectName returns the project name
func (t *Task) ProjectName() string {
	return t.projectName
}

// InitialInput returns the requirement description the task was started with
func (t *Task) InitialInput() string {
	return t.initialInput
}

// Status returns the lifecycle status
func (t *Task) Status() model.Status {
	return t.status
}

// StageIndex returns the current stage index; index == stage.Count() means completed
func (t *Task) StageIndex() int {
	return t.stageIndex
}

// CreatedAt returns the creation timestamp
func (t *Task) CreatedAt() model.Timestamp {
	return t.createdAt
}

// UpdatedAt returns the last update timestamp
func (t *Task) UpdatedAt() model.Timestamp {
	return t.updatedAt
}

// CurrentStage returns the current stage definition; ok is false once the
// task has advanced past the final stage.
func (t *Task) CurrentStage() (stage.Stage, bool) {
	if t.stageIndex >= stage.Count() {
		return stage.Stage{}, false
	}
	s, err := stage.ByPosition(t.stageIndex)
	if err != nil {
		return stage.Stage{}, false
	}
	return s, true
}

// Artifacts returns the full artifact history in production order
func (t *Task) Artifacts() []*artifact.Artifact {
	out := make([]*artifact.Artifact, len(t.artifacts))
	copy(out, t.artifacts)
	return out
}

// FeedbackRecords returns all feedback records in creation order
func (t *Task) FeedbackRecords() []*artifact.FeedbackRecord {
	out := make([]*artifact.FeedbackRecord, len(t.feedback))
	copy(out, t.feedback)
	return out
}

// ArtifactFor returns the current (most recent) artifact for a stage, or nil
func (t *Task) ArtifactFor(stageName string) *artifact.Artifact {
	for i := len(t.artifacts) - 1; i >= 0; i-- {
		if t.artifacts[i].Stage() == stageName {
			return t.artifacts[i]
		}
	}
	return nil
}

// CurrentArtifact returns the current artifact of the current stage, or nil
func (t *Task) CurrentArtifact() *artifact.Artifact {
	s, ok := t.CurrentStage()
	if !ok {
		return nil
	}
	return t.ArtifactFor(s.Name())
}

// ApprovedArtifact returns the approved artifact for a stage, or nil
func (t *Task) ApprovedArtifact(stageName string) *artifact.Artifact {
	a := t.ArtifactFor(stageName)
	if a != nil && a.Approval() == model.ApprovalApproved {
		return a
	}
	return nil
}

// LatestUnappliedFeedback returns the newest feedback for a stage that no
// generation has consumed yet, or nil.
func (t *Task) LatestUnappliedFeedback(stageName string) *artifact.FeedbackRecord {
	for i := len(t.feedback) - 1; i >= 0; i-- {
		f := t.feedback[i]
		if f.Stage() == stageName && !f.Applied() {
			return f
		}
	}
	return nil
}

// AttachArtifact stores a freshly generated artifact as the pending artifact
// of the current stage and moves the task to AWAITING_REVIEW. Any unapplied
// feedback for the stage is marked consumed.
func (t *Task) AttachArtifact(content string) (*artifact.Artifact, error) {
	if t.status.IsTerminal() {
		return nil, model.ErrTerminalState
	}

	s, ok := t.CurrentStage()
	if !ok {
		return nil, errors.New("cannot attach artifact: task has no current stage")
	}
	if cur := t.ArtifactFor(s.Name()); cur != nil && cur.IsPending() {
		return nil, fmt.Errorf("stage %s already has a pending artifact", s.Name())
	}

	a, err := artifact.New(t.id, s.Name(), content)
	if err != nil {
		return nil, err
	}
	t.artifacts = append(t.artifacts, a)

	if fb := t.LatestUnappliedFeedback(s.Name()); fb != nil {
		fb.MarkApplied()
	}

	if err := t.setStatus(model.StatusAwaitingReview); err != nil {
		return nil, err
	}
	return a, nil
}

// ApplyDecision applies a reviewer's gate decision to the pending artifact of
// the given stage. On approval the stage cursor advances; advancing past the
// final stage completes the task. On rejection the artifact is marked rejected
// and a feedback record is stored for the retry generation.
//
// A decision that targets anything but the pending artifact of the current
// stage fails with ErrStaleGate and leaves the task unchanged.
func (t *Task) ApplyDecision(stageName string, decision model.Decision, feedbackText string) (*artifact.FeedbackRecord, error) {
	if t.status.IsTerminal() {
		return nil, model.ErrTerminalState
	}
	if !decision.IsValid() {
		return nil, fmt.Errorf("invalid decision: %s", decision)
	}

	s, ok := t.CurrentStage()
	if !ok || s.Name() != stageName {
		return nil, model.ErrStaleGate
	}
	cur := t.ArtifactFor(stageName)
	if cur == nil || !cur.IsPending() {
		return nil, model.ErrStaleGate
	}

	switch decision {
	case model.DecisionApprove:
		if err := cur.Approve(); err != nil {
			return nil, err
		}
		t.stageIndex++
		if t.stageIndex >= stage.Count() {
			return nil, t.setStatus(model.StatusCompleted)
		}
		return nil, t.setStatus(model.StatusRunning)

	case model.DecisionReject:
		if err := cur.Reject(); err != nil {
			return nil, err
		}
		fb := artifact.NewFeedback(t.id, stageName, feedbackText)
		t.feedback = append(t.feedback, fb)
		return fb, t.setStatus(model.StatusRunning)
	}

	return nil, fmt.Errorf("invalid decision: %s", decision)
}

// MarkAwaitingReview returns the task to the reviewable state after a failed
// generation, so the caller can retry the same stage.
func (t *Task) MarkAwaitingReview() error {
	if t.status.IsTerminal() {
		return model.ErrTerminalState
	}
	return t.setStatus(model.StatusAwaitingReview)
}

// Cancel terminates the task from any non-terminal state
func (t *Task) Cancel() error {
	if t.status.IsTerminal() {
		return model.ErrTerminalState
	}
	return t.setStatus(model.StatusCancelled)
}

// MarkFailed permanently fails the task
func (t *Task) MarkFailed() error {
	if t.status.IsTerminal() {
		return model.ErrTerminalState
	}
	return t.setStatus(model.StatusFailed)
}

func (t *Task) setStatus(next model.Status) error {
	if !t.status.CanTransitionTo(next) {
		return fmt.Errorf("invalid status transition from %s to %s", t.status, next)
	}
	t.status = next
	t.updatedAt = model.NewTimestamp()
	return nil
}
