package artifact

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/devpilot/devpilot/internal/domain/model"
)

// Artifact is the generated output of one stage for one task.
// A rejected artifact is retained for audit and superseded by a new
// pending artifact for the same stage.
type Artifact struct {
	id         string
	taskID     model.TaskID
	stage      string
	content    string
	approval   model.ApprovalStatus
	producedAt model.Timestamp
	resolvedAt *model.Timestamp
}

// New creates a pending artifact for a stage
func New(taskID model.TaskID, stage string, content string) (*Artifact, error) {
	if stage == "" {
		return nil, errors.New("stage cannot be empty")
	}
	return &Artifact{
		id:         uuid.New().String(),
		taskID:     taskID,
		stage:      stage,
		content:    content,
		approval:   model.ApprovalPending,
		producedAt: model.NewTimestamp(),
	}, nil
}

// Reconstruct rebuilds an artifact from stored data
func Reconstruct(
	id string,
	taskID model.TaskID,
	stage string,
	content string,
	approval model.ApprovalStatus,
	producedAt time.Time,
	resolvedAt *time.Time,
) *Artifact {
	a := &Artifact{
		id:         id,
		taskID:     taskID,
		stage:      stage,
		content:    content,
		approval:   approval,
		producedAt: model.NewTimestampFromTime(producedAt),
	}
	if resolvedAt != nil {
		ts := model.NewTimestampFromTime(*resolvedAt)
		a.resolvedAt = &ts
	}
	return a
}

// ID returns the artifact ID
func (a *Artifact) ID() string {
	return a.id
}

// TaskID returns the owning task ID
func (a *Artifact) TaskID() model.TaskID {
	return a.taskID
}

// Stage returns the stage name this artifact belongs to
func (a *Artifact) Stage() string {
	return a.stage
}

// Content returns the generated content
func (a *Artifact) Content() string {
	return a.content
}

// Approval returns the current approval status
func (a *Artifact) Approval() model.ApprovalStatus {
	return a.approval
}

// ProducedAt returns the production timestamp
func (a *Artifact) ProducedAt() model.Timestamp {
	return a.producedAt
}

// ResolvedAt returns when the artifact was approved or rejected (nil if pending)
func (a *Artifact) ResolvedAt() *model.Timestamp {
	return a.resolvedAt
}

// IsPending reports whether the artifact still awaits review
func (a *Artifact) IsPending() bool {
	return a.approval == model.ApprovalPending
}

// Approve transitions pending -> approved
func (a *Artifact) Approve() error {
	return a.resolve(model.ApprovalApproved)
}

// Reject transitions pending -> rejected
func (a *Artifact) Reject() error {
	return a.resolve(model.ApprovalRejected)
}

func (a *Artifact) resolve(to model.ApprovalStatus) error {
	if a.approval != model.ApprovalPending {
		return model.ErrStaleGate
	}
	now := model.NewTimestamp()
	a.approval = to
	a.resolvedAt = &now
	return nil
}
