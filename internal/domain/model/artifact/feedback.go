package artifact

import (
	"time"

	"github.com/google/uuid"

	"github.com/devpilot/devpilot/internal/domain/model"
)

// FeedbackRecord is reviewer input attached to a rejection. It is consumed
// by the next generation of the same stage and then kept for audit; it is
// never applied to a second generation.
type FeedbackRecord struct {
	id        string
	taskID    model.TaskID
	stage     string
	content   string
	applied   bool
	createdAt model.Timestamp
}

// NewFeedback creates a feedback record for a rejected stage
func NewFeedback(taskID model.TaskID, stage string, content string) *FeedbackRecord {
	return &FeedbackRecord{
		id:        uuid.New().String(),
		taskID:    taskID,
		stage:     stage,
		content:   content,
		createdAt: model.NewTimestamp(),
	}
}

// ReconstructFeedback rebuilds a feedback record from stored data
func ReconstructFeedback(
	id string,
	taskID model.TaskID,
	stage string,
	content string,
	applied bool,
	createdAt time.Time,
) *FeedbackRecord {
	return &FeedbackRecord{
		id:        id,
		taskID:    taskID,
		stage:     stage,
		content:   content,
		applied:   applied,
		createdAt: model.NewTimestampFromTime(createdAt),
	}
}

// ID returns the feedback ID
func (f *FeedbackRecord) ID() string {
	return f.id
}

// TaskID returns the owning task ID
func (f *FeedbackRecord) TaskID() model.TaskID {
	return f.taskID
}

// Stage returns the stage this feedback targets
func (f *FeedbackRecord) Stage() string {
	return f.stage
}

// Content returns the free-text feedback
func (f *FeedbackRecord) Content() string {
	return f.content
}

// Applied reports whether a generation has already consumed this feedback
func (f *FeedbackRecord) Applied() bool {
	return f.applied
}

// MarkApplied records that a generation consumed this feedback
func (f *FeedbackRecord) MarkApplied() {
	f.applied = true
}

// CreatedAt returns the creation timestamp
func (f *FeedbackRecord) CreatedAt() model.Timestamp {
	return f.createdAt
}
