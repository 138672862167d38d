package model

import (
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
)

// TaskID represents a unique identifier for a workflow task
type TaskID struct {
	value string
}

// NewTaskID creates a new TaskID
func NewTaskID() TaskID {
	return TaskID{value: ulid.Make().String()}
}

// NewTaskIDFromString creates a TaskID from an existing string
func NewTaskIDFromString(id string) (TaskID, error) {
	if id == "" {
		return TaskID{}, errors.New("task ID cannot be empty")
	}
	return TaskID{value: id}, nil
}

// String returns the string representation
func (t TaskID) String() string {
	return t.value
}

// Equals checks if two TaskIDs are equal
func (t TaskID) Equals(other TaskID) bool {
	return t.value == other.value
}

// Status represents the lifecycle status of a task
type Status string

const (
	StatusRunning        Status = "RUNNING"
	StatusAwaitingReview Status = "AWAITING_REVIEW"
	StatusCompleted      Status = "COMPLETED"
	StatusFailed         Status = "FAILED"
	StatusCancelled      Status = "CANCELLED"
)

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsValid validates the status
func (s Status) IsValid() bool {
	switch s {
	case StatusRunning, StatusAwaitingReview, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are accepted
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s Status) CanTransitionTo(next Status) bool {
	validTransitions := map[Status][]Status{
		StatusRunning:        {StatusAwaitingReview, StatusCompleted, StatusFailed, StatusCancelled},
		StatusAwaitingReview: {StatusRunning, StatusAwaitingReview, StatusCompleted, StatusFailed, StatusCancelled},
		StatusCompleted:      {},
		StatusFailed:         {},
		StatusCancelled:      {},
	}

	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}

	for _, allowedStatus := range allowed {
		if allowedStatus == next {
			return true
		}
	}
	return false
}

// ApprovalStatus represents the review state of an artifact
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// String returns the string representation
func (a ApprovalStatus) String() string {
	return string(a)
}

// IsValid validates the approval status
func (a ApprovalStatus) IsValid() bool {
	switch a {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	default:
		return false
	}
}

// Decision represents a reviewer's gate decision
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// String returns the string representation
func (d Decision) String() string {
	return string(d)
}

// IsValid validates the decision
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Timestamp represents a point in time
type Timestamp struct {
	value time.Time
}

// NewTimestamp creates a new Timestamp with current time
func NewTimestamp() Timestamp {
	return Timestamp{value: time.Now()}
}

// NewTimestampFromTime creates a Timestamp from a time.Time value
func NewTimestampFromTime(t time.Time) Timestamp {
	return Timestamp{value: t}
}

// Value returns the time.Time value
func (t Timestamp) Value() time.Time {
	return t.value
}

// Before checks if this timestamp is before another
func (t Timestamp) Before(other Timestamp) bool {
	return t.value.Before(other.value)
}

// String returns the string representation
func (t Timestamp) String() string {
	return t.value.Format(time.RFC3339)
}
