package model

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates an unknown task ID.
var ErrNotFound = errors.New("task not found")

// ErrStaleGate indicates a gate decision that targets an artifact which has
// already been resolved or superseded. The task is left untouched.
var ErrStaleGate = errors.New("stale gate: artifact already resolved or superseded")

// ErrTerminalState indicates an operation on a completed, failed or cancelled task.
var ErrTerminalState = errors.New("task is in a terminal state")

// GenerationError wraps a failure of the external generation capability.
// It is retryable: the task stays reviewable at the same stage.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at stage %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// InvalidStageInputError indicates a missing prerequisite artifact.
// It signals a state machine bug and permanently fails the task.
type InvalidStageInputError struct {
	Stage   string
	Missing string
}

func (e *InvalidStageInputError) Error() string {
	return fmt.Sprintf("invalid input for stage %s: missing approved artifact for %s", e.Stage, e.Missing)
}
