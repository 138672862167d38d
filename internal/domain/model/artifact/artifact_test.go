package artifact

import (
	"errors"
	"testing"

	"github.com/devpilot/devpilot/internal/domain/model"
)

func TestNew(t *testing.T) {
	taskID := model.NewTaskID()

	a, err := New(taskID, "requirements", "# Requirements")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.ID() == "" {
		t.Error("artifact must get an ID")
	}
	if !a.IsPending() {
		t.Error("new artifact must start pending")
	}
	if a.ResolvedAt() != nil {
		t.Error("pending artifact must have no resolution time")
	}

	if _, err := New(taskID, "", "content"); err == nil {
		t.Error("empty stage must be rejected")
	}
}

func TestArtifact_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		resolve func(a *Artifact) error
	}{
		{"approve", func(a *Artifact) error { return a.Approve() }},
		{"reject", func(a *Artifact) error { return a.Reject() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(model.NewTaskID(), "design", "content")
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if err := tt.resolve(a); err != nil {
				t.Fatalf("first resolution error = %v", err)
			}
			if a.IsPending() {
				t.Error("resolved artifact must not be pending")
			}
			if a.ResolvedAt() == nil {
				t.Error("resolved artifact must record a resolution time")
			}

			// the gate is single-shot
			if err := tt.resolve(a); !errors.Is(err, model.ErrStaleGate) {
				t.Errorf("second resolution error = %v, want ErrStaleGate", err)
			}
			if err := a.Approve(); !errors.Is(err, model.ErrStaleGate) {
				t.Errorf("approve after resolution error = %v, want ErrStaleGate", err)
			}
		})
	}
}

func TestFeedbackRecord_MarkApplied(t *testing.T) {
	fb := NewFeedback(model.NewTaskID(), "code", "add error handling")
	if fb.Applied() {
		t.Error("new feedback must start unapplied")
	}
	fb.MarkApplied()
	if !fb.Applied() {
		t.Error("feedback must report applied after MarkApplied")
	}
}
