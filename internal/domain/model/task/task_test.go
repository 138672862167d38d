package task

import (
	"errors"
	"testing"

	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/model/stage"
)

func TestNewTask(t *testing.T) {
	tests := []struct {
		name        string
		projectName string
		wantErr     bool
	}{
		{"valid", "Alpha", false},
		{"empty project name", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, err := NewTask(tt.projectName, "a todo app")
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTask() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tk.Status() != model.StatusRunning {
				t.Errorf("new task status = %s, want RUNNING", tk.Status())
			}
			s, ok := tk.CurrentStage()
			if !ok || s.Name() != stage.Requirements {
				t.Errorf("new task stage = %v, want requirements", s.Name())
			}
		})
	}
}

func TestTask_AttachArtifact(t *testing.T) {
	tk, err := NewTask("Alpha", "a todo app")
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}

	a, err := tk.AttachArtifact("# Requirements")
	if err != nil {
		t.Fatalf("AttachArtifact() error = %v", err)
	}
	if a.Stage() != stage.Requirements {
		t.Errorf("artifact stage = %s, want requirements", a.Stage())
	}
	if tk.Status() != model.StatusAwaitingReview {
		t.Errorf("status after attach = %s, want AWAITING_REVIEW", tk.Status())
	}

	// one pending artifact per stage
	if _, err := tk.AttachArtifact("duplicate"); err == nil {
		t.Error("second pending artifact for the same stage must be rejected")
	}
}

func TestTask_AttachArtifact_ConsumesFeedback(t *testing.T) {
	tk := mustTaskAwaitingReview(t)

	if _, err := tk.ApplyDecision(stage.Requirements, model.DecisionReject, "too vague"); err != nil {
		t.Fatalf("ApplyDecision(reject) error = %v", err)
	}
	fb := tk.LatestUnappliedFeedback(stage.Requirements)
	if fb == nil {
		t.Fatal("rejection must leave unapplied feedback")
	}

	if _, err := tk.AttachArtifact("# Requirements v2"); err != nil {
		t.Fatalf("AttachArtifact() error = %v", err)
	}
	if !fb.Applied() {
		t.Error("attaching a new artifact must consume the feedback")
	}
	if tk.LatestUnappliedFeedback(stage.Requirements) != nil {
		t.Error("no unapplied feedback should remain after regeneration")
	}
}

func TestTask_ApplyDecision_Approve(t *testing.T) {
	tk := mustTaskAwaitingReview(t)

	if _, err := tk.ApplyDecision(stage.Requirements, model.DecisionApprove, ""); err != nil {
		t.Fatalf("ApplyDecision(approve) error = %v", err)
	}
	if tk.Status() != model.StatusRunning {
		t.Errorf("status after approve = %s, want RUNNING", tk.Status())
	}
	s, ok := tk.CurrentStage()
	if !ok || s.Name() != stage.UserStories {
		t.Errorf("stage after approve = %s, want user_stories", s.Name())
	}
	if tk.ApprovedArtifact(stage.Requirements) == nil {
		t.Error("approved stage must keep its approved artifact")
	}
}

func TestTask_ApplyDecision_Reject(t *testing.T) {
	tk := mustTaskAwaitingReview(t)

	fb, err := tk.ApplyDecision(stage.Requirements, model.DecisionReject, "add auth requirements")
	if err != nil {
		t.Fatalf("ApplyDecision(reject) error = %v", err)
	}
	if fb == nil || fb.Content() != "add auth requirements" {
		t.Fatal("rejection must return the recorded feedback")
	}

	// stage cursor does not move on rejection
	s, ok := tk.CurrentStage()
	if !ok || s.Name() != stage.Requirements {
		t.Errorf("stage after reject = %s, want requirements", s.Name())
	}
	a := tk.ArtifactFor(stage.Requirements)
	if a == nil || a.Approval() != model.ApprovalRejected {
		t.Error("rejected artifact must be retained with REJECTED approval")
	}
}

func TestTask_ApplyDecision_StaleGate(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) *Task
		stage string
	}{
		{
			"no pending artifact",
			func(t *testing.T) *Task {
				tk, err := NewTask("Alpha", "input")
				if err != nil {
					t.Fatal(err)
				}
				return tk
			},
			stage.Requirements,
		},
		{
			"wrong stage",
			func(t *testing.T) *Task { return mustTaskAwaitingReview(t) },
			stage.Design,
		},
		{
			"already resolved",
			func(t *testing.T) *Task {
				tk := mustTaskAwaitingReview(t)
				if _, err := tk.ApplyDecision(stage.Requirements, model.DecisionApprove, ""); err != nil {
					t.Fatal(err)
				}
				return tk
			},
			stage.Requirements,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := tt.setup(t)
			before := tk.Status()
			_, err := tk.ApplyDecision(tt.stage, model.DecisionApprove, "")
			if !errors.Is(err, model.ErrStaleGate) {
				t.Fatalf("ApplyDecision() error = %v, want ErrStaleGate", err)
			}
			if tk.Status() != before {
				t.Errorf("stale decision must not change status (got %s)", tk.Status())
			}
		})
	}
}

func TestTask_CompletesAfterFinalApproval(t *testing.T) {
	tk, err := NewTask("Alpha", "a todo app")
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}

	for _, s := range stage.Pipeline() {
		if _, err := tk.AttachArtifact("# " + s.Name()); err != nil {
			t.Fatalf("AttachArtifact(%s) error = %v", s.Name(), err)
		}
		if _, err := tk.ApplyDecision(s.Name(), model.DecisionApprove, ""); err != nil {
			t.Fatalf("ApplyDecision(%s) error = %v", s.Name(), err)
		}
	}

	if tk.Status() != model.StatusCompleted {
		t.Errorf("status after final approval = %s, want COMPLETED", tk.Status())
	}
	if _, ok := tk.CurrentStage(); ok {
		t.Error("completed task must have no current stage")
	}
	if len(tk.Artifacts()) != stage.Count() {
		t.Errorf("artifact count = %d, want %d", len(tk.Artifacts()), stage.Count())
	}
}

func TestTask_TerminalStatesRejectMutation(t *testing.T) {
	tk := mustTaskAwaitingReview(t)
	if err := tk.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if tk.Status() != model.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", tk.Status())
	}

	if _, err := tk.AttachArtifact("late result"); !errors.Is(err, model.ErrTerminalState) {
		t.Errorf("AttachArtifact() error = %v, want ErrTerminalState", err)
	}
	if _, err := tk.ApplyDecision(stage.Requirements, model.DecisionApprove, ""); !errors.Is(err, model.ErrTerminalState) {
		t.Errorf("ApplyDecision() error = %v, want ErrTerminalState", err)
	}
	if err := tk.Cancel(); !errors.Is(err, model.ErrTerminalState) {
		t.Errorf("second Cancel() error = %v, want ErrTerminalState", err)
	}
	if err := tk.MarkFailed(); !errors.Is(err, model.ErrTerminalState) {
		t.Errorf("MarkFailed() error = %v, want ErrTerminalState", err)
	}
}

func TestReconstruct(t *testing.T) {
	tests := []struct {
		name       string
		stageIndex int
		wantErr    bool
	}{
		{"first stage", 0, false},
		{"past final stage", stage.Count(), false},
		{"negative", -1, true},
		{"out of range", stage.Count() + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk, err := NewTask("Alpha", "input")
			if err != nil {
				t.Fatal(err)
			}
			_, err = Reconstruct(
				tk.ID(), "Alpha", "input", model.StatusRunning,
				tt.stageIndex, nil, nil,
				tk.CreatedAt().Value(), tk.UpdatedAt().Value(),
			)
			if (err != nil) != tt.wantErr {
				t.Errorf("Reconstruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func mustTaskAwaitingReview(t *testing.T) *Task {
	t.Helper()
	tk, err := NewTask("Alpha", "a todo app")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tk.AttachArtifact("# Requirements"); err != nil {
		t.Fatal(err)
	}
	return tk
}
