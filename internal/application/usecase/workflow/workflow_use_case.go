package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/devpilot/devpilot/internal/app/logging"
	"github.com/devpilot/devpilot/internal/application/dto"
	"github.com/devpilot/devpilot/internal/application/port/output"
	"github.com/devpilot/devpilot/internal/application/service"
	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/model/task"
	"github.com/devpilot/devpilot/internal/domain/repository"
)

// UseCase is the approval-gated workflow state machine. It sequences stage
// generation, applies gate decisions, persists progress and emits transition
// events to the notifier.
//
// Transitions for one task are serialized through a per-task mutex; the
// long-running agent call itself runs outside that mutex so Cancel can be
// applied while a stage is generating. A generation result that arrives for
// a task that meanwhile reached a terminal state is discarded.
type UseCase struct {
	taskRepo     repository.TaskRepository
	agent        output.AgentGateway
	prompts      *service.PromptBuilder
	notifier     output.Notifier
	archive      output.StorageGateway
	agentTimeout time.Duration

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	inFlight map[string]context.CancelFunc
}

// NewUseCase creates a workflow use case
func NewUseCase(
	taskRepo repository.TaskRepository,
	agent output.AgentGateway,
	prompts *service.PromptBuilder,
	notifier output.Notifier,
	archive output.StorageGateway,
	agentTimeout time.Duration,
) *UseCase {
	if agentTimeout <= 0 {
		agentTimeout = 10 * time.Minute
	}
	return &UseCase{
		taskRepo:     taskRepo,
		agent:        agent,
		prompts:      prompts,
		notifier:     notifier,
		archive:      archive,
		agentTimeout: agentTimeout,
		locks:        make(map[string]*sync.Mutex),
		inFlight:     make(map[string]context.CancelFunc),
	}
}

// Start creates a task at the first stage, generates its first artifact and
// leaves the task awaiting review. When the first generation fails the task
// still exists and is retryable, so its summary is returned together with
// the error.
func (uc *UseCase) Start(ctx context.Context, req dto.StartTaskRequest) (*dto.TaskSummary, error) {
	projectName := strings.TrimSpace(norm.NFC.String(req.ProjectName))
	t, err := task.NewTask(projectName, strings.TrimSpace(req.InitialInput))
	if err != nil {
		return nil, err
	}

	if err := uc.taskRepo.Save(ctx, t); err != nil {
		return nil, err
	}
	uc.emit(ctx, t, "", currentStageName(t))

	if err := uc.generate(ctx, t.ID()); err != nil {
		if summary, stateErr := uc.GetState(ctx, t.ID().String()); stateErr == nil {
			return summary, err
		}
		return nil, err
	}
	return uc.GetState(ctx, t.ID().String())
}

// SubmitReview applies a gate decision to the pending artifact of the given
// stage. On approval the task advances and the next stage is generated; on
// rejection the same stage is regenerated with the reviewer feedback.
//
// ReviewedStage may be empty, in which case the task's current stage is
// assumed; a non-empty value that no longer matches the current stage fails
// with ErrStaleGate.
func (uc *UseCase) SubmitReview(ctx context.Context, taskID string, reviewedStage string, req dto.SubmitReviewRequest) (*dto.TaskSummary, error) {
	id, err := model.NewTaskIDFromString(taskID)
	if err != nil {
		return nil, err
	}
	decision := model.Decision(strings.ToUpper(strings.TrimSpace(req.Decision)))

	lock := uc.lockFor(id)
	lock.Lock()

	t, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	fromStage := currentStageName(t)
	targetStage := reviewedStage
	if targetStage == "" {
		targetStage = fromStage
	}

	if _, err := t.ApplyDecision(targetStage, decision, strings.TrimSpace(req.Feedback)); err != nil {
		lock.Unlock()
		return nil, err
	}
	if err := uc.taskRepo.Save(ctx, t); err != nil {
		lock.Unlock()
		return nil, err
	}

	completed := t.Status() == model.StatusCompleted
	uc.emit(ctx, t, fromStage, currentStageName(t))
	lock.Unlock()

	if completed {
		uc.archiveArtifacts(ctx, t)
		return uc.GetState(ctx, id.String())
	}

	// Approve generates the next stage; reject regenerates the same stage
	// with the stored feedback appended to its prompt.
	if err := uc.generate(ctx, id); err != nil {
		return nil, err
	}
	return uc.GetState(ctx, id.String())
}

// Retry regenerates the current stage after a generation failure. It fails
// with ErrStaleGate when the current stage already has a pending artifact.
func (uc *UseCase) Retry(ctx context.Context, taskID string) (*dto.TaskSummary, error) {
	id, err := model.NewTaskIDFromString(taskID)
	if err != nil {
		return nil, err
	}

	lock := uc.lockFor(id)
	lock.Lock()
	t, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	if t.Status().IsTerminal() {
		lock.Unlock()
		return nil, model.ErrTerminalState
	}
	if a := t.CurrentArtifact(); a != nil && a.IsPending() {
		lock.Unlock()
		return nil, model.ErrStaleGate
	}
	lock.Unlock()

	if err := uc.generate(ctx, id); err != nil {
		return nil, err
	}
	return uc.GetState(ctx, id.String())
}

// Cancel terminates a task. A stage generation that is in flight for the
// task is aborted and its eventual result discarded.
func (uc *UseCase) Cancel(ctx context.Context, taskID string) (*dto.TaskSummary, error) {
	id, err := model.NewTaskIDFromString(taskID)
	if err != nil {
		return nil, err
	}

	lock := uc.lockFor(id)
	lock.Lock()
	t, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	fromStage := currentStageName(t)
	if err := t.Cancel(); err != nil {
		lock.Unlock()
		return nil, err
	}
	if err := uc.taskRepo.Save(ctx, t); err != nil {
		lock.Unlock()
		return nil, err
	}
	uc.emit(ctx, t, fromStage, fromStage)
	lock.Unlock()

	uc.abortInFlight(id)

	return uc.toSummary(t), nil
}

// GetState returns the caller-facing view of a task
func (uc *UseCase) GetState(ctx context.Context, taskID string) (*dto.TaskSummary, error) {
	id, err := model.NewTaskIDFromString(taskID)
	if err != nil {
		return nil, err
	}
	t, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.toSummary(t), nil
}

// GetArtifact returns the current artifact of the given stage
func (uc *UseCase) GetArtifact(ctx context.Context, taskID string, stageName string) (*dto.ArtifactSummary, error) {
	id, err := model.NewTaskIDFromString(taskID)
	if err != nil {
		return nil, err
	}
	t, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a := t.ArtifactFor(stageName)
	if a == nil {
		return nil, model.ErrNotFound
	}
	return &dto.ArtifactSummary{
		ID:         a.ID(),
		Stage:      a.Stage(),
		Content:    a.Content(),
		Approval:   a.Approval().String(),
		ProducedAt: a.ProducedAt().Value(),
	}, nil
}

// List returns summaries of tasks matching the filter, newest first
func (uc *UseCase) List(ctx context.Context, filter repository.TaskFilter) ([]*dto.TaskSummary, error) {
	tasks, err := uc.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	summaries := make([]*dto.TaskSummary, 0, len(tasks))
	for _, t := range tasks {
		summaries = append(summaries, uc.toSummary(t))
	}
	return summaries, nil
}

// HealthCheck verifies the generation backend is reachable
func (uc *UseCase) HealthCheck(ctx context.Context) error {
	return uc.agent.HealthCheck(ctx)
}

// generate runs the agent for the task's current stage and attaches the
// result as a pending artifact. The agent call runs outside the per-task
// lock; the task is reloaded afterwards and the result is discarded if the
// task reached a terminal state in the meantime.
func (uc *UseCase) generate(ctx context.Context, id model.TaskID) error {
	lock := uc.lockFor(id)
	lock.Lock()

	// At most one agent invocation per task; the in-flight one owns the stage.
	if uc.isInFlight(id) {
		lock.Unlock()
		return model.ErrStaleGate
	}

	t, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		lock.Unlock()
		return err
	}
	if t.Status().IsTerminal() {
		lock.Unlock()
		return nil
	}
	st, ok := t.CurrentStage()
	if !ok {
		lock.Unlock()
		return nil
	}
	if a := t.ArtifactFor(st.Name()); a != nil && a.IsPending() {
		lock.Unlock()
		return nil
	}

	feedback := t.LatestUnappliedFeedback(st.Name())
	prompt, err := uc.prompts.BuildPrompt(t, st, feedback)
	if err != nil {
		var invalid *model.InvalidStageInputError
		if errors.As(err, &invalid) {
			// Invariant violation: permanently fail the task.
			fromStage := st.Name()
			if ferr := t.MarkFailed(); ferr == nil {
				if serr := uc.taskRepo.Save(ctx, t); serr != nil {
					logging.Error("save failed task %s: %v", id, serr)
				}
				uc.emit(ctx, t, fromStage, fromStage)
			}
		}
		lock.Unlock()
		return err
	}

	genCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.agentTimeout)
	uc.registerInFlight(id, cancel)
	lock.Unlock()

	resp, execErr := uc.agent.Execute(genCtx, output.AgentRequest{
		Prompt:  prompt,
		Timeout: uc.agentTimeout,
		Metadata: map[string]string{
			"task_id": id.String(),
			"stage":   st.Name(),
		},
	})
	lock.Lock()
	defer lock.Unlock()
	uc.clearInFlight(id)
	cancel()

	// The caller may have disconnected during the agent call; the result
	// must still be persisted.
	saveCtx := context.WithoutCancel(ctx)

	t, err = uc.taskRepo.FindByID(saveCtx, id)
	if err != nil {
		return err
	}
	if t.Status().IsTerminal() {
		logging.Info("task %s reached %s during generation; discarding result", id, t.Status())
		return nil
	}

	if execErr != nil {
		// Retryable: the task stays reviewable at the same stage with no
		// new artifact.
		if err := t.MarkAwaitingReview(); err != nil {
			return err
		}
		if err := uc.taskRepo.Save(saveCtx, t); err != nil {
			return err
		}
		return &model.GenerationError{Stage: st.Name(), Err: execErr}
	}

	if _, err := t.AttachArtifact(resp.Output); err != nil {
		return err
	}
	if err := uc.taskRepo.Save(saveCtx, t); err != nil {
		return err
	}
	logging.Debug("task %s: stage %s artifact generated by %s in %s", id, st.Name(), resp.AgentType, resp.Duration)
	return nil
}

// archiveArtifacts exports the approved artifacts of a completed task.
// Archive failures are logged and never fail the workflow.
func (uc *UseCase) archiveArtifacts(ctx context.Context, t *task.Task) {
	if uc.archive == nil {
		return
	}
	for _, a := range t.Artifacts() {
		if a.Approval() != model.ApprovalApproved {
			continue
		}
		_, err := uc.archive.SaveArtifact(ctx, output.SaveArtifactRequest{
			TaskID:      t.ID().String(),
			Stage:       a.Stage(),
			Content:     []byte(a.Content()),
			ContentType: "text/markdown",
			Metadata:    map[string]string{"project": t.ProjectName()},
		})
		if err != nil {
			logging.Warn("archive artifact %s/%s: %v", t.ID(), a.Stage(), err)
		}
	}
}

func (uc *UseCase) emit(ctx context.Context, t *task.Task, fromStage, toStage string) {
	if uc.notifier == nil {
		return
	}
	uc.notifier.Notify(ctx, output.TransitionEvent{
		EventID:     uuid.New().String(),
		TaskID:      t.ID().String(),
		ProjectName: t.ProjectName(),
		FromStage:   fromStage,
		ToStage:     toStage,
		Status:      t.Status().String(),
		OccurredAt:  time.Now(),
	})
}

func (uc *UseCase) toSummary(t *task.Task) *dto.TaskSummary {
	summary := &dto.TaskSummary{
		TaskID:      t.ID().String(),
		ProjectName: t.ProjectName(),
		Status:      t.Status().String(),
		StageIndex:  t.StageIndex(),
		CreatedAt:   t.CreatedAt().Value(),
		UpdatedAt:   t.UpdatedAt().Value(),
	}
	if s, ok := t.CurrentStage(); ok {
		summary.CurrentStage = s.Name()
	}
	if a := t.CurrentArtifact(); a != nil {
		summary.CurrentArtifact = &dto.ArtifactSummary{
			ID:         a.ID(),
			Stage:      a.Stage(),
			Content:    a.Content(),
			Approval:   a.Approval().String(),
			ProducedAt: a.ProducedAt().Value(),
		}
	}
	return summary
}

func (uc *UseCase) lockFor(id model.TaskID) *sync.Mutex {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	lock, ok := uc.locks[id.String()]
	if !ok {
		lock = &sync.Mutex{}
		uc.locks[id.String()] = lock
	}
	return lock
}

func (uc *UseCase) isInFlight(id model.TaskID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	_, ok := uc.inFlight[id.String()]
	return ok
}

func (uc *UseCase) registerInFlight(id model.TaskID, cancel context.CancelFunc) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.inFlight[id.String()] = cancel
}

func (uc *UseCase) clearInFlight(id model.TaskID) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, id.String())
}

func (uc *UseCase) abortInFlight(id model.TaskID) {
	uc.mu.Lock()
	cancel, ok := uc.inFlight[id.String()]
	delete(uc.inFlight, id.String())
	uc.mu.Unlock()
	if ok {
		cancel()
	}
}

func currentStageName(t *task.Task) string {
	if s, ok := t.CurrentStage(); ok {
		return s.Name()
	}
	return ""
}
