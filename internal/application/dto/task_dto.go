package dto

import "time"

// StartTaskRequest starts a new workflow run
type StartTaskRequest struct {
	ProjectName  string `json:"project_name"`
	InitialInput string `json:"initial_input"`
}

// SubmitReviewRequest carries a gate decision for the current stage
type SubmitReviewRequest struct {
	Decision string `json:"decision"` // "APPROVE" or "REJECT"
	Feedback string `json:"feedback,omitempty"`
}

// TaskSummary is the caller-facing view of a task
type TaskSummary struct {
	TaskID          string           `json:"task_id"`
	ProjectName     string           `json:"project_name"`
	Status          string           `json:"status"`
	StageIndex      int              `json:"stage_index"`
	CurrentStage    string           `json:"current_stage,omitempty"`
	CurrentArtifact *ArtifactSummary `json:"current_artifact,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ArtifactSummary is the caller-facing view of one artifact
type ArtifactSummary struct {
	ID         string    `json:"id"`
	Stage      string    `json:"stage"`
	Content    string    `json:"content"`
	Approval   string    `json:"approval"`
	ProducedAt time.Time `json:"produced_at"`
}
