package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/unicode/norm"

	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/model/artifact"
	"github.com/devpilot/devpilot/internal/domain/model/stage"
	"github.com/devpilot/devpilot/internal/domain/model/task"
)

// PromptBuilder assembles the generation prompt for one stage from the
// task's accumulated context: project name, initial input, prior approved
// artifacts in stage order, and pending reviewer feedback for retries.
//
// Templates can be overridden per stage by placing <promptID>.md in the
// template directory; otherwise built-in defaults are used.
type PromptBuilder struct {
	fs          afero.Fs
	templateDir string
}

// NewPromptBuilder creates a prompt builder with optional template overrides
func NewPromptBuilder(fs afero.Fs, templateDir string) *PromptBuilder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &PromptBuilder{fs: fs, templateDir: templateDir}
}

var defaultTemplates = map[string]string{
	stage.Requirements:   "Analyze the project description above and produce a structured list of functional and non-functional requirements.",
	stage.UserStories:    "Based on the approved requirements, write user stories with acceptance criteria in the format: As a <role>, I want <goal>, so that <benefit>.",
	stage.Design:         "Based on the approved requirements and user stories, produce a technical design document covering architecture, components, data model and interfaces.",
	stage.Code:           "Implement the system described by the approved design document. Produce complete, runnable code with brief usage notes.",
	stage.SecurityReview: "Review the generated code for security issues. Report findings by severity and recommend concrete fixes.",
	stage.TestCases:      "Write test cases covering the approved requirements and the generated code, including edge cases and failure paths.",
	stage.Deployment:     "Produce a deployment plan and checklist for the system: environments, steps, rollback strategy and operational concerns.",
}

// BuildPrompt assembles the prompt for generating the given stage of a task.
// It returns an InvalidStageInputError if any prior stage lacks an approved
// artifact.
func (b *PromptBuilder) BuildPrompt(t *task.Task, s stage.Stage, feedback *artifact.FeedbackRecord) (string, error) {
	prior, err := b.priorArtifacts(t, s)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Project: %s\n\n", norm.NFC.String(t.ProjectName()))
	if input := strings.TrimSpace(t.InitialInput()); input != "" {
		fmt.Fprintf(&sb, "## Project Description\n\n%s\n\n", input)
	}

	for _, a := range prior {
		fmt.Fprintf(&sb, "## Approved %s\n\n%s\n\n", displayName(a.Stage()), a.Content())
	}

	instruction, err := b.template(s)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&sb, "## Task: %s\n\n%s\n", displayName(s.Name()), instruction)

	if feedback != nil && strings.TrimSpace(feedback.Content()) != "" {
		fmt.Fprintf(&sb, "\n## Reviewer Feedback\n\nA previous version of this output was rejected. Address the following feedback:\n\n%s\n",
			norm.NFC.String(feedback.Content()))
	}

	return sb.String(), nil
}

// priorArtifacts collects the approved artifacts of all stages before s,
// in stage order.
func (b *PromptBuilder) priorArtifacts(t *task.Task, s stage.Stage) ([]*artifact.Artifact, error) {
	var prior []*artifact.Artifact
	for _, p := range stage.Pipeline() {
		if p.Position() >= s.Position() {
			break
		}
		a := t.ApprovedArtifact(p.Name())
		if a == nil {
			return nil, &model.InvalidStageInputError{Stage: s.Name(), Missing: p.Name()}
		}
		prior = append(prior, a)
	}
	return prior, nil
}

func (b *PromptBuilder) template(s stage.Stage) (string, error) {
	if b.templateDir != "" {
		path := filepath.Join(b.templateDir, s.PromptID()+".md")
		if exists, _ := afero.Exists(b.fs, path); exists {
			data, err := afero.ReadFile(b.fs, path)
			if err != nil {
				return "", fmt.Errorf("read prompt template %s: %w", path, err)
			}
			return string(data), nil
		}
	}
	tmpl, ok := defaultTemplates[s.PromptID()]
	if !ok {
		return "", fmt.Errorf("no prompt template for stage %s", s.Name())
	}
	return tmpl, nil
}

func displayName(stageName string) string {
	return strings.ReplaceAll(stageName, "_", " ")
}
