package stage

import "fmt"

// Stage is one ordered step of the lifecycle workflow.
// Definitions are immutable; the pipeline order is fixed at compile time.
type Stage struct {
	name     string
	position int
	promptID string
}

// Name returns the stage name
func (s Stage) Name() string {
	return s.name
}

// Position returns the zero-based position in the pipeline
func (s Stage) Position() int {
	return s.position
}

// PromptID returns the identifier of the prompt template this stage invokes
func (s Stage) PromptID() string {
	return s.promptID
}

// IsLast reports whether this is the final pipeline stage
func (s Stage) IsLast() bool {
	return s.position == len(pipeline)-1
}

// Stage names, in pipeline order.
const (
	Requirements   = "requirements"
	UserStories    = "user_stories"
	Design         = "design"
	Code           = "code"
	SecurityReview = "security_review"
	TestCases      = "test_cases"
	Deployment     = "deployment"
)

var pipeline = []Stage{
	{name: Requirements, position: 0, promptID: "requirements"},
	{name: UserStories, position: 1, promptID: "user_stories"},
	{name: Design, position: 2, promptID: "design"},
	{name: Code, position: 3, promptID: "code"},
	{name: SecurityReview, position: 4, promptID: "security_review"},
	{name: TestCases, position: 5, promptID: "test_cases"},
	{name: Deployment, position: 6, promptID: "deployment"},
}

// Pipeline returns the ordered stage definitions
func Pipeline() []Stage {
	out := make([]Stage, len(pipeline))
	copy(out, pipeline)
	return out
}

// Count returns the number of stages in the pipeline
func Count() int {
	return len(pipeline)
}

// First returns the first pipeline stage
func First() Stage {
	return pipeline[0]
}

// ByPosition returns the stage at the given position
func ByPosition(pos int) (Stage, error) {
	if pos < 0 || pos >= len(pipeline) {
		return Stage{}, fmt.Errorf("stage position out of range: %d", pos)
	}
	return pipeline[pos], nil
}

// ByName returns the stage with the given name
func ByName(name string) (Stage, error) {
	for _, s := range pipeline {
		if s.name == name {
			return s, nil
		}
	}
	return Stage{}, fmt.Errorf("unknown stage: %s", name)
}
