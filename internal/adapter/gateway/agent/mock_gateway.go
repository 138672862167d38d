package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/devpilot/devpilot/internal/application/port/output"
)

// MockGateway implements AgentGateway with deterministic canned output.
// It is used for demos without an AI backend and throughout the tests.
type MockGateway struct {
	mu       sync.Mutex
	delay    time.Duration
	failNext error
	calls    []output.AgentRequest
}

// NewMockGateway creates a mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// SetDelay makes Execute block for the given duration (cancellable)
func (g *MockGateway) SetDelay(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delay = d
}

// FailNext makes the next Execute call return the given error
func (g *MockGateway) FailNext(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNext = err
}

// Calls returns all requests received so far
func (g *MockGateway) Calls() []output.AgentRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]output.AgentRequest, len(g.calls))
	copy(out, g.calls)
	return out
}

// Execute returns deterministic content derived from the request. Reviewer
// feedback present in the prompt is echoed so retry output observably
// incorporates it.
func (g *MockGateway) Execute(ctx context.Context, req output.AgentRequest) (*output.AgentResponse, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	failErr := g.failNext
	g.failNext = nil
	delay := g.delay
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failErr != nil {
		return nil, failErr
	}

	start := time.Now()
	stage := req.Metadata["stage"]
	var sb strings.Builder
	fmt.Fprintf(&sb, "[mock %s output]\n", stage)
	if idx := strings.Index(req.Prompt, "## Reviewer Feedback"); idx >= 0 {
		fmt.Fprintf(&sb, "revised per feedback:\n%s", req.Prompt[idx:])
	}

	return &output.AgentResponse{
		Output:    sb.String(),
		Duration:  time.Since(start),
		AgentType: "mock",
		Metadata:  req.Metadata,
	}, nil
}

// HealthCheck always succeeds
func (g *MockGateway) HealthCheck(ctx context.Context) error {
	return nil
}
