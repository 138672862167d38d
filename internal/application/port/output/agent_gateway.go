package output

import (
	"context"
	"time"
)

// AgentGateway is the interface for the external content-generation
// capability. This abstraction allows different AI backends (Claude CLI,
// mock) to drive stage generation.
type AgentGateway interface {
	// Execute runs the agent with the given request
	Execute(ctx context.Context, req AgentRequest) (*AgentResponse, error)

	// HealthCheck verifies if the agent is available
	HealthCheck(ctx context.Context) error
}

// AgentRequest represents one generation request
type AgentRequest struct {
	Prompt   string            // Assembled stage prompt
	Timeout  time.Duration     // Execution timeout
	Metadata map[string]string // Additional context (task id, stage, ...)
}

// AgentResponse represents the agent's output
type AgentResponse struct {
	Output    string            // Generated content
	Duration  time.Duration     // Execution duration
	AgentType string            // Backend identifier (claude-code, mock)
	Metadata  map[string]string // Additional metadata
}
