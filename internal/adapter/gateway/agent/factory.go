package agent

import (
	"fmt"
	"time"

	"github.com/devpilot/devpilot/internal/application/port/output"
)

// NewAgentGateway creates an agent gateway based on agent type.
// Supported types: claude-code-cli, mock.
// The user is responsible for ensuring the backend is available
// (e.g. the claude CLI installed).
func NewAgentGateway(agentType string, bin string, timeout time.Duration) (output.AgentGateway, error) {
	switch agentType {
	case "claude-code-cli", "":
		return NewClaudeCodeCLIGateway(bin, timeout), nil

	case "mock":
		return NewMockGateway(), nil

	default:
		return nil, fmt.Errorf("unknown agent type: %s (supported: claude-code-cli, mock)", agentType)
	}
}
