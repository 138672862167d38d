package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/devpilot/devpilot/internal/application/port/output"
	"github.com/devpilot/devpilot/internal/interface/external/claudecli"
)

// ClaudeCodeCLIGateway implements AgentGateway using the Claude Code CLI.
// Each stage generation becomes one `claude -p "prompt"` invocation.
type ClaudeCodeCLIGateway struct {
	runner *claudecli.Runner
}

// NewClaudeCodeCLIGateway creates a new Claude Code CLI gateway
func NewClaudeCodeCLIGateway(bin string, timeout time.Duration) *ClaudeCodeCLIGateway {
	if bin == "" {
		bin = "claude"
	}
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &ClaudeCodeCLIGateway{
		runner: &claudecli.Runner{
			Bin:     bin,
			Timeout: timeout,
		},
	}
}

// Execute runs the CLI with the given request
func (g *ClaudeCodeCLIGateway) Execute(ctx context.Context, req output.AgentRequest) (*output.AgentResponse, error) {
	start := time.Now()

	result, err := g.runner.Run(ctx, req.Prompt)
	if err != nil {
		return nil, fmt.Errorf("claude CLI execution failed: %w", err)
	}

	return &output.AgentResponse{
		Output:    result,
		Duration:  time.Since(start),
		AgentType: "claude-code-cli",
		Metadata:  req.Metadata,
	}, nil
}

// HealthCheck verifies if the claude CLI is available
func (g *ClaudeCodeCLIGateway) HealthCheck(ctx context.Context) error {
	_, err := g.Execute(ctx, output.AgentRequest{
		Prompt:  "ping",
		Timeout: 10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("claude CLI health check failed: %w", err)
	}
	return nil
}
