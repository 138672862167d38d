package claudecli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes the claude CLI in non-interactive print mode.
type Runner struct {
	Bin     string
	Timeout time.Duration
}

// ClaudeResponse represents the JSON response from claude
type ClaudeResponse struct {
	Type       string  `json:"type"`
	Subtype    string  `json:"subtype"`
	IsError    bool    `json:"is_error"`
	DurationMs int     `json:"duration_ms"`
	Result     string  `json:"result"`
	SessionID  string  `json:"session_id"`
	TotalCost  float64 `json:"total_cost_usd"`
}

// Run executes the CLI with the given prompt and returns the result text.
func (r Runner) Run(ctx context.Context, prompt string, extraArgs ...string) (string, error) {
	args := []string{"-p", "--output-format", "json"}
	args = append(args, extraArgs...)
	args = append(args, prompt)

	cctx := ctx
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		cctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cctx, r.Bin, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("claude execution failed: %w (output: %s)", err, string(out))
	}

	var response ClaudeResponse
	if err := json.Unmarshal(out, &response); err != nil {
		// Not JSON: return the raw output for backward compatibility.
		return string(out), nil
	}
	if response.IsError {
		return "", fmt.Errorf("claude returned error: %s", response.Result)
	}
	return response.Result, nil
}
