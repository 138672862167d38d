package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpilot/devpilot/internal/application/port/output"
)

func TestMockGateway_Execute(t *testing.T) {
	g := NewMockGateway()

	resp, err := g.Execute(context.Background(), output.AgentRequest{
		Prompt:   "# Project: Alpha",
		Metadata: map[string]string{"stage": "requirements"},
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Output, "requirements")
	assert.Equal(t, "mock", resp.AgentType)
	assert.Len(t, g.Calls(), 1)
}

func TestMockGateway_EchoesReviewerFeedback(t *testing.T) {
	g := NewMockGateway()

	resp, err := g.Execute(context.Background(), output.AgentRequest{
		Prompt: "## Task: requirements\n\n## Reviewer Feedback\n\nadd auth",
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Output, "add auth")
}

func TestMockGateway_FailNext(t *testing.T) {
	g := NewMockGateway()
	want := errors.New("backend down")
	g.FailNext(want)

	_, err := g.Execute(context.Background(), output.AgentRequest{Prompt: "p"})
	assert.ErrorIs(t, err, want)

	// failure is one-shot
	_, err = g.Execute(context.Background(), output.AgentRequest{Prompt: "p"})
	assert.NoError(t, err)
}

func TestMockGateway_DelayIsCancellable(t *testing.T) {
	g := NewMockGateway()
	g.SetDelay(10 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := g.Execute(ctx, output.AgentRequest{Prompt: "p"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNewAgentGateway(t *testing.T) {
	tests := []struct {
		name      string
		agentType string
		wantErr   bool
	}{
		{"claude code cli", "claude-code-cli", false},
		{"default", "", false},
		{"mock", "mock", false},
		{"unknown", "gpt-9", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewAgentGateway(tt.agentType, "claude", time.Minute)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, g)
		})
	}
}
