package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "127.0.0.1:8787", cfg.Listen)
	assert.Equal(t, "claude-code-cli", cfg.AgentType)
	assert.Equal(t, 10*time.Minute, cfg.AgentTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.NotEmpty(t, cfg.DBPath)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Listen, cfg.Listen)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
listen: "0.0.0.0:9999"
agent_type: mock
agent_timeout: 30s
log_level: debug
storage:
  type: s3
  s3_bucket: devpilot-archive
  s3_prefix: prod
webhooks:
  - name: chat
    url: https://example.com/hook
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Listen)
	assert.Equal(t, "mock", cfg.AgentType)
	assert.Equal(t, 30*time.Second, cfg.AgentTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "devpilot-archive", cfg.Storage.S3Bucket)
	require.Len(t, cfg.Webhooks, 1)
	assert.Equal(t, "chat", cfg.Webhooks[0].Name)

	// unset fields keep their defaults
	assert.Equal(t, Default().AgentBin, cfg.AgentBin)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEVPILOT_AGENT_TYPE", "mock")
	t.Setenv("DEVPILOT_LISTEN", "127.0.0.1:7000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mock", cfg.AgentType)
	assert.Equal(t, "127.0.0.1:7000", cfg.Listen)
}
