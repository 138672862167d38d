package claudecli

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClaude writes a shell script standing in for the claude binary
func fakeClaude(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	path := filepath.Join(t.TempDir(), "claude")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func TestRunner_Run_ParsesJSONResult(t *testing.T) {
	bin := fakeClaude(t, `echo '{"type":"result","is_error":false,"result":"# Requirements"}'`)
	r := Runner{Bin: bin, Timeout: 5 * time.Second}

	out, err := r.Run(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "# Requirements", out)
}

func TestRunner_Run_ErrorResult(t *testing.T) {
	bin := fakeClaude(t, `echo '{"type":"result","is_error":true,"result":"rate limited"}'`)
	r := Runner{Bin: bin, Timeout: 5 * time.Second}

	_, err := r.Run(context.Background(), "prompt")
	assert.ErrorContains(t, err, "rate limited")
}

func TestRunner_Run_RawOutputFallback(t *testing.T) {
	bin := fakeClaude(t, `echo 'plain text answer'`)
	r := Runner{Bin: bin, Timeout: 5 * time.Second}

	out, err := r.Run(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "plain text answer", strings.TrimSpace(out))
}

func TestRunner_Run_MissingBinary(t *testing.T) {
	r := Runner{Bin: filepath.Join(t.TempDir(), "no-such-binary"), Timeout: time.Second}
	_, err := r.Run(context.Background(), "prompt")
	assert.Error(t, err)
}
