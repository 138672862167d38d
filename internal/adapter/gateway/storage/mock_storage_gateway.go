package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/devpilot/devpilot/internal/application/port/output"
)

// MockStorageGateway implements StorageGateway in memory for tests and
// for running without a configured archive backend.
type MockStorageGateway struct {
	mu      sync.Mutex
	entries map[string][]*output.ArchiveEntry // taskID -> entries
	failErr error
}

// NewMockStorageGateway creates an in-memory storage gateway
func NewMockStorageGateway() *MockStorageGateway {
	return &MockStorageGateway{entries: make(map[string][]*output.ArchiveEntry)}
}

// FailWith makes all subsequent SaveArtifact calls return err
func (g *MockStorageGateway) FailWith(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failErr = err
}

// SaveArtifact records the artifact in memory
func (g *MockStorageGateway) SaveArtifact(ctx context.Context, req output.SaveArtifactRequest) (*output.ArchiveEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failErr != nil {
		return nil, g.failErr
	}
	entry := &output.ArchiveEntry{
		TaskID:      req.TaskID,
		Stage:       req.Stage,
		StoragePath: fmt.Sprintf("mock://tasks/%s/%s.md", req.TaskID, req.Stage),
		Size:        int64(len(req.Content)),
		ArchivedAt:  time.Now(),
	}
	g.entries[req.TaskID] = append(g.entries[req.TaskID], entry)
	return entry, nil
}

// ListArtifacts lists recorded artifacts for a task
func (g *MockStorageGateway) ListArtifacts(ctx context.Context, taskID string) ([]*output.ArchiveEntry, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*output.ArchiveEntry, len(g.entries[taskID]))
	copy(out, g.entries[taskID])
	return out, nil
}
