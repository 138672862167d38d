package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/devpilot/devpilot/internal/application/port/output"
)

// LocalStorageGateway implements StorageGateway on a local filesystem.
// Layout: <baseDir>/tasks/<taskID>/<stage>.md
type LocalStorageGateway struct {
	fs      afero.Fs
	baseDir string
}

// NewLocalStorageGateway creates a filesystem-backed storage gateway
func NewLocalStorageGateway(fs afero.Fs, baseDir string) *LocalStorageGateway {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalStorageGateway{fs: fs, baseDir: baseDir}
}

// SaveArtifact writes one artifact under the base directory
func (g *LocalStorageGateway) SaveArtifact(ctx context.Context, req output.SaveArtifactRequest) (*output.ArchiveEntry, error) {
	dir := filepath.Join(g.baseDir, "tasks", req.TaskID)
	if err := g.fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	path := filepath.Join(dir, req.Stage+".md")
	if err := afero.WriteFile(g.fs, path, req.Content, 0644); err != nil {
		return nil, fmt.Errorf("write artifact file: %w", err)
	}

	return &output.ArchiveEntry{
		TaskID:      req.TaskID,
		Stage:       req.Stage,
		StoragePath: path,
		Size:        int64(len(req.Content)),
		ArchivedAt:  time.Now(),
	}, nil
}

// ListArtifacts lists archived artifacts for a task
func (g *LocalStorageGateway) ListArtifacts(ctx context.Context, taskID string) ([]*output.ArchiveEntry, error) {
	dir := filepath.Join(g.baseDir, "tasks", taskID)
	infos, err := afero.ReadDir(g.fs, dir)
	if err != nil {
		return nil, nil // no archive yet
	}

	var entries []*output.ArchiveEntry
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".md") {
			continue
		}
		entries = append(entries, &output.ArchiveEntry{
			TaskID:      taskID,
			Stage:       strings.TrimSuffix(info.Name(), ".md"),
			StoragePath: filepath.Join(dir, info.Name()),
			Size:        info.Size(),
			ArchivedAt:  info.ModTime(),
		})
	}
	return entries, nil
}
