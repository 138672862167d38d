package output

import (
	"context"
	"time"
)

// StorageGateway archives approved artifacts of a completed task to external
// storage. Supports local filesystem and cloud storage (S3) backends.
type StorageGateway interface {
	// SaveArtifact persists one artifact to the archive
	SaveArtifact(ctx context.Context, req SaveArtifactRequest) (*ArchiveEntry, error)

	// ListArtifacts lists archived artifacts for a given task
	ListArtifacts(ctx context.Context, taskID string) ([]*ArchiveEntry, error)
}

// SaveArtifactRequest represents a request to archive an artifact
type SaveArtifactRequest struct {
	TaskID      string            // Owning task ID
	Stage       string            // Stage name the artifact belongs to
	Content     []byte            // Artifact content
	ContentType string            // MIME type (optional)
	Metadata    map[string]string // Additional metadata
}

// ArchiveEntry describes one archived artifact
type ArchiveEntry struct {
	TaskID      string    // Owning task ID
	Stage       string    // Stage name
	StoragePath string    // Storage path (e.g. s3://bucket/key or a file path)
	Size        int64     // Size in bytes
	ArchivedAt  time.Time // Archive timestamp
}
