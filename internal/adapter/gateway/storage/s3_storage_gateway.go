package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/devpilot/devpilot/internal/application/port/output"
)

// S3StorageGateway implements StorageGateway using AWS S3.
// Key layout: s3://<bucket>/<prefix>/tasks/<taskID>/<stage>.md
type S3StorageGateway struct {
	client S3API // interface for testability
	bucket string
	prefix string
}

// S3Config holds S3 storage gateway configuration
type S3Config struct {
	Bucket string // S3 bucket name
	Prefix string // Optional key prefix
	Region string // AWS region (optional, uses default if empty)
}

// NewS3StorageGateway creates a new S3-based storage gateway
func NewS3StorageGateway(cfg S3Config) (*S3StorageGateway, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	}

	return &S3StorageGateway{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// NewS3StorageGatewayWithClient creates a gateway with a custom S3 client.
// This is primarily used for testing with mock clients.
func NewS3StorageGatewayWithClient(client S3API, bucket, prefix string) *S3StorageGateway {
	return &S3StorageGateway{client: client, bucket: bucket, prefix: prefix}
}

// SaveArtifact uploads one artifact to S3
func (g *S3StorageGateway) SaveArtifact(ctx context.Context, req output.SaveArtifactRequest) (*output.ArchiveEntry, error) {
	key := g.buildKey(req.TaskID, req.Stage)

	contentType := req.ContentType
	if contentType == "" {
		contentType = "text/markdown"
	}

	metadata := map[string]string{
		"task-id":     req.TaskID,
		"stage":       req.Stage,
		"archived-at": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	_, err := g.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(g.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(req.Content),
		ContentType: aws.String(contentType),
		Metadata:    metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("upload to S3: %w", err)
	}

	return &output.ArchiveEntry{
		TaskID:      req.TaskID,
		Stage:       req.Stage,
		StoragePath: fmt.Sprintf("s3://%s/%s", g.bucket, key),
		Size:        int64(len(req.Content)),
		ArchivedAt:  time.Now(),
	}, nil
}

// ListArtifacts lists archived artifacts for a task
func (g *S3StorageGateway) ListArtifacts(ctx context.Context, taskID string) ([]*output.ArchiveEntry, error) {
	prefix := g.buildKey(taskID, "")

	var entries []*output.ArchiveEntry
	var continuation *string
	for {
		out, err := g.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(g.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list S3 objects: %w", err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			entry := &output.ArchiveEntry{
				TaskID:      taskID,
				Stage:       stageFromKey(key),
				StoragePath: fmt.Sprintf("s3://%s/%s", g.bucket, key),
				Size:        aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				entry.ArchivedAt = *obj.LastModified
			}
			entries = append(entries, entry)
		}

		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		continuation = out.NextContinuationToken
	}

	return entries, nil
}

func (g *S3StorageGateway) buildKey(taskID, stage string) string {
	parts := []string{}
	if g.prefix != "" {
		parts = append(parts, strings.Trim(g.prefix, "/"))
	}
	parts = append(parts, "tasks", taskID)
	if stage != "" {
		parts = append(parts, stage+".md")
	} else {
		parts = append(parts, "")
	}
	return strings.Join(parts, "/")
}

func stageFromKey(key string) string {
	base := key
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		base = key[idx+1:]
	}
	return strings.TrimSuffix(base, ".md")
}
