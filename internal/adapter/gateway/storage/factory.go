package storage

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/devpilot/devpilot/internal/application/port/output"
)

// NewStorageGateway creates a storage gateway based on storage type.
// Supported types: mock, local, s3.
func NewStorageGateway(storageType, baseDir string, s3cfg S3Config) (output.StorageGateway, error) {
	switch storageType {
	case "mock", "":
		return NewMockStorageGateway(), nil

	case "local":
		if baseDir == "" {
			return nil, fmt.Errorf("local storage requires a base directory")
		}
		return NewLocalStorageGateway(afero.NewOsFs(), baseDir), nil

	case "s3":
		if s3cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires a bucket name")
		}
		return NewS3StorageGateway(s3cfg)

	default:
		return nil, fmt.Errorf("unknown storage type: %s (supported: mock, local, s3)", storageType)
	}
}
