package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStorageGateway(t *testing.T) {
	tests := []struct {
		name        string
		storageType string
		baseDir     string
		s3cfg       S3Config
		wantErr     bool
	}{
		{"mock", "mock", "", S3Config{}, false},
		{"default is mock", "", "", S3Config{}, false},
		{"local", "local", t.TempDir(), S3Config{}, false},
		{"local without base dir", "local", "", S3Config{}, true},
		{"s3 without bucket", "s3", "", S3Config{}, true},
		{"unknown", "gcs", "", S3Config{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewStorageGateway(tt.storageType, tt.baseDir, tt.s3cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, g)
		})
	}
}
