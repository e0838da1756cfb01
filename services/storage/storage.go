// Package storage puts audio bytes into the provider's object store and
// hands back URLs anyone can read.
package storage

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"love-space-backend/config"
)

// ObjectStore stores one object under key and returns the URL it can be
// read from without credentials.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (ObjectStore, error) {
	switch cfg.Backend {
	case "", "supabase":
		return NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.Bucket, nil)
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.GCSCredentials)
	case "s3":
		return NewS3Store(ctx, cfg.Bucket, cfg.AWSRegion)
	case "drive":
		return NewDriveStore(ctx, cfg.DriveCredentialsFile, cfg.DriveFolderID)
	default:
		return nil, errors.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
