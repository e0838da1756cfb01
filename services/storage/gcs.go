package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// GCSStore writes to a Google Cloud Storage bucket whose objects are
// publicly readable.
type GCSStore struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewGCSStore(ctx context.Context, bucket, credentials string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentials != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentials)))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create GCS client")
	}
	return &GCSStore{bucket: client.Bucket(bucket), name: bucket}, nil
}

func (s *GCSStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	writer := s.bucket.Object(key).If(gcs.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", errors.Wrapf(err, "write gs://%s/%s", s.name, key)
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrapf(err, "finalize gs://%s/%s", s.name, key)
	}
	return objectURL(s.name, key), nil
}

func objectURL(bucket, key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, escapeKey(key))
}
