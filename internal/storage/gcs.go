package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gcs "cloud.google.com/go/storage"
)

// GCSStore persists blobs into a Google Cloud Storage bucket.
type GCSStore struct {
	bucket  *gcs.BucketHandle
	name    string
	baseURL string
}

// NewGCSStore wraps an existing client around one bucket. baseURL overrides
// the public address, for buckets served through a CDN.
func NewGCSStore(client *gcs.Client, bucketName, baseURL string) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("storage: gcs client is required")
	}
	bucketName = strings.TrimSpace(bucketName)
	if bucketName == "" {
		return nil, errors.New("storage: bucket name is required")
	}
	return &GCSStore{
		bucket:  client.Bucket(bucketName),
		name:    bucketName,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

// Write stores the object and makes it publicly readable, so the URL on the
// artisan record stays servable from a private-by-default bucket.
func (s *GCSStore) Write(ctx context.Context, key string, data []byte, opts WriteOptions) error {
	w := s.bucket.Object(key).NewWriter(ctx)
	applyWriteOptions(w, opts)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("storage: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("storage: finalize object: %w", err)
	}
	return nil
}

// applyWriteOptions maps upload options onto the object writer. PredefinedACL
// is ignored by buckets with uniform bucket-level access, which must grant
// allUsers read on the bucket instead.
func applyWriteOptions(w *gcs.Writer, opts WriteOptions) {
	w.ContentType = opts.ContentType
	w.CacheControl = opts.CacheControl
	w.PredefinedACL = "publicRead"
}

// URL returns the public address of an object.
func (s *GCSStore) URL(key string) string {
	if s.baseURL != "" {
		return s.baseURL + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, key)
}
