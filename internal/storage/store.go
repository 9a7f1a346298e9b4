// Package storage persists product and enhanced images to a blob store and
// hands back stable public URLs for the generated marketing kit.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kalakarigar/internal/retry"
)

// WriteOptions carry object metadata set at upload time.
type WriteOptions struct {
	ContentType  string
	CacheControl string
}

// BlobStore is the persistence seam. GCSStore serves production; FileStore
// serves development and tests.
type BlobStore interface {
	Write(ctx context.Context, key string, data []byte, opts WriteOptions) error
	URL(key string) string
}

// Uploader names, writes, and addresses product images.
type Uploader struct {
	store  BlobStore
	prefix string
	policy retry.Policy
	now    func() time.Time
}

// NewUploader builds an Uploader writing under the given key prefix.
func NewUploader(store BlobStore, prefix string) *Uploader {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = "products"
	}
	return &Uploader{
		store:  store,
		prefix: prefix,
		policy: retry.Policy{MaxAttempts: 3, BaseDelay: 300 * time.Millisecond, Retryable: retry.IsTransient},
		now:    time.Now,
	}
}

// Upload writes the image under a collision-free key and returns the key and
// its public URL. Transient write failures are retried up to three times.
func (u *Uploader) Upload(ctx context.Context, data []byte, mimeType string) (string, string, error) {
	if u == nil || u.store == nil {
		return "", "", fmt.Errorf("storage: no blob store configured")
	}
	if len(data) == 0 {
		return "", "", fmt.Errorf("storage: empty payload")
	}

	key := fmt.Sprintf("%s/%s_%d.%s",
		u.prefix,
		strings.ReplaceAll(uuid.NewString(), "-", ""),
		u.now().Unix(),
		extensionFor(mimeType),
	)
	opts := WriteOptions{
		ContentType:  mimeType,
		CacheControl: "public, max-age=31536000, immutable",
	}

	err := retry.Do(ctx, u.policy, func() error {
		return u.store.Write(ctx, key, data, opts)
	})
	if err != nil {
		return "", "", fmt.Errorf("storage: upload %s: %w", key, err)
	}
	return key, u.store.URL(key), nil
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return "png"
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "bin"
	}
}
