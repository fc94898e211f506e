// Package storage adapts Google Cloud Storage to the ObjectStore interface.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gcs "cloud.google.com/go/storage"

	"notable/internal/domain/repositories"
)

// GCSStore stores media blobs in a Google Cloud Storage bucket and serves
// them via the public storage.googleapis.com URL scheme.
type GCSStore struct {
	client *gcs.Client
	bucket string
	logger *slog.Logger
}

// NewGCSStore creates a store for the given bucket. Credentials come from
// the ambient environment (GOOGLE_APPLICATION_CREDENTIALS or metadata
// server).
func NewGCSStore(ctx context.Context, bucket string, logger *slog.Logger) (repositories.ObjectStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	logger.Info("object store initialized", "bucket", bucket)

	return &GCSStore{
		client: client,
		bucket: bucket,
		logger: logger,
	}, nil
}

// Save uploads the blob under key and returns its public URL.
func (s *GCSStore) Save(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("upload object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", key, err)
	}

	return PublicURL(s.bucket, key), nil
}

// Delete removes the blob. Callers treat failures as best-effort.
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL builds the public URL for a stored object.
func PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}

// KeyFromURL recovers the object key from a public URL. Keys never contain
// slashes, so the last path segment is the key.
func KeyFromURL(url string) string {
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}
