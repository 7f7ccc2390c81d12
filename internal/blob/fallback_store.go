package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// fallbackStore tries S3 first, then falls back to the local file system.
type fallbackStore struct {
	s3Store   Store
	fileStore Store
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackStore creates a store that tries S3 first, then falls back to local files.
// If s3Store is nil, it will only use the file store.
func NewFallbackStore(s3Store, fileStore Store, s3Enabled bool, logger zerolog.Logger) Store {
	return &fallbackStore{
		s3Store:   s3Store,
		fileStore: fileStore,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "fallback-store").Logger(),
	}
}

// Put buffers body so that a failed S3 upload can be replayed against the file store.
// Uploads are bounded by the configured maximum size before they reach this point.
func (s *fallbackStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if !s.s3Enabled || s.s3Store == nil {
		s.logger.Debug().
			Bool("s3_enabled", s.s3Enabled).
			Bool("has_s3_store", s.s3Store != nil).
			Msg("S3 disabled or not configured, using local file system")
		return s.fileStore.Put(ctx, key, contentType, body, size)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	url, err := s.s3Store.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
	if err == nil {
		return url, nil
	}

	s.logger.Warn().
		Err(err).
		Str("key", key).
		Msg("failed to store in S3, falling back to local file system")

	return s.fileStore.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data)))
}
