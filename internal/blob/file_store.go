package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements Store on the local file system.
type fileStore struct {
	dir     string
	baseURL string
	logger  zerolog.Logger
}

// NewFileStore creates a store writing into dir and serving from baseURL.
func NewFileStore(dir, baseURL string, logger zerolog.Logger) Store {
	return &fileStore{
		dir:     dir,
		baseURL: baseURL,
		logger:  logger.With().Str("component", "file-store").Logger(),
	}
}

// Put writes body to dir/key. The key must not escape the upload directory.
func (s *fileStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	path := filepath.Join(s.dir, filepath.Clean("/"+key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.logger.Error().Err(err).Str("dir", s.dir).Msg("failed to create upload directory")
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		s.logger.Error().Err(err).Str("file", path).Msg("failed to create upload file")
		return "", fmt.Errorf("failed to create upload file %s: %w", path, err)
	}
	defer file.Close()

	written, err := io.Copy(file, body)
	if err != nil {
		_ = os.Remove(path)
		s.logger.Error().Err(err).Str("file", path).Msg("failed to write upload file")
		return "", fmt.Errorf("failed to write upload file %s: %w", path, err)
	}

	s.logger.Info().
		Str("file", path).
		Int64("bytes", written).
		Str("content_type", contentType).
		Msg("upload stored on local file system")

	return joinURL(s.baseURL, key), nil
}
