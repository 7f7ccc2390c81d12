// Package blob stores uploaded images and returns the URL they are served from.
package blob

import (
	"context"
	"io"
	"path/filepath"
	"regexp"
	"strings"
)

// Store persists an object under key and returns its public URL.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename reduces a client file name to a safe, lower-case key segment.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.ToLower(strings.TrimSpace(name))
	name = unsafeChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if name == "" || name == "/" {
		return "file"
	}
	return name
}

// joinURL joins a base URL and key with exactly one slash between them.
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
