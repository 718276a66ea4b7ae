// Package objectstore keeps the binary photos of result forms outside the
// database. Submissions only reference them by object key.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrKeyEmpty       = errors.New("object key cannot be empty")
	ErrObjectNotFound = errors.New("object not found")
)

// PhotoStore puts and removes photo objects.
type PhotoStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
}

// Backend is a PhotoStore that can report its own health.
type Backend interface {
	PhotoStore
	Health(ctx context.Context) error
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// SupportedContentType reports whether photos of contentType are accepted.
func SupportedContentType(contentType string) bool {
	_, ok := extensions[normalize(contentType)]
	return ok
}

// PhotoKey builds the object key of one photo of a submission.
func PhotoKey(submissionID uuid.UUID, photoType, contentType string) string {
	name := fmt.Sprintf("%s-%s%s", photoType, uuid.NewString(), extensions[normalize(contentType)])
	return path.Join("submissions", submissionID.String(), name)
}

func normalize(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
