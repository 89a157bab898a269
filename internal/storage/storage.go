// Package storage persists uploaded images, either to an S3-compatible
// bucket or to a local directory served under /uploads/.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImmutableCacheControl is sent with every stored upload. File names are
// unique, so an upload never changes once written.
const ImmutableCacheControl = "public, max-age=31536000, immutable"

// Uploader stores a file and returns the URL clients should use for it.
// Both *S3 and *Disk implement it.
type Uploader interface {
	Save(ctx context.Context, name, contentType string, data []byte) (string, error)
}

// FileName builds a unique upload name: the current unix time in
// milliseconds, a short random suffix and the extension.
func FileName(now time.Time, ext string) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), uuid.NewString()[:8], ext)
}
