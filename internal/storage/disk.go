package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/models"
)

// URLPrefix is the path under which disk uploads are served.
const URLPrefix = models.UploadPathPrefix

// Disk stores uploads in a local directory.
type Disk struct {
	dir string
}

// NewDisk creates the upload directory if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Disk{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (d *Disk) Dir() string {
	return d.dir
}

// Save writes data to <dir>/<name> and returns /uploads/<name>.
func (d *Disk) Save(ctx context.Context, name, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("disk save: invalid file name %q", name)
	}

	path := filepath.Join(d.dir, name)
	// O_EXCL: names are unique, so an existing file means a collision.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("disk save %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("disk write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("disk close %s: %w", name, err)
	}
	return URLPrefix + name, nil
}
