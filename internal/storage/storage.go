package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/pkg/errors"

	"github.com/emilythestrangee/yatube/internal/config"
	"github.com/emilythestrangee/yatube/internal/logging"
)

// MediaURL is where stored files are served from.
const MediaURL = "/media/"

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidPath = errors.New("invalid file path")
)

// Storage keeps uploaded files under slash separated relative paths.
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// New builds the backend named by STORAGE_BACKEND.
func New(cfg *config.Config) (Storage, error) {
	switch cfg.StorageBackend {
	case config.StorageDisk, "":
		logging.Log.WithField("root", cfg.MediaRoot).Info("media storage: disk")
		return NewDiskStorage(cfg.MediaRoot)
	case config.StorageS3:
		logging.Log.WithField("bucket", cfg.S3Bucket).Info("media storage: s3")
		return NewS3Storage(cfg)
	}
	return nil, errors.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// CleanPath normalises a relative media path, refusing anything that would
// escape the media root.
func CleanPath(p string) (string, error) {
	p = strings.TrimPrefix(p, "/")
	if p == "" || strings.Contains(p, "\\") {
		return "", ErrInvalidPath
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", ErrInvalidPath
		}
	}
	return path.Clean(p), nil
}

// URL returns the public address of a stored file.
func URL(p string) string {
	if p == "" {
		return ""
	}
	return MediaURL + strings.TrimPrefix(p, "/")
}
