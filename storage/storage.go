// Package storage abstracts the object store that holds uploaded images.
// An upload returns a public URL; there is no delete-on-failure guarantee.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/artemcheb722/MANProject/config"
)

// Uploader stores one object and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// New returns the uploader selected by configuration.
func New(ctx context.Context, cfg config.AppConfig) (Uploader, error) {
	switch cfg.StorageBackend {
	case "s3":
		return NewS3(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicBaseURL)
	case "local", "":
		return NewLocal(cfg.UploadDir, "/static/uploads"), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// ObjectKey builds a collision-safe key for an upload, grouped under the
// owning entity's UUID.
func ObjectKey(entityUUID, filename string) string {
	name := filepath.Base(filename)
	if name == "." || name == "/" || name == "" {
		name = "file"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("%s/%d_%s", entityUUID, time.Now().UnixNano(), name)
}
