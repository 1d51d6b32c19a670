package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// maxUploadSize caps a single stored object at 50MB.
const maxUploadSize = 50 * 1024 * 1024

// LocalUploader stores objects on the local filesystem and serves them
// through the /static route of the API process.
type LocalUploader struct {
	baseDir string
	baseURL string
}

// NewLocal builds a disk-backed uploader rooted at baseDir.
func NewLocal(baseDir, baseURL string) *LocalUploader {
	return &LocalUploader{baseDir: baseDir, baseURL: baseURL}
}

// Upload writes the object under baseDir and returns its public URL.
func (u *LocalUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	dstPath := filepath.Join(u.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	out, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	lr := &io.LimitedReader{R: body, N: maxUploadSize + 1}
	written, err := io.Copy(out, lr)
	if err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > maxUploadSize {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("file size exceeds 50MB")
	}

	return u.baseURL + "/" + key, nil
}
