package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store is the file-storage collaborator. Objects are addressed by
// bucket and path; MIME/size constraints are enforced by callers before
// Upload.
type Store interface {
	Upload(ctx context.Context, bucket, path string, r io.Reader) error
	PublicURL(bucket, path string) string
	Remove(ctx context.Context, bucket, path string) error
}

// LocalStore keeps objects on the local filesystem under baseDir and
// serves them at staticBase.
type LocalStore struct {
	baseDir    string
	staticBase string
}

func NewLocalStore(baseDir, staticBase string) *LocalStore {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if staticBase == "" {
		staticBase = "/static/uploads"
	}
	return &LocalStore{baseDir: baseDir, staticBase: staticBase}
}

// BaseDir is the directory to mount as the static file root.
func (s *LocalStore) BaseDir() string { return s.baseDir }

func (s *LocalStore) Upload(ctx context.Context, bucket, path string, r io.Reader) error {
	absPath := filepath.Join(s.baseDir, bucket, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
		return fmt.Errorf("create upload directory: %w", err)
	}

	dst, err := os.Create(absPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		_ = os.Remove(absPath)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (s *LocalStore) PublicURL(bucket, path string) string {
	return s.staticBase + "/" + bucket + "/" + strings.TrimPrefix(path, "/")
}

func (s *LocalStore) Remove(ctx context.Context, bucket, path string) error {
	absPath := filepath.Join(s.baseDir, bucket, filepath.FromSlash(path))
	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}
