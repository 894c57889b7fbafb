package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage persists objects on disk under a base directory and serves
// them behind a Supabase-shaped public URL, so object keys can be recovered
// from URLs the same way for both backends.
type LocalStorage struct {
	baseDir string
	baseURL string
	bucket  string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, baseURL, bucket string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if bucket == "" {
		bucket = "resources"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/"), bucket: bucket}, nil
}

// Upload writes the object. Existing objects are never overwritten.
func (s *LocalStorage) Upload(ctx context.Context, path, _ string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("prepare object directory: %w", err)
	}
	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return fmt.Errorf("write object: %w", err)
	}
	return file.Close()
}

// Remove deletes a stored object. Missing objects are not an error.
func (s *LocalStorage) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// PublicURL returns the download URL for a stored object.
func (s *LocalStorage) PublicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, escapePath(path))
}

// Dir exposes the directory served under the public prefix.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// Bucket returns the bucket name embedded in public URLs.
func (s *LocalStorage) Bucket() string {
	return s.bucket
}

func (s *LocalStorage) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(path))
	if clean == string(filepath.Separator) {
		return "", ErrEmptyPath
	}
	return filepath.Join(s.baseDir, clean), nil
}
