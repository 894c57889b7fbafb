package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SupabaseStorage talks to the Supabase Storage REST API using the
// service-role key, which grants privileged deletes.
type SupabaseStorage struct {
	baseURL string
	bucket  string
	key     string
	client  *http.Client
}

// NewSupabaseStorage builds a client for the given project URL and bucket.
func NewSupabaseStorage(projectURL, bucket, serviceRoleKey string, timeout time.Duration, client *http.Client) (*SupabaseStorage, error) {
	if projectURL == "" || serviceRoleKey == "" {
		return nil, fmt.Errorf("supabase storage requires project url and service role key")
	}
	if bucket == "" {
		bucket = "resources"
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &SupabaseStorage{
		baseURL: strings.TrimRight(projectURL, "/") + "/storage/v1",
		bucket:  bucket,
		key:     serviceRoleKey,
		client:  client,
	}, nil
}

// Upload stores an object without overwriting existing keys.
func (s *SupabaseStorage) Upload(ctx context.Context, path, contentType string, r io.Reader) error {
	if strings.Trim(path, "/") == "" {
		return ErrEmptyPath
	}
	endpoint := fmt.Sprintf("%s/object/%s/%s", s.baseURL, s.bucket, escapePath(path))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, r)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "max-age=3600")
	req.Header.Set("x-upsert", "false")
	return s.do(req, "upload")
}

// Remove deletes an object by key.
func (s *SupabaseStorage) Remove(ctx context.Context, path string) error {
	if strings.Trim(path, "/") == "" {
		return ErrEmptyPath
	}
	payload, err := json.Marshal(map[string][]string{"prefixes": {path}})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/object/%s", s.baseURL, s.bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build remove request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, "remove")
}

// PublicURL returns the unauthenticated download URL for an object.
func (s *SupabaseStorage) PublicURL(path string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, s.bucket, escapePath(path))
}

func (s *SupabaseStorage) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)
}

func (s *SupabaseStorage) do(req *http.Request, op string) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage %s: %w", op, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("storage %s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
