package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPathFromURL(t *testing.T) {
	url := "https://xyz.supabase.co/storage/v1/object/public/resources/computer-science-engineering/3/class-notes/1700000000000_Unit%201.pdf"
	assert.Equal(t, "computer-science-engineering/3/class-notes/1700000000000_Unit 1.pdf", ObjectPathFromURL(url, "resources", "fallback"))
	assert.Equal(t, "fallback", ObjectPathFromURL("https://cdn.example/file.pdf", "resources", "fallback"))
	assert.Equal(t, "fallback", ObjectPathFromURL(url, "other-bucket", "fallback"))
}

func TestLocalStorageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir, "http://localhost:8080/storage/v1/", "resources")
	require.NoError(t, err)
	ctx := context.Background()

	key := "first-year/cse/p-cycle/see-pyqs/1_paper.pdf"
	require.NoError(t, store.Upload(ctx, key, "application/pdf", strings.NewReader("%PDF")))
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	assert.Error(t, store.Upload(ctx, key, "application/pdf", strings.NewReader("again")), "existing objects are not overwritten")

	publicURL := store.PublicURL(key)
	assert.Equal(t, "http://localhost:8080/storage/v1/object/public/resources/"+key, publicURL)
	assert.Equal(t, key, ObjectPathFromURL(publicURL, store.Bucket(), ""))

	require.NoError(t, store.Remove(ctx, key))
	require.NoError(t, store.Remove(ctx, key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageStaysInsideBaseDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(filepath.Join(dir, "objects"), "http://localhost", "resources")
	require.NoError(t, err)

	require.NoError(t, store.Upload(context.Background(), "../../escape.pdf", "application/pdf", strings.NewReader("x")))
	_, err = os.Stat(filepath.Join(dir, "objects", "escape.pdf"))
	assert.NoError(t, err)
	assert.ErrorIs(t, store.Remove(context.Background(), "/"), ErrEmptyPath)
}

func TestSupabaseStorage(t *testing.T) {
	var gotUpload, gotRemove bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		switch r.Method {
		case http.MethodPost:
			gotUpload = true
			assert.Equal(t, "/storage/v1/object/resources/cse/3/class-notes/1_a%20b.pdf", r.URL.EscapedPath())
			assert.Equal(t, "false", r.Header.Get("x-upsert"))
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "pdf-bytes", string(body))
			w.WriteHeader(http.StatusOK)
		case http.MethodDelete:
			gotRemove = true
			assert.Equal(t, "/storage/v1/object/resources", r.URL.Path)
			var payload map[string][]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, []string{"cse/3/class-notes/1_a b.pdf"}, payload["prefixes"])
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"message":"denied"}`))
		}
	}))
	defer srv.Close()

	store, err := NewSupabaseStorage(srv.URL+"/", "resources", "service-key", time.Second, nil)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "cse/3/class-notes/1_a b.pdf", "application/pdf", strings.NewReader("pdf-bytes")))
	err = store.Remove(ctx, "cse/3/class-notes/1_a b.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.True(t, gotUpload)
	assert.True(t, gotRemove)

	assert.Equal(t, srv.URL+"/storage/v1/object/public/resources/cse/3/class-notes/1_a%20b.pdf", store.PublicURL("cse/3/class-notes/1_a b.pdf"))
}

func TestNewSupabaseStorageRequiresCredentials(t *testing.T) {
	_, err := NewSupabaseStorage("", "resources", "", time.Second, nil)
	assert.Error(t, err)
}
