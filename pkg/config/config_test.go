package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, int64(15*1024*1024), cfg.Upload.MaxFileSizeBytes)
	require.Equal(t, []string{"application/pdf", "image/png", "image/jpeg", "image/jpg"}, cfg.Upload.AllowedMIMEs)
	require.Equal(t, 60*24*time.Hour, cfg.Community.Window)
	require.Equal(t, "resources", cfg.Storage.Bucket)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SUPABASE")
	t.Setenv("SUPABASE_URL", "https://xyz.supabase.co/")
	t.Setenv("COMMUNITY_WINDOW", "not-a-duration")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, StorageDriverSupabase, cfg.Storage.Driver)
	require.Equal(t, "https://xyz.supabase.co", cfg.Storage.SupabaseURL)
	require.Equal(t, 60*24*time.Hour, cfg.Community.Window)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
