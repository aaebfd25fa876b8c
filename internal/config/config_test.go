package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.RollbackOrphans)
	assert.False(t, cfg.UsersConfigured())
}

func TestLoadFrom_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "port: \"9090\"\ncache_ttl: 10m\nsite_url: https://creativedevlab.com/\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(yaml), 0o600))

	t.Setenv("PORT", "7070")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("USERS_ROLLBACK_ORPHANS", "true")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co/")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port, "env overrides yaml")
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "https://creativedevlab.com", cfg.SiteURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.RollbackOrphans)
	assert.Equal(t, "https://project.supabase.co", cfg.SupabaseURL)
	assert.True(t, cfg.UsersConfigured())
}

func TestLoadFrom_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BOOTSTRAP_ADMIN_EMAIL=founder@example.com\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("BOOTSTRAP_ADMIN_EMAIL") })

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, "founder@example.com", cfg.BootstrapAdminEmail)
}

func TestLoadFrom_Invalid(t *testing.T) {
	t.Run("store driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := LoadFrom(t.TempDir())
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})
	t.Run("cache ttl", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "0s")
		_, err := LoadFrom(t.TempDir())
		assert.ErrorContains(t, err, "CACHE_TTL")
	})
	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte("port: [unterminated"), 0o600))
		_, err := LoadFrom(dir)
		assert.ErrorContains(t, err, "read app.yaml")
	})
}
