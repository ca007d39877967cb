package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"MPDIFY_MPD_PORT", "MPDIFY_HTTP_PORT", "MPDIFY_HTTP_HOST",
		"MPDIFY_BIND_ADDRESS", "MPDIFY_CACHE_PATH",
	} {
		os.Unsetenv(k)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 6600, cfg.MPDPort)
	assert.Equal(t, 6601, cfg.HTTPPort)
	assert.Equal(t, "localhost", cfg.HTTPHost)
	assert.Equal(t, "caches/", cfg.CachePath)
	assert.Equal(t, int64(500*1024*1024), cfg.ArtworkCacheSizeBytes())
	assert.Equal(t, int64(128*1024), cfg.ArtworkChunkSizeBytes())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MPDIFY_MPD_PORT", "7700")
	t.Setenv("MPDIFY_HTTP_HOST", "example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7700, cfg.MPDPort)
	assert.Equal(t, "example.com", cfg.HTTPHost)
	assert.Equal(t, "http://example.com:6601/auth", cfg.AuthPath())
}

func TestLoadInvalidBindAddress(t *testing.T) {
	t.Setenv("MPDIFY_BIND_ADDRESS", "not-an-ip")
	_, err := Load()
	assert.Error(t, err)
}
