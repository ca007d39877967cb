// Package config loads mpdify's settings from MPDIFY_-prefixed environment
// variables, in the same spirit as the upstream project's config crate
// settings: fixed defaults merged with whatever the environment overrides.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
)

// Config holds every tunable of the running process.
type Config struct {
	MPDPort    int
	HTTPPort   int
	HTTPHost   string
	BindAddr   net.IP
	CachePath  string

	ArtworkCacheSizeMB  int64
	ArtworkChunkSizeKB  int64

	PlaybackPoolFreqBaseSeconds int
	PlaybackPoolFreqFastSeconds int

	SpotifyClientID     string
	SpotifyClientSecret string
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (*Config, error) {
	bindAddr := net.ParseIP(getEnv("MPDIFY_BIND_ADDRESS", "0.0.0.0"))
	if bindAddr == nil {
		return nil, fmt.Errorf("invalid MPDIFY_BIND_ADDRESS")
	}

	return &Config{
		MPDPort:                     getEnvAsInt("MPDIFY_MPD_PORT", 6600),
		HTTPPort:                    getEnvAsInt("MPDIFY_HTTP_PORT", 6601),
		HTTPHost:                    getEnv("MPDIFY_HTTP_HOST", "localhost"),
		BindAddr:                    bindAddr,
		CachePath:                   getEnv("MPDIFY_CACHE_PATH", "caches/"),
		ArtworkCacheSizeMB:          int64(getEnvAsInt("MPDIFY_ARTWORK_CACHE_SIZE_MB", 500)),
		ArtworkChunkSizeKB:          int64(getEnvAsInt("MPDIFY_ARTWORK_CHUNK_SIZE_KB", 128)),
		PlaybackPoolFreqBaseSeconds: getEnvAsInt("MPDIFY_PLAYBACK_POOL_FREQ_BASE_SECONDS", 15),
		PlaybackPoolFreqFastSeconds: getEnvAsInt("MPDIFY_PLAYBACK_POOL_FREQ_FAST_SECONDS", 1),
		SpotifyClientID:             getEnv("MPDIFY_SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret:         getEnv("MPDIFY_SPOTIFY_CLIENT_SECRET", ""),
	}, nil
}

// AuthPath returns the redirect URI the Spotify OAuth flow should use.
func (c *Config) AuthPath() string {
	return fmt.Sprintf("http://%s:%d/auth", c.HTTPHost, c.HTTPPort)
}

// HTTPAddress returns the address the HTTP listener should bind.
func (c *Config) HTTPAddress() string {
	return net.JoinHostPort(c.BindAddr.String(), strconv.Itoa(c.HTTPPort))
}

// MPDAddress returns the address the MPD listener should bind.
func (c *Config) MPDAddress() string {
	return net.JoinHostPort(c.BindAddr.String(), strconv.Itoa(c.MPDPort))
}

// ArtworkCacheSizeBytes converts the configured MB budget to bytes.
func (c *Config) ArtworkCacheSizeBytes() int64 {
	return c.ArtworkCacheSizeMB * 1024 * 1024
}

// ArtworkChunkSizeBytes converts the configured KB chunk size to bytes.
func (c *Config) ArtworkChunkSizeBytes() int64 {
	return c.ArtworkChunkSizeKB * 1024
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
