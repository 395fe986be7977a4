package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr string

	// Hostname rewrites the host of stream URLs before playback. It is kept
	// raw here: a bad value is surfaced to the user as a spoken message at
	// resolve time, not a boot failure.
	Hostname string

	// Music-library backend.
	LibraryBaseURL string
	LibraryToken   string

	// HTTP Basic credentials protecting the companion metadata API. Values
	// support Docker-secret file indirection.
	CompanionUser     string
	CompanionPassword string

	// When set, now-playing metadata is pushed to this base URL over HTTP
	// instead of the in-process store.
	CompanionBaseURL string

	ProbeTimeout  time.Duration
	FetchTimeout  time.Duration
	PushTimeout   time.Duration
	SearchTimeout time.Duration

	PlaylistTTL      time.Duration
	ArtistTrackLimit int

	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("SKILL_ADDR", ":8080"),
		Hostname:            os.Getenv("MA_HOSTNAME"),
		LibraryBaseURL:      strings.TrimRight(os.Getenv("MA_BASE_URL"), "/"),
		LibraryToken:        os.Getenv("MA_TOKEN"),
		CompanionUser:       secretOr("APP_USERNAME", ""),
		CompanionPassword:   secretOr("APP_PASSWORD", ""),
		CompanionBaseURL:    strings.TrimRight(os.Getenv("COMPANION_BASE_URL"), "/"),
		ProbeTimeout:        envDurationOr("SKILL_PROBE_TIMEOUT", 5*time.Second),
		FetchTimeout:        envDurationOr("SKILL_FETCH_TIMEOUT", 5*time.Second),
		PushTimeout:         envDurationOr("SKILL_PUSH_TIMEOUT", 2*time.Second),
		SearchTimeout:       envDurationOr("SKILL_SEARCH_TIMEOUT", 10*time.Second),
		PlaylistTTL:         envDurationOr("PLAYLIST_TTL", 30*time.Minute),
		ArtistTrackLimit:    envIntOr("ARTIST_TRACK_LIMIT", 50),
		ReadHeaderTimeout:   envDurationOr("SKILL_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:         envDurationOr("SKILL_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod: envDurationOr("SKILL_SHUTDOWN_GRACE_PERIOD", 15*time.Second),
	}

	if cfg.LibraryBaseURL == "" {
		return Config{}, fmt.Errorf("MA_BASE_URL is not set")
	}
	if cfg.LibraryToken == "" {
		return Config{}, fmt.Errorf("MA_TOKEN is not set")
	}
	if cfg.CompanionUser == "" || cfg.CompanionPassword == "" {
		return Config{}, fmt.Errorf("APP_USERNAME and APP_PASSWORD must be set")
	}
	if cfg.ArtistTrackLimit <= 0 {
		return Config{}, fmt.Errorf("ARTIST_TRACK_LIMIT must be > 0")
	}
	if cfg.PlaylistTTL <= 0 {
		return Config{}, fmt.Errorf("PLAYLIST_TTL must be > 0")
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// secretOr reads key from the environment; when the value names an existing
// file (Docker secrets mounted under /run/secrets), the trimmed file contents
// are returned instead.
func secretOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	if info, err := os.Stat(v); err == nil && info.Mode().IsRegular() {
		data, err := os.ReadFile(v)
		if err != nil {
			return v
		}
		return strings.TrimSpace(string(data))
	}
	return v
}

func envDurationOr(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envIntOr(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
