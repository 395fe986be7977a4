// Package nowplaying tracks the "currently playing" metadata snapshot. It is
// fetched from the companion metadata API and pushed onward to the visual
// surface after each successful playback directive.
package nowplaying

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Snapshot is the process-wide now-playing state. A failed fetch leaves the
// previous snapshot in place so the display degrades to last-known-good
// instead of blanking.
type Snapshot struct {
	AudioURL           string
	Title              string
	Secondary          string
	CoverImageURL      string
	BackgroundImageURL string
}

// flacSuffix matches a .flac extension at the end of the path; some devices
// refuse FLAC, so the companion URL is rewritten to its MP3 variant.
var flacSuffix = regexp.MustCompile(`(?i)\.flac($|\?)`)

// Client fetches the latest stream metadata from the companion API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger

	mu   sync.Mutex
	snap Snapshot
}

func NewClient(baseURL, username, password string, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger,
	}
}

// Snapshot returns the last successfully fetched metadata.
func (c *Client) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// FetchLatest refreshes the snapshot from the companion API. It never fails:
// on any error (transport, non-200, malformed body) the previous snapshot is
// kept, the problem is logged, and changed is false.
func (c *Client) FetchLatest(ctx context.Context) (snap Snapshot, changed bool) {
	fetched, err := c.fetch(ctx)
	if err != nil {
		c.logger.Warn("now-playing fetch failed, keeping previous snapshot", "error", err)
		return c.Snapshot(), false
	}

	c.mu.Lock()
	c.snap = fetched
	c.mu.Unlock()
	return fetched, true
}

func (c *Client) fetch(ctx context.Context) (Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest-url", nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create request: %w", err)
	}
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Snapshot{}, fmt.Errorf("companion API status %d", resp.StatusCode)
	}

	var payload struct {
		StreamURL string `json:"streamUrl"`
		Title     string `json:"title"`
		Artist    string `json:"artist"`
		Album     string `json:"album"`
		ImageURL  string `json:"imageUrl"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snapshot{}, fmt.Errorf("decode response: %w", err)
	}

	streamURL := flacSuffix.ReplaceAllString(payload.StreamURL, ".mp3$1")

	return Snapshot{
		AudioURL:           streamURL,
		Title:              payload.Title,
		Secondary:          secondaryText(payload.Artist, payload.Album),
		CoverImageURL:      payload.ImageURL,
		BackgroundImageURL: payload.ImageURL,
	}, nil
}

// secondaryText renders "artist - album", or whichever part is present.
func secondaryText(artist, album string) string {
	switch {
	case artist != "" && album != "":
		return artist + " - " + album
	case artist != "":
		return artist
	default:
		return album
	}
}
