// Package library looks up playable tracks in the music-library backend. The
// backend is only ever asked for library content: search an artist by name,
// list that artist's tracks, resolve each track to a directly playable URL.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mavoice/skill-gateway/pkg/skill/fault"
	"github.com/mavoice/skill-gateway/pkg/skill/playlist"
)

const artistSearchLimit = 10

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

func NewClient(baseURL, token string, httpClient *http.Client, timeout time.Duration, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		timeout:    timeout,
		logger:     logger,
	}
}

// Search returns up to limit playable tracks by the first artist matching
// name. Tracks without a resolvable playback URL are skipped. An empty
// result is not an error; only failure to reach the backend is, so callers
// can distinguish "nothing found" from "library down".
func (c *Client) Search(ctx context.Context, name string, limit int) ([]playlist.Track, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	artist, found, err := c.searchArtist(ctx, name)
	if err != nil {
		return nil, fault.Wrap(fault.KindLookupFailure, "artist search", err)
	}
	if !found {
		return nil, nil
	}

	items, err := c.artistTracks(ctx, artist.ItemID, limit)
	if err != nil {
		return nil, fault.Wrap(fault.KindLookupFailure, "list artist tracks", err)
	}

	tracks := make([]playlist.Track, 0, len(items))
	for _, item := range items {
		if item.ItemID == "" {
			continue
		}
		playURL, err := c.trackPreviewURL(ctx, item.ItemID)
		if err != nil || playURL == "" {
			// Unresolvable track, skip rather than fail the whole query.
			c.logger.Debug("skipping track without playable url", "track", item.Name, "error", err)
			continue
		}

		trackArtist := name
		if len(item.Artists) > 0 && item.Artists[0].Name != "" {
			trackArtist = item.Artists[0].Name
		}
		title := item.Name
		if title == "" {
			title = "Unknown title"
		}
		tracks = append(tracks, playlist.Track{Title: title, Artist: trackArtist, URL: playURL})
	}
	return tracks, nil
}

type artistItem struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
}

type trackItem struct {
	ItemID  string       `json:"item_id"`
	Name    string       `json:"name"`
	Artists []artistItem `json:"artists"`
}

func (c *Client) searchArtist(ctx context.Context, name string) (artistItem, bool, error) {
	q := url.Values{}
	q.Set("query", name)
	q.Set("media_types", "artist")
	q.Set("limit", fmt.Sprint(artistSearchLimit))
	q.Set("library_only", "true")

	var decoded struct {
		Artists []artistItem `json:"artists"`
	}
	if err := c.getJSON(ctx, "/api/music/search?"+q.Encode(), &decoded); err != nil {
		return artistItem{}, false, err
	}
	for _, a := range decoded.Artists {
		if a.ItemID != "" {
			return a, true, nil
		}
	}
	return artistItem{}, false, nil
}

func (c *Client) artistTracks(ctx context.Context, artistID string, limit int) ([]trackItem, error) {
	path := fmt.Sprintf("/api/music/artists/%s/tracks?limit=%d", url.PathEscape(artistID), limit)
	var decoded struct {
		Tracks []trackItem `json:"tracks"`
	}
	if err := c.getJSON(ctx, path, &decoded); err != nil {
		return nil, err
	}
	return decoded.Tracks, nil
}

func (c *Client) trackPreviewURL(ctx context.Context, trackID string) (string, error) {
	path := fmt.Sprintf("/api/music/tracks/%s/preview", url.PathEscape(trackID))
	var decoded struct {
		URL string `json:"url"`
	}
	if err := c.getJSON(ctx, path, &decoded); err != nil {
		return "", err
	}
	return decoded.URL, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("library error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
