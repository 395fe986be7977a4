package nowplaying

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// PushPayload is the wire shape of a now-playing update sent to the visual
// surface.
type PushPayload struct {
	StreamURL string `json:"streamUrl"`
	Title     string `json:"title"`
	Secondary string `json:"secondary"`
	ImageURL  string `json:"imageUrl"`
}

// Pusher delivers a now-playing update to the companion visual surface. url
// is the resolved stream URL actually sent to the device, which may differ
// from the snapshot's raw audio URL. Implementations are best-effort; the
// dispatcher logs and swallows every push error because a missed display
// update must never block audio.
type Pusher interface {
	Push(ctx context.Context, url string, snap Snapshot) error
}

// HTTPPusher posts updates to a remote companion surface. Used when the
// visual surface is not co-located in this process.
type HTTPPusher struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	timeout    time.Duration
}

func NewHTTPPusher(baseURL, username, password string, httpClient *http.Client, timeout time.Duration) *HTTPPusher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPPusher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

func (p *HTTPPusher) Push(ctx context.Context, url string, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	body, err := json.Marshal(PushPayload{
		StreamURL: url,
		Title:     snap.Title,
		Secondary: snap.Secondary,
		ImageURL:  snap.CoverImageURL,
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/push-url", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.username != "" && p.password != "" {
		req.SetBasicAuth(p.username, p.password)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("push status %d", resp.StatusCode)
	}
	return nil
}
