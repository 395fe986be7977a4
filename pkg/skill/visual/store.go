// Package visual hosts the companion metadata surfaces: an in-process store
// behind the push-url/latest-url HTTP API, and a websocket hub that feeds
// connected display clients each now-playing update as it happens.
package visual

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mavoice/skill-gateway/pkg/skill/nowplaying"
)

// Payload is the stored metadata record. Pushes from the media source carry
// artist/album; pushes from the skill carry the pre-rendered secondary line.
type Payload struct {
	StreamURL string `json:"streamUrl"`
	Title     string `json:"title,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	Secondary string `json:"secondary,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
}

// Store keeps the last pushed metadata record. Nothing survives a restart;
// the media source re-pushes on its next track change.
type Store struct {
	logger *slog.Logger
	hub    *Hub

	mu      sync.Mutex
	payload Payload
	set     bool
}

// NewStore builds a store. hub may be nil; when present, every accepted push
// is broadcast to its subscribers.
func NewStore(hub *Hub, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger, hub: hub}
}

func (s *Store) Set(p Payload) {
	s.mu.Lock()
	s.payload = p
	s.set = true
	s.mu.Unlock()

	if s.hub != nil {
		s.hub.Broadcast(p)
	}
}

func (s *Store) Latest() (Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payload, s.set
}

// Push implements nowplaying.Pusher for the co-located case: the skill writes
// straight into the store, no HTTP round trip.
func (s *Store) Push(_ context.Context, url string, snap nowplaying.Snapshot) error {
	s.Set(Payload{
		StreamURL: url,
		Title:     snap.Title,
		Secondary: snap.Secondary,
		ImageURL:  snap.CoverImageURL,
	})
	return nil
}

// HandlePush accepts POST push-url. A push without streamUrl is rejected.
func (s *Store) HandlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var p Payload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.StreamURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required fields"})
		return
	}
	s.Set(p)
	s.logger.Info("metadata pushed", "title", p.Title, "stream_url", p.StreamURL)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleLatest serves GET latest-url, 404 until something has been pushed.
func (s *Store) HandleLatest(w http.ResponseWriter, r *http.Request) {
	p, ok := s.Latest()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "No URL available, please check if the media source has pushed a URL to the API",
		})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
