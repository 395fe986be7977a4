// Package server wires the skill endpoint, the companion metadata API, and
// the websocket now-playing feed onto one mux behind the shared middleware
// chain.
package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mavoice/skill-gateway/pkg/skill/alexa"
	"github.com/mavoice/skill-gateway/pkg/skill/config"
	"github.com/mavoice/skill-gateway/pkg/skill/dispatch"
	"github.com/mavoice/skill-gateway/pkg/skill/library"
	"github.com/mavoice/skill-gateway/pkg/skill/mw"
	"github.com/mavoice/skill-gateway/pkg/skill/nowplaying"
	"github.com/mavoice/skill-gateway/pkg/skill/playlist"
	"github.com/mavoice/skill-gateway/pkg/skill/resolve"
	"github.com/mavoice/skill-gateway/pkg/skill/visual"
)

// maxEnvelopeBytes bounds the decoded skill request body.
const maxEnvelopeBytes = 256 << 10

type Server struct {
	cfg    config.Config
	logger *slog.Logger
	mux    *http.ServeMux

	httpClient *http.Client
	dispatcher *dispatch.Dispatcher
	metadata   *nowplaying.Client

	// sourceStore receives pushes from the media source and feeds the
	// metadata client; displayStore receives pushes from the skill and
	// feeds the companion display plus the websocket hub.
	sourceStore  *visual.Store
	displayStore *visual.Store
	hub          *visual.Hub
}

func New(cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	hub := visual.NewHub(logger)
	sourceStore := visual.NewStore(nil, logger)
	displayStore := visual.NewStore(hub, logger)

	// The metadata client always talks HTTP so the co-located and external
	// companion deployments behave the same. Without an external companion
	// it loops back to this server's own /ma surface.
	metadataBase := cfg.CompanionBaseURL
	if metadataBase == "" {
		metadataBase = selfBaseURL(cfg.Addr)
	}
	metadata := nowplaying.NewClient(
		metadataBase+"/ma",
		cfg.CompanionUser, cfg.CompanionPassword,
		httpClient, cfg.FetchTimeout, logger,
	)

	var pusher nowplaying.Pusher = displayStore
	if cfg.CompanionBaseURL != "" {
		pusher = nowplaying.NewHTTPPusher(
			cfg.CompanionBaseURL+"/alexa",
			cfg.CompanionUser, cfg.CompanionPassword,
			httpClient, cfg.PushTimeout,
		)
	}

	s := &Server{
		cfg:          cfg,
		logger:       logger,
		mux:          http.NewServeMux(),
		httpClient:   httpClient,
		metadata:     metadata,
		sourceStore:  sourceStore,
		displayStore: displayStore,
		hub:          hub,
	}
	s.dispatcher = dispatch.New(dispatch.Options{
		Hostname:   cfg.Hostname,
		Metadata:   metadata,
		Library:    library.NewClient(cfg.LibraryBaseURL, cfg.LibraryToken, httpClient, cfg.SearchTimeout, logger),
		Prober:     resolve.NewProber(httpClient, cfg.ProbeTimeout),
		Playlists:  playlist.NewCache(cfg.PlaylistTTL),
		Pusher:     pusher,
		TrackLimit: cfg.ArtistTrackLimit,
		Logger:     logger,
	})

	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/readyz", s.handleReady)

	s.mux.HandleFunc("/alexa/skill", s.handleSkill)
	s.mux.Handle("/alexa/ws", s.hub)

	s.mux.Handle("/ma/push-url", s.companionAuth(s.sourceStore.HandlePush))
	s.mux.Handle("/ma/latest-url", s.companionAuth(s.sourceStore.HandleLatest))
	s.mux.Handle("/alexa/push-url", s.companionAuth(s.displayStore.HandlePush))
	s.mux.Handle("/alexa/latest-url", s.companionAuth(s.displayStore.HandleLatest))
}

func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = mw.Recover(s.logger, h)
	h = mw.AccessLog(s.logger, h)
	h = mw.RequestID(h)
	return h
}

func (s *Server) companionAuth(h http.HandlerFunc) http.Handler {
	return mw.BasicAuth(s.cfg.CompanionUser, s.cfg.CompanionPassword, h)
}

// handleSkill decodes one request envelope, dispatches it, and writes the
// response envelope. Malformed bodies get a 400; the dispatcher itself never
// fails.
func (s *Server) handleSkill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var env alexa.RequestEnvelope
	if err := json.NewDecoder(io.LimitReader(r.Body, maxEnvelopeBytes)).Decode(&env); err != nil {
		s.logger.Warn("malformed skill request", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), &env)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady reports degraded when the configured rewrite hostname would be
// rejected at resolve time. Playback still answers with a spoken error in
// that state; this surfaces it to operators before a user hits it.
func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if _, err := resolve.SanitizeHostname(s.cfg.Hostname); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func selfBaseURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://127.0.0.1" + addr
	}
	return "http://" + addr
}
