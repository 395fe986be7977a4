// Package dispatch routes decoded voice-platform requests to exactly one
// handler and builds the platform response. All component faults are
// recovered here and turned into spoken messages; the platform always gets a
// well-formed response back.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mavoice/skill-gateway/pkg/skill/alexa"
	"github.com/mavoice/skill-gateway/pkg/skill/fault"
	"github.com/mavoice/skill-gateway/pkg/skill/nowplaying"
	"github.com/mavoice/skill-gateway/pkg/skill/playlist"
	"github.com/mavoice/skill-gateway/pkg/skill/resolve"
	"github.com/mavoice/skill-gateway/pkg/skill/speech"
)

// MetadataSource is the now-playing snapshot boundary (*nowplaying.Client).
type MetadataSource interface {
	FetchLatest(ctx context.Context) (nowplaying.Snapshot, bool)
	Snapshot() nowplaying.Snapshot
}

// TrackSearcher is the music-library boundary (*library.Client).
type TrackSearcher interface {
	Search(ctx context.Context, name string, limit int) ([]playlist.Track, error)
}

// Prober is the reachability-check boundary (*resolve.Prober).
type Prober interface {
	Verify(ctx context.Context, url string) error
}

type Dispatcher struct {
	logger *slog.Logger

	// hostname is the raw configured rewrite target; it is sanitized per
	// turn so a bad value surfaces as a spoken message, not a boot failure.
	hostname string

	metadata   MetadataSource
	library    TrackSearcher
	prober     Prober
	playlists  *playlist.Cache
	pusher     nowplaying.Pusher
	trackLimit int
}

type Options struct {
	Hostname   string
	Metadata   MetadataSource
	Library    TrackSearcher
	Prober     Prober
	Playlists  *playlist.Cache
	Pusher     nowplaying.Pusher
	TrackLimit int
	Logger     *slog.Logger
}

func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	trackLimit := opts.TrackLimit
	if trackLimit <= 0 {
		trackLimit = 50
	}
	return &Dispatcher{
		logger:     logger,
		hostname:   opts.Hostname,
		metadata:   opts.Metadata,
		library:    opts.Library,
		prober:     opts.Prober,
		playlists:  opts.Playlists,
		pusher:     opts.Pusher,
		trackLimit: trackLimit,
	}
}

// Dispatch handles one decoded request end to end. It never panics outward:
// anything unexpected is caught, logged, and answered with the generic
// apology plus the help reprompt, keeping the session open for a retry.
func (d *Dispatcher) Dispatch(ctx context.Context, env *alexa.RequestEnvelope) (resp alexa.ResponseEnvelope) {
	defer func() {
		if v := recover(); v != nil {
			d.logger.Error("handler panic", "panic", v, "request_type", env.Request.Type)
			resp = alexa.NewBuilder().
				Speak(speech.Unhandled).
				Ask(d.helpText()).
				Envelope()
		}
	}()

	// Devices without audio support are refused before anything else runs.
	if !env.SupportsAudioPlayer() {
		return alexa.NewBuilder().Speak(speech.DeviceNotSupported).EndSession(true).Envelope()
	}

	d.logRequest(env)

	switch env.Request.Type {
	case alexa.TypeLaunchRequest:
		return d.playLatest(ctx, speech.Welcome)

	case alexa.TypeIntentRequest:
		return d.dispatchIntent(ctx, env)

	case alexa.TypePlayCommand:
		return d.playLatest(ctx, "")

	case alexa.TypePlaybackNearlyFinished:
		// Live streams have no natural end: keep the same URL going.
		return d.replaySilently(ctx)

	case alexa.TypePlaybackFailed:
		if env.Request.Error != nil {
			d.logger.Warn("playback failed on device",
				"error_type", env.Request.Error.Type,
				"error_message", env.Request.Error.Message)
		}
		return d.replaySilently(ctx)

	case alexa.TypePauseCommand:
		return alexa.NewBuilder().Stop().EndSession(false).Envelope()

	case alexa.TypePlaybackStarted, alexa.TypePlaybackFinished, alexa.TypePlaybackStopped,
		alexa.TypeNextCommand, alexa.TypePreviousCommand,
		alexa.TypeSessionEndedRequest:
		return alexa.NewBuilder().Envelope()

	case alexa.TypeExceptionEncountered:
		d.logger.Error("platform reported exception", "request_id", env.Request.RequestID)
		return alexa.NewBuilder().Envelope()
	}

	if strings.HasPrefix(env.Request.Type, alexa.SkillEventPrefix) {
		return alexa.NewBuilder().Envelope()
	}

	return alexa.NewBuilder().Speak(speech.Unhandled).EndSession(true).Envelope()
}

func (d *Dispatcher) dispatchIntent(ctx context.Context, env *alexa.RequestEnvelope) alexa.ResponseEnvelope {
	switch env.IntentName() {
	case alexa.IntentPlayAudio:
		return d.playLatest(ctx, "")

	case alexa.IntentResume:
		return d.playLatest(ctx, speech.Welcome)

	case alexa.IntentPlayArtist:
		return d.playArtist(ctx, env)

	case alexa.IntentNext:
		return d.advanceQueue(ctx, env, +1)

	case alexa.IntentPrevious:
		return d.advanceQueue(ctx, env, -1)

	case alexa.IntentHelp:
		return alexa.NewBuilder().Speak(d.helpText()).EndSession(false).Envelope()

	case alexa.IntentPause:
		return alexa.NewBuilder().Stop().EndSession(false).Envelope()

	case alexa.IntentCancel, alexa.IntentStop:
		return alexa.NewBuilder().Stop().Speak(speech.Goodbye).EndSession(true).Envelope()

	case alexa.IntentStartOver, alexa.IntentLoopOn, alexa.IntentLoopOff,
		alexa.IntentShuffleOn, alexa.IntentShuffleOff:
		return alexa.NewBuilder().Speak(speech.NotPossible).EndSession(false).Envelope()

	case alexa.IntentFallback:
		return alexa.NewBuilder().Speak(speech.Unhandled).EndSession(true).Envelope()
	}

	return alexa.NewBuilder().Speak(speech.Unhandled).EndSession(true).Envelope()
}

// playLatest refreshes the now-playing snapshot and plays its stream URL.
func (d *Dispatcher) playLatest(ctx context.Context, text string) alexa.ResponseEnvelope {
	snap, _ := d.metadata.FetchLatest(ctx)
	if snap.AudioURL == "" {
		d.logger.Warn("no stream url available")
		return alexa.NewBuilder().Speak(speech.NoStream).EndSession(true).Envelope()
	}
	return d.play(ctx, snap.AudioURL, text)
}

func (d *Dispatcher) playArtist(ctx context.Context, env *alexa.RequestEnvelope) alexa.ResponseEnvelope {
	name := env.SlotValue("artist")
	if name == "" {
		return alexa.NewBuilder().Speak(speech.AskArtist).Ask(speech.AskArtistEx).Envelope()
	}

	tracks, err := d.library.Search(ctx, name, d.trackLimit)
	if err != nil {
		d.logger.Error("artist lookup failed", "artist", name, "error", err)
		return alexa.NewBuilder().Speak(speech.LibraryDown).EndSession(true).Envelope()
	}
	if len(tracks) == 0 {
		return alexa.NewBuilder().
			Speak(fmt.Sprintf(speech.NothingFound, name)).
			EndSession(true).
			Envelope()
	}

	d.playlists.Start(env.SessionKey(), tracks)
	return d.play(ctx, tracks[0].URL, fmt.Sprintf(speech.StartPlaying, name))
}

func (d *Dispatcher) advanceQueue(ctx context.Context, env *alexa.RequestEnvelope, delta int) alexa.ResponseEnvelope {
	track, err := d.playlists.Advance(env.SessionKey(), delta)
	if err != nil {
		// Expired and absent queues look the same: prompt for a new query
		// and keep the session open for it.
		return alexa.NewBuilder().Speak(speech.EmptyQueue).Ask(speech.AskArtistEx).Envelope()
	}
	return d.play(ctx, track.URL, "")
}

// play is the single path that emits a playback directive: resolve the URL,
// probe it, emit the replace-all directive, then push metadata to the visual
// surface. Resolve and probe faults become spoken errors that end the turn.
func (d *Dispatcher) play(ctx context.Context, rawURL, text string) alexa.ResponseEnvelope {
	resolved, err := resolve.Resolve(rawURL, d.hostname)
	if err != nil {
		d.logger.Error("url resolution failed", "url", rawURL, "error", err)
		return alexa.NewBuilder().Speak(spokenFor(err)).EndSession(true).Envelope()
	}
	if err := d.prober.Verify(ctx, resolved); err != nil {
		d.logger.Error("stream unreachable", "url", resolved, "error", err)
		return alexa.NewBuilder().Speak(speech.Unreachable).EndSession(true).Envelope()
	}

	d.pushMetadata(ctx, resolved)

	return alexa.NewBuilder().
		Speak(text).
		Play(resolved, 0).
		EndSession(true).
		Envelope()
}

// replaySilently re-resolves the snapshot URL and re-emits it without
// speech. Failures yield an empty response: there is no conversation to
// speak into when the device reports playback state.
func (d *Dispatcher) replaySilently(ctx context.Context) alexa.ResponseEnvelope {
	snap, _ := d.metadata.FetchLatest(ctx)
	if snap.AudioURL == "" {
		d.logger.Warn("no stream url available for replay")
		return alexa.NewBuilder().Envelope()
	}
	resolved, err := resolve.Resolve(snap.AudioURL, d.hostname)
	if err != nil {
		d.logger.Error("url resolution failed on replay", "error", err)
		return alexa.NewBuilder().Envelope()
	}
	if err := d.prober.Verify(ctx, resolved); err != nil {
		d.logger.Error("stream unreachable on replay", "url", resolved, "error", err)
		return alexa.NewBuilder().Envelope()
	}
	d.pushMetadata(ctx, resolved)
	return alexa.NewBuilder().Play(resolved, 0).EndSession(true).Envelope()
}

// pushMetadata is best-effort: a missed display update never blocks audio.
func (d *Dispatcher) pushMetadata(ctx context.Context, resolvedURL string) {
	if d.pusher == nil {
		return
	}
	if err := d.pusher.Push(ctx, resolvedURL, d.metadata.Snapshot()); err != nil {
		d.logger.Warn("metadata push failed", "error", err)
	}
}

func (d *Dispatcher) helpText() string {
	station := d.metadata.Snapshot().Title
	if station == "" {
		station = speech.DefaultStationName
	}
	return fmt.Sprintf(speech.Help, station)
}

func (d *Dispatcher) logRequest(env *alexa.RequestEnvelope) {
	if env.Request.Type == alexa.TypeIntentRequest {
		d.logger.Info("incoming intent", "intent", env.IntentName(), "session_key", env.SessionKey())
		return
	}
	d.logger.Info("incoming request", "request_type", env.Request.Type)
}

func spokenFor(err error) string {
	switch fault.KindOf(err) {
	case fault.KindInvalidHostnameScheme:
		return speech.HTTPScheme
	case fault.KindMissingHostname:
		return speech.NoHostname
	case fault.KindUnreachableAudio:
		return speech.Unreachable
	case fault.KindEmptyQueue:
		return speech.EmptyQueue
	case fault.KindLookupFailure:
		return speech.LibraryDown
	}
	return speech.Unhandled
}
