// Package alexa defines the voice-platform request and response envelopes the
// skill exchanges with the platform, plus a small response builder. Only the
// fields the skill reads are modeled; everything else passes through the JSON
// decoder untouched.
package alexa

import "strings"

// Request types the dispatcher switches on.
const (
	TypeLaunchRequest       = "LaunchRequest"
	TypeIntentRequest       = "IntentRequest"
	TypeSessionEndedRequest = "SessionEndedRequest"

	TypePlaybackStarted        = "AudioPlayer.PlaybackStarted"
	TypePlaybackFinished       = "AudioPlayer.PlaybackFinished"
	TypePlaybackStopped        = "AudioPlayer.PlaybackStopped"
	TypePlaybackNearlyFinished = "AudioPlayer.PlaybackNearlyFinished"
	TypePlaybackFailed         = "AudioPlayer.PlaybackFailed"

	TypePlayCommand     = "PlaybackController.PlayCommandIssued"
	TypeNextCommand     = "PlaybackController.NextCommandIssued"
	TypePreviousCommand = "PlaybackController.PreviousCommandIssued"
	TypePauseCommand    = "PlaybackController.PauseCommandIssued"

	TypeExceptionEncountered = "System.ExceptionEncountered"

	// Skill lifecycle events share the AlexaSkillEvent prefix.
	SkillEventPrefix = "AlexaSkillEvent."
)

// Intent names the dispatcher switches on.
const (
	IntentPlayAudio  = "PlayAudio"
	IntentPlayArtist = "PlayArtistIntent"
	IntentNext       = "AMAZON.NextIntent"
	IntentPrevious   = "AMAZON.PreviousIntent"
	IntentHelp       = "AMAZON.HelpIntent"
	IntentFallback   = "AMAZON.FallbackIntent"
	IntentCancel     = "AMAZON.CancelIntent"
	IntentStop       = "AMAZON.StopIntent"
	IntentPause      = "AMAZON.PauseIntent"
	IntentResume     = "AMAZON.ResumeIntent"
	IntentStartOver  = "AMAZON.StartOverIntent"
	IntentLoopOn     = "AMAZON.LoopOnIntent"
	IntentLoopOff    = "AMAZON.LoopOffIntent"
	IntentShuffleOn  = "AMAZON.ShuffleOnIntent"
	IntentShuffleOff = "AMAZON.ShuffleOffIntent"
)

type RequestEnvelope struct {
	Version string   `json:"version"`
	Session *Session `json:"session,omitempty"`
	Context Context  `json:"context"`
	Request Request  `json:"request"`
}

type Session struct {
	New       bool   `json:"new"`
	SessionID string `json:"sessionId"`
}

type Context struct {
	System System `json:"System"`
}

type System struct {
	User   User    `json:"user"`
	Device *Device `json:"device,omitempty"`
}

type User struct {
	UserID string `json:"userId"`
}

type Device struct {
	DeviceID            string              `json:"deviceId"`
	SupportedInterfaces SupportedInterfaces `json:"supportedInterfaces"`
}

type SupportedInterfaces struct {
	AudioPlayer *struct{} `json:"AudioPlayer,omitempty"`
}

type Request struct {
	Type      string  `json:"type"`
	RequestID string  `json:"requestId"`
	Locale    string  `json:"locale,omitempty"`
	Intent    *Intent `json:"intent,omitempty"`

	// AudioPlayer requests carry the token of the affected stream and, for
	// PlaybackFailed, an error description.
	Token string         `json:"token,omitempty"`
	Error *PlatformError `json:"error,omitempty"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

type PlatformError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SessionKey combines the platform user and device identifiers. Distinct
// devices of the same user never share a playlist.
func (e *RequestEnvelope) SessionKey() string {
	userID := e.Context.System.User.UserID
	deviceID := ""
	if e.Context.System.Device != nil {
		deviceID = e.Context.System.Device.DeviceID
	}
	return userID + ":" + deviceID
}

// SupportsAudioPlayer reports whether the originating device advertises the
// audio playback interface. Requests without device information (skill
// events) are treated as supported so they are not short-circuited.
func (e *RequestEnvelope) SupportsAudioPlayer() bool {
	dev := e.Context.System.Device
	if dev == nil {
		return true
	}
	return dev.SupportedInterfaces.AudioPlayer != nil
}

// SlotValue returns the trimmed value of the named intent slot, or "".
func (e *RequestEnvelope) SlotValue(name string) string {
	if e.Request.Intent == nil {
		return ""
	}
	slot, ok := e.Request.Intent.Slots[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(slot.Value)
}

// IntentName returns the intent name for IntentRequests, or "".
func (e *RequestEnvelope) IntentName() string {
	if e.Request.Intent == nil {
		return ""
	}
	return e.Request.Intent.Name
}
