package alexa

import (
	"encoding/json"
	"testing"
)

const sampleIntentRequest = `{
  "version": "1.0",
  "session": {"new": true, "sessionId": "amzn1.echo-api.session.1"},
  "context": {
    "System": {
      "user": {"userId": "amzn1.ask.account.a"},
      "device": {
        "deviceId": "amzn1.ask.device.b",
        "supportedInterfaces": {"AudioPlayer": {}}
      }
    }
  },
  "request": {
    "type": "IntentRequest",
    "requestId": "amzn1.echo-api.request.1",
    "locale": "en-US",
    "intent": {
      "name": "PlayArtistIntent",
      "slots": {"artist": {"name": "artist", "value": "  David Guetta "}}
    }
  }
}`

func decodeEnvelope(t *testing.T, raw string) *RequestEnvelope {
	t.Helper()
	var env RequestEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &env
}

func TestRequestEnvelopeAccessors(t *testing.T) {
	env := decodeEnvelope(t, sampleIntentRequest)

	if got := env.SessionKey(); got != "amzn1.ask.account.a:amzn1.ask.device.b" {
		t.Errorf("SessionKey=%q", got)
	}
	if !env.SupportsAudioPlayer() {
		t.Error("SupportsAudioPlayer=false")
	}
	if got := env.IntentName(); got != IntentPlayArtist {
		t.Errorf("IntentName=%q", got)
	}
	if got := env.SlotValue("artist"); got != "David Guetta" {
		t.Errorf("SlotValue=%q, want trimmed", got)
	}
	if got := env.SlotValue("missing"); got != "" {
		t.Errorf("SlotValue(missing)=%q", got)
	}
}

func TestSupportsAudioPlayer(t *testing.T) {
	env := &RequestEnvelope{}
	if !env.SupportsAudioPlayer() {
		t.Error("no device info should count as supported")
	}

	env.Context.System.Device = &Device{DeviceID: "d"}
	if env.SupportsAudioPlayer() {
		t.Error("device without AudioPlayer interface should not be supported")
	}
}

func TestBuilderPlay(t *testing.T) {
	env := NewBuilder().
		Speak("hi").
		Play("https://stream.example.com/a.mp3", 0).
		EndSession(true).
		Envelope()

	if env.Version != "1.0" {
		t.Errorf("Version=%q", env.Version)
	}
	if env.Response.OutputSpeech == nil || env.Response.OutputSpeech.Text != "hi" {
		t.Errorf("OutputSpeech=%+v", env.Response.OutputSpeech)
	}
	if !env.Response.ShouldEndSession {
		t.Error("ShouldEndSession=false")
	}
	if len(env.Response.Directives) != 1 {
		t.Fatalf("directives=%d", len(env.Response.Directives))
	}
	d := env.Response.Directives[0]
	if d.Type != DirectivePlay || d.PlayBehavior != PlayBehaviorReplaceAll {
		t.Errorf("directive=%+v", d)
	}
	if d.AudioItem.Stream.Token != d.AudioItem.Stream.URL {
		t.Error("stream token should equal url")
	}
}

func TestBuilderSpeakEmptyAddsNothing(t *testing.T) {
	env := NewBuilder().Speak("").Envelope()
	if env.Response.OutputSpeech != nil {
		t.Errorf("OutputSpeech=%+v, want nil for empty text", env.Response.OutputSpeech)
	}
}

func TestBuilderAskKeepsSessionOpen(t *testing.T) {
	env := NewBuilder().Speak("q").Ask("again?").Envelope()
	if env.Response.ShouldEndSession {
		t.Error("Ask should keep the session open")
	}
	if env.Response.Reprompt == nil || env.Response.Reprompt.OutputSpeech.Text != "again?" {
		t.Errorf("Reprompt=%+v", env.Response.Reprompt)
	}
}
