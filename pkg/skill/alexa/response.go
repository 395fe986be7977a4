package alexa

type ResponseEnvelope struct {
	Version  string   `json:"version"`
	Response Response `json:"response"`
}

type Response struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	Directives       []Directive   `json:"directives,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

// Directive is the playback instruction sent back to the device. Type is one
// of AudioPlayer.Play, AudioPlayer.Stop, AudioPlayer.ClearQueue.
type Directive struct {
	Type          string     `json:"type"`
	PlayBehavior  string     `json:"playBehavior,omitempty"`
	AudioItem     *AudioItem `json:"audioItem,omitempty"`
	ClearBehavior string     `json:"clearBehavior,omitempty"`
}

type AudioItem struct {
	Stream Stream `json:"stream"`
}

type Stream struct {
	Token                string `json:"token"`
	URL                  string `json:"url"`
	OffsetInMilliseconds int64  `json:"offsetInMilliseconds"`
}

const (
	DirectivePlay       = "AudioPlayer.Play"
	DirectiveStop       = "AudioPlayer.Stop"
	DirectiveClearQueue = "AudioPlayer.ClearQueue"

	PlayBehaviorReplaceAll = "REPLACE_ALL"

	ClearBehaviorEnqueued = "CLEAR_ENQUEUED"
)

// Builder accumulates a response the way the platform SDKs chain it.
type Builder struct {
	resp Response
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) Speak(text string) *Builder {
	if text != "" {
		b.resp.OutputSpeech = &OutputSpeech{Type: "PlainText", Text: text}
	}
	return b
}

// Ask sets a reprompt and keeps the session open for the answer.
func (b *Builder) Ask(text string) *Builder {
	b.resp.Reprompt = &Reprompt{OutputSpeech: OutputSpeech{Type: "PlainText", Text: text}}
	b.resp.ShouldEndSession = false
	return b
}

// Play adds a replace-all playback directive for url starting at offset
// milliseconds. The stream token is the URL itself.
func (b *Builder) Play(url string, offset int64) *Builder {
	b.resp.Directives = append(b.resp.Directives, Directive{
		Type:         DirectivePlay,
		PlayBehavior: PlayBehaviorReplaceAll,
		AudioItem: &AudioItem{Stream: Stream{
			Token:                url,
			URL:                  url,
			OffsetInMilliseconds: offset,
		}},
	})
	return b
}

func (b *Builder) Stop() *Builder {
	b.resp.Directives = append(b.resp.Directives, Directive{Type: DirectiveStop})
	return b
}

func (b *Builder) ClearQueue() *Builder {
	b.resp.Directives = append(b.resp.Directives, Directive{
		Type:          DirectiveClearQueue,
		ClearBehavior: ClearBehaviorEnqueued,
	})
	return b
}

func (b *Builder) EndSession(end bool) *Builder {
	b.resp.ShouldEndSession = end
	return b
}

func (b *Builder) Envelope() ResponseEnvelope {
	return ResponseEnvelope{Version: "1.0", Response: b.resp}
}
