// Package speech holds the spoken strings the skill can answer with.
package speech

const (
	// Welcome is intentionally empty: launching playback speaks nothing and
	// lets the stream start immediately.
	Welcome = ""

	Help        = "Welcome to %s. You can play, stop, resume listening. How can I help you?"
	Unhandled   = "Sorry, I could not understand what you've just said."
	NotPossible = "This is radio, you can not do that. You can ask me to stop or pause to stop listening."
	Goodbye     = "Goodbye."

	DeviceNotSupported = "Sorry, this skill is not supported on this device."

	NoStream     = "Sorry, I could not retrieve the latest music stream from the API. Please check your setup."
	Unreachable  = "Sorry, I can't reach the audio file. Please check that your stream URL is internet accessible via HTTPS at the hostname you provided."
	HTTPScheme   = "The configured domain uses an unsupported scheme, http. Please check your hostname setting."
	NoHostname   = "You did not specify a valid hostname. Please check your hostname setting."
	EmptyQueue   = "I have nothing queued up. Say for example: play David Guetta."
	AskArtist    = "Which artist do you want to listen to?"
	AskArtistEx  = "Say for example: play David Guetta."
	LibraryDown  = "Sorry, I can't access the music library right now."
	NothingFound = "I couldn't find any track by %s in your library."
	StartPlaying = "Alright. Starting %s."

	// DefaultStationName fills the Help message when no metadata has been
	// fetched yet.
	DefaultStationName = "your music assistant"
)
