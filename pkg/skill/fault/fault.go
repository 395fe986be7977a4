// Package fault defines the canonical error taxonomy for the skill. Every
// component returns a *Fault for conditions the dispatcher must turn into a
// spoken response; the dispatcher recovers all of them exactly once, so no
// error ever escapes to the voice platform as an unhandled failure.
package fault

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindInvalidHostnameScheme reports a configured hostname that explicitly
	// uses the insecure http scheme.
	KindInvalidHostnameScheme Kind = "invalid_hostname_scheme"
	// KindMissingHostname reports that no target hostname is configured.
	KindMissingHostname Kind = "missing_hostname"
	// KindUnreachableAudio reports a resolved stream URL that failed the
	// reachability probe.
	KindUnreachableAudio Kind = "unreachable_audio"
	// KindEmptyQueue reports a queue-relative intent with no live playlist.
	KindEmptyQueue Kind = "empty_queue"
	// KindLookupFailure reports that the music-library backend could not be
	// reached at all.
	KindLookupFailure Kind = "lookup_failure"
	// KindUnhandled covers anything unexpected; surfaced as a generic apology.
	KindUnhandled Kind = "unhandled"
)

type Fault struct {
	Kind    Kind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Fault) Unwrap() error { return f.Err }

func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind from an error chain, defaulting to
// KindUnhandled for anything that is not a *Fault.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) && f != nil {
		return f.Kind
	}
	return KindUnhandled
}

// Is supports errors.Is against a bare Kind sentinel, e.g.
// errors.Is(err, fault.New(fault.KindEmptyQueue, "")).
func (f *Fault) Is(target error) bool {
	var other *Fault
	if errors.As(target, &other) && other != nil {
		return f.Kind == other.Kind
	}
	return false
}
