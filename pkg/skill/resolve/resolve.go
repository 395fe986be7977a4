// Package resolve rewrites raw stream URLs onto the configured public
// hostname and verifies they are reachable before they are ever handed to a
// playback device. Devices fail silently on a dead stream, so one synchronous
// probe up front is cheaper than debugging a mute speaker.
package resolve

import (
	"regexp"
	"strings"

	"github.com/mavoice/skill-gateway/pkg/skill/fault"
)

// ipHostPrefix matches scheme://ipv4[:port] at the start of a URL.
var ipHostPrefix = regexp.MustCompile(`^https?://\d+\.\d+\.\d+\.\d+(?::\d+)?`)

// SanitizeHostname normalizes a configured hostname into an https:// base.
// The raw value is trimmed, unwrapped of matching surrounding quotes, and
// stripped of trailing slashes. An explicit http:// scheme is refused; a
// missing value is a distinct fault so callers can speak the right message.
func SanitizeHostname(raw string) (string, error) {
	h := strings.TrimSpace(raw)
	if len(h) >= 2 {
		if (h[0] == '"' && h[len(h)-1] == '"') || (h[0] == '\'' && h[len(h)-1] == '\'') {
			h = strings.TrimSpace(h[1 : len(h)-1])
		}
	}
	h = strings.Trim(h, `"' `)
	if h == "" {
		return "", fault.New(fault.KindMissingHostname, "no hostname configured")
	}

	h = strings.TrimRight(h, "/")
	switch {
	case strings.HasPrefix(h, "https://"):
		return h, nil
	case strings.HasPrefix(h, "http://"):
		return "", fault.New(fault.KindInvalidHostnameScheme, "configured hostname uses http scheme")
	}
	return "https://" + h, nil
}

// Rewrite replaces an IPv4 host prefix in rawURL with hostname and
// percent-encodes literal spaces. URLs without an IP-literal host pass
// through otherwise unchanged, which makes Rewrite idempotent.
func Rewrite(rawURL, hostname string) string {
	if rawURL == "" {
		return rawURL
	}
	out := ipHostPrefix.ReplaceAllString(rawURL, hostname)
	return strings.ReplaceAll(out, " ", "%20")
}

// Resolve sanitizes the configured hostname and rewrites rawURL onto it.
func Resolve(rawURL, configuredHostname string) (string, error) {
	hostname, err := SanitizeHostname(configuredHostname)
	if err != nil {
		return "", err
	}
	return Rewrite(rawURL, hostname), nil
}
