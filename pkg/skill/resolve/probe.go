package resolve

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mavoice/skill-gateway/pkg/skill/fault"
)

// Prober checks that a resolved stream URL answers over HTTP before playback
// is attempted. HEAD first; servers that reject HEAD get a streamed GET whose
// body is discarded immediately.
type Prober struct {
	httpClient *http.Client
	timeout    time.Duration
}

func NewProber(httpClient *http.Client, timeout time.Duration) *Prober {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{httpClient: httpClient, timeout: timeout}
}

// Verify returns nil when url answers with a status below 400. Any transport
// failure or status >= 400 is reported as an unreachable-audio fault and the
// caller must not emit a playback directive.
func (p *Prober) Verify(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status, err := p.request(ctx, http.MethodHead, url)
	if err == nil && status < 400 {
		return nil
	}
	if err == nil {
		// HEAD rejected or errored at the HTTP level; retry as a stream GET.
		status, err = p.request(ctx, http.MethodGet, url)
		if err == nil && status < 400 {
			return nil
		}
	}
	if err != nil {
		return fault.Wrap(fault.KindUnreachableAudio, fmt.Sprintf("probe %s", url), err)
	}
	return fault.New(fault.KindUnreachableAudio, fmt.Sprintf("probe %s: HTTP %d", url, status))
}

func (p *Prober) request(ctx context.Context, method, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}
