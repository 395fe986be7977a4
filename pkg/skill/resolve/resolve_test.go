package resolve

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mavoice/skill-gateway/pkg/skill/fault"
)

func TestSanitizeHostname(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		kind fault.Kind
	}{
		{"bare host", "stream.example.com", "https://stream.example.com", ""},
		{"https kept", "https://stream.example.com", "https://stream.example.com", ""},
		{"trailing slash", "stream.example.com/", "https://stream.example.com", ""},
		{"double quoted", `"stream.example.com"`, "https://stream.example.com", ""},
		{"single quoted", "'stream.example.com'", "https://stream.example.com", ""},
		{"padded", "  stream.example.com  ", "https://stream.example.com", ""},
		{"http refused", "http://bad.example.com", "", fault.KindInvalidHostnameScheme},
		{"empty", "", "", fault.KindMissingHostname},
		{"only quotes", `""`, "", fault.KindMissingHostname},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SanitizeHostname(tc.in)
			if tc.kind != "" {
				if err == nil {
					t.Fatalf("expected %s fault, got %q", tc.kind, got)
				}
				if fault.KindOf(err) != tc.kind {
					t.Fatalf("kind=%s, want %s", fault.KindOf(err), tc.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("err=%v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRewrite(t *testing.T) {
	host := "https://stream.example.com"
	cases := []struct{ in, want string }{
		{"http://10.0.0.5:8095/stream.mp3", "https://stream.example.com/stream.mp3"},
		{"https://192.168.1.2/live", "https://stream.example.com/live"},
		{"http://10.0.0.5/a b.mp3", "https://stream.example.com/a%20b.mp3"},
		{"https://already.example.com/x.mp3", "https://already.example.com/x.mp3"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Rewrite(tc.in, host); got != tc.want {
			t.Errorf("Rewrite(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolveIdempotent(t *testing.T) {
	first, err := Resolve("http://10.0.0.5:8095/stream.mp3", "stream.example.com")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := Resolve(first, "stream.example.com")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first != second {
		t.Errorf("not idempotent: %q != %q", first, second)
	}
}

func TestResolveBadScheme(t *testing.T) {
	url, err := Resolve("http://10.0.0.5/stream.mp3", "http://bad.example.com")
	if err == nil {
		t.Fatalf("expected fault, got %q", url)
	}
	if fault.KindOf(err) != fault.KindInvalidHostnameScheme {
		t.Errorf("kind=%s", fault.KindOf(err))
	}
	if url != "" {
		t.Errorf("no URL must be produced on failure, got %q", url)
	}
}

func TestProberHeadOK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("method=%s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	p := NewProber(ts.Client(), 0)
	if err := p.Verify(context.Background(), ts.URL); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestProberFallsBackToGet(t *testing.T) {
	var sawGet bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusMethodNotAllowed)
		case http.MethodGet:
			sawGet = true
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer ts.Close()

	p := NewProber(ts.Client(), 0)
	if err := p.Verify(context.Background(), ts.URL); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !sawGet {
		t.Error("expected GET fallback after HEAD rejection")
	}
}

func TestProberNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	p := NewProber(ts.Client(), 0)
	err := p.Verify(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected fault for 404")
	}
	if fault.KindOf(err) != fault.KindUnreachableAudio {
		t.Errorf("kind=%s", fault.KindOf(err))
	}
}

func TestProberNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // refuse connections

	p := NewProber(nil, 0)
	err := p.Verify(context.Background(), ts.URL)
	if err == nil {
		t.Fatal("expected fault for connection failure")
	}
	var f *fault.Fault
	if !errors.As(err, &f) || f.Kind != fault.KindUnreachableAudio {
		t.Errorf("err=%v", err)
	}
}
