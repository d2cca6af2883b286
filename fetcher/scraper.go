package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Strategy names accepted by New
const (
	StrategyPlain      = "plain"
	StrategyCloudflare = "cloudflare"
	StrategyBrowser    = "browser"
)

// DefaultUserAgent is the browser identification sent by the HTTP strategies
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrChallengeBlocked is reported when a strategy returned an anti-bot
// interstitial instead of the real page
var ErrChallengeBlocked = errors.New("challenge page returned instead of content")

// Fetcher interface defines the contract for fetching implementations
type Fetcher interface {
	// Fetch retrieves the markup of a single page
	Fetch(ctx context.Context, url string) (string, error)
	// Name identifies the strategy in logs and failure summaries
	Name() string
}

// Options configures the HTTP based strategies
type Options struct {
	UserAgent    string
	Headers      map[string]string
	Timeout      time.Duration
	RequestDelay time.Duration // Minimum spacing between requests of the cloudflare strategy
}

// BrowserOptions configures the headless browser strategy
type BrowserOptions struct {
	Bin              string // Browser binary; looked up on the system when empty
	ViewportWidth    int
	ViewportHeight   int
	PageLoadTimeout  time.Duration
	SettleTimeout    time.Duration // Upper bound for the challenge to resolve
	PollInterval     time.Duration
	ReadySelector    string   // Present once the real content rendered
	ChallengeMarkers []string // Present while the challenge is still showing
}

// DefaultOptions returns the HTTP options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		UserAgent:    DefaultUserAgent,
		Timeout:      30 * time.Second,
		RequestDelay: 2 * time.Second,
	}
}

// DefaultBrowserOptions returns the browser options used when nothing is configured
func DefaultBrowserOptions() BrowserOptions {
	return BrowserOptions{
		ViewportWidth:    1920,
		ViewportHeight:   1080,
		PageLoadTimeout:  60 * time.Second,
		SettleTimeout:    15 * time.Second,
		PollInterval:     500 * time.Millisecond,
		ChallengeMarkers: DefaultChallengeMarkers(),
	}
}

// New creates the fetcher registered under name
func New(name string, opts Options, browserOpts BrowserOptions) (Fetcher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategyPlain:
		return NewCollyFetcher(opts), nil
	case StrategyCloudflare:
		return NewCloudflareFetcher(opts), nil
	case StrategyBrowser:
		return NewRodFetcher(browserOpts), nil
	default:
		return nil, fmt.Errorf("unknown fetch strategy %q (must be %q, %q or %q)", name, StrategyPlain, StrategyCloudflare, StrategyBrowser)
	}
}

// TransportError is returned when a request did not produce a 200 response
type TransportError struct {
	Strategy string
	Status   int    // Zero when no response was received
	Body     string // Response body for diagnostics
	Err      error  // Underlying network, TLS or timeout error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: request failed: %v", e.Strategy, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status code %d (%s): %s", e.Strategy, e.Status, http.StatusText(e.Status), snippet(e.Body, 200))
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// snippet shortens s to at most n bytes on one line
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:runeCut(s, n)] + "..."
}

// runeCut returns the largest offset not past n that does not split a rune
func runeCut(s string, n int) int {
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return n
	}
	return cut
}
