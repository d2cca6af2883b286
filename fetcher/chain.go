package fetcher

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Attempt records the failure of one strategy
type Attempt struct {
	Strategy string
	Err      error
}

// ExhaustedError is returned when every strategy of a chain failed
type ExhaustedError struct {
	URL      string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("all %d fetch strategies failed for %s", len(e.Attempts), e.URL))
	for _, a := range e.Attempts {
		sb.WriteString(fmt.Sprintf("; %s: %v", a.Strategy, a.Err))
	}
	return sb.String()
}

func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}

// Chain tries its fetchers in order and returns the first real page
type Chain struct {
	fetchers         []Fetcher
	challengeMarkers []string
}

// NewChain creates a Chain. Content containing any of challengeMarkers
// counts as a failure of the strategy that returned it.
func NewChain(challengeMarkers []string, fetchers ...Fetcher) *Chain {
	return &Chain{
		fetchers:         fetchers,
		challengeMarkers: challengeMarkers,
	}
}

// Name implements the Fetcher interface
func (c *Chain) Name() string {
	names := make([]string, 0, len(c.fetchers))
	for _, f := range c.fetchers {
		names = append(names, f.Name())
	}
	return strings.Join(names, " -> ")
}

// Fetch implements the Fetcher interface
func (c *Chain) Fetch(ctx context.Context, url string) (string, error) {
	exhausted := &ExhaustedError{URL: url}

	for i, f := range c.fetchers {
		log.Printf("Fetching %s with strategy %d/%d: %s\n", url, i+1, len(c.fetchers), f.Name())

		content, err := f.Fetch(ctx, url)
		if err == nil {
			if marker, blocked := DetectChallenge(content, c.challengeMarkers); blocked {
				err = fmt.Errorf("%s: %w (found %q)", f.Name(), ErrChallengeBlocked, marker)
			}
		}
		if err == nil {
			return content, nil
		}

		log.Printf("Warning: Strategy %s failed: %v\n", f.Name(), err)
		exhausted.Attempts = append(exhausted.Attempts, Attempt{Strategy: f.Name(), Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	return "", exhausted
}
