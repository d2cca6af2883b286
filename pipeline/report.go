package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"proceedings-scraper/fetcher"
	"proceedings-scraper/output"
)

// Report describes a successful run
type Report struct {
	Source    string
	Sessions  []string // Session headers found in the page
	Items     int      // Item blocks visited
	Extracted int      // Records before filtering
	Output    output.Summary
}

// SuccessMessage formats the run summary sent to the notifier
func (r *Report) SuccessMessage() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ Successfully scraped %d author entries from %d papers.\n", r.Output.Records, r.Output.Papers))
	sb.WriteString(fmt.Sprintf("Source: %s\n", r.Source))
	sb.WriteString(fmt.Sprintf("Sessions found: %d\n", len(r.Sessions)))
	if r.Extracted != r.Output.Records {
		sb.WriteString(fmt.Sprintf("Filtered: %d of %d entries kept\n", r.Output.Records, r.Extracted))
	}
	sb.WriteString(fmt.Sprintf("Saved to: %s", r.Output.Path))
	return sb.String()
}

// FailureSummary explains why fetching failed and what to try next
func FailureSummary(source string, err error) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("❌ Failed to retrieve %s\n", source))

	var exhausted *fetcher.ExhaustedError
	if errors.As(err, &exhausted) {
		for _, a := range exhausted.Attempts {
			sb.WriteString(fmt.Sprintf("  - %s: %v\n", a.Strategy, a.Err))
		}
	} else {
		sb.WriteString(fmt.Sprintf("  - %v\n", err))
	}

	sb.WriteString("\nSuggestions:\n")
	for _, s := range suggestions(err) {
		sb.WriteString("  * " + s + "\n")
	}

	return strings.TrimSuffix(sb.String(), "\n")
}

// suggestions returns remediation hints matching the failure
func suggestions(err error) []string {
	var hints []string

	if errors.Is(err, fetcher.ErrChallengeBlocked) {
		hints = append(hints,
			"The site answered with a bot challenge page; raise browser.settle_timeout so the challenge can resolve",
			"Install Chrome or Chromium locally, or point browser.bin at it, so the browser strategy looks like a regular visitor")
	}

	var te *fetcher.TransportError
	if errors.As(err, &te) {
		switch {
		case te.Status == http.StatusForbidden || te.Status == http.StatusServiceUnavailable:
			hints = append(hints, "The request was blocked; wait a while or try from another network")
		case te.Status == http.StatusTooManyRequests:
			hints = append(hints, "The site is rate limiting; increase fetch.request_delay and try later")
		case te.Status == 0:
			hints = append(hints, "Check network connectivity and that the URL is reachable")
		}
	}

	hints = append(hints,
		"Run with --strategies browser to use only the headless browser",
		"Open the page in your own browser, save it as HTML and run with --input page.html")

	return hints
}
