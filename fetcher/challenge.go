package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultChallengeMarkers returns text fragments that only appear on
// Cloudflare interstitial pages
func DefaultChallengeMarkers() []string {
	return []string{
		"Just a moment...",
		"cf-browser-verification",
		"Checking your browser before accessing",
		"Enable JavaScript and cookies to continue",
	}
}

// DetectChallenge reports the first marker found in content
func DetectChallenge(content string, markers []string) (string, bool) {
	for _, marker := range markers {
		if marker != "" && strings.Contains(content, marker) {
			return marker, true
		}
	}
	return "", false
}

// hasSelector reports whether the markup contains a node matching selector
func hasSelector(htmlContent, selector string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}
