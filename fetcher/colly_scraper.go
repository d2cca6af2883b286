package fetcher

import (
	"context"
	"log"
	"net/http"

	"github.com/gocolly/colly/v2"
)

// CollyFetcher implements the Fetcher interface using colly with a plain GET
type CollyFetcher struct {
	opts Options
}

// NewCollyFetcher creates a new CollyFetcher instance
func NewCollyFetcher(opts Options) *CollyFetcher {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &CollyFetcher{opts: opts}
}

// Name implements the Fetcher interface
func (cf *CollyFetcher) Name() string {
	return StrategyPlain
}

// newCollector builds a collector for a single visit, cancelled with ctx
func (cf *CollyFetcher) newCollector(ctx context.Context) *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(cf.opts.UserAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	if cf.opts.Timeout > 0 {
		c.SetRequestTimeout(cf.opts.Timeout)
	}
	// Non-200 responses still reach OnResponse so the body can be reported
	c.ParseHTTPErrorResponse = true

	c.OnRequest(func(r *colly.Request) {
		for key, value := range cf.opts.Headers {
			r.Headers.Set(key, value)
		}
	})

	return c
}

// Fetch implements the Fetcher interface
func (cf *CollyFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &TransportError{Strategy: cf.Name(), Err: err}
	}

	c := cf.newCollector(ctx)

	var status int
	var body string
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = string(r.Body)
		log.Printf("Fetched %s (status %d, %d bytes)\n", r.Request.URL, r.StatusCode, len(r.Body))
	})

	if err := c.Visit(url); err != nil {
		return "", &TransportError{Strategy: cf.Name(), Err: err}
	}

	if status != http.StatusOK {
		return "", &TransportError{Strategy: cf.Name(), Status: status, Body: body}
	}

	return body, nil
}
