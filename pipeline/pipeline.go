package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"proceedings-scraper/fetcher"
	"proceedings-scraper/filter"
	"proceedings-scraper/models"
	"proceedings-scraper/output"
	"proceedings-scraper/parser"
)

// ErrLayoutChanged is returned when the page holds none of the configured markers
var ErrLayoutChanged = errors.New("page layout changed: no session or item markers found")

// Notifier receives run summaries
type Notifier interface {
	Notify(text string) error
}

// Pipeline runs fetch, extract, filter and write for one source page
type Pipeline struct {
	fetcher    fetcher.Fetcher
	parser     *parser.Parser
	filter     *filter.Filter
	source     string
	outputPath string
	notifier   Notifier
	out        io.Writer
}

// NewPipeline creates a new pipeline writing progress to stdout
func NewPipeline(f fetcher.Fetcher, p *parser.Parser, flt *filter.Filter, source, outputPath string) *Pipeline {
	return &Pipeline{
		fetcher:    f,
		parser:     p,
		filter:     flt,
		source:     source,
		outputPath: outputPath,
		out:        os.Stdout,
	}
}

// SetNotifier enables run summaries; nil disables them
func (p *Pipeline) SetNotifier(n Notifier) {
	p.notifier = n
}

// SetOutput redirects progress messages
func (p *Pipeline) SetOutput(w io.Writer) {
	p.out = w
}

// Run scrapes the source page once. Nothing is written when fetching fails
// or the page carries no markers.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	fmt.Fprintf(p.out, "Fetching %s using %s\n", p.source, p.fetcher.Name())

	html, err := p.fetcher.Fetch(ctx, p.source)
	if err != nil {
		summary := FailureSummary(p.source, err)
		fmt.Fprintln(p.out, summary)
		p.notify(summary)
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	log.Printf("Fetched %d bytes from %s\n", len(html), p.source)

	result, err := p.parser.ParseHTML(html)
	if err != nil {
		if errors.Is(err, parser.ErrNoMarkers) {
			msg := fmt.Sprintf("❌ No sessions or papers found in %s. The page layout may have changed; check the markers configuration. Nothing was written.", p.source)
			fmt.Fprintln(p.out, msg)
			p.notify(msg)
			return nil, fmt.Errorf("%w: %w", ErrLayoutChanged, err)
		}
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	for _, session := range result.Sessions {
		fmt.Fprintf(p.out, "Found session: %s\n", session)
	}
	fmt.Fprintf(p.out, "Found %d sessions and %d items\n", len(result.Sessions), result.Items)

	records := result.Records
	if p.filter != nil && p.filter.Active() {
		records = p.filter.ApplyFilters(records)
		fmt.Fprintf(p.out, "Kept %d of %d author entries from %d sessions after filtering\n", len(records), len(result.Records), len(models.Sessions(records)))
	}
	if len(records) == 0 {
		log.Printf("Warning: no author entries extracted; writing header only\n")
	}

	summary, err := output.WriteCSV(records, p.outputPath)
	if err != nil {
		msg := fmt.Sprintf("❌ Error writing results: %v", err)
		fmt.Fprintln(p.out, msg)
		p.notify(msg)
		return nil, err
	}

	report := &Report{
		Source:    p.source,
		Sessions:  result.Sessions,
		Items:     result.Items,
		Extracted: len(result.Records),
		Output:    summary,
	}

	fmt.Fprintf(p.out, "Successfully scraped %d author entries from %d papers.\n", summary.Records, summary.Papers)
	fmt.Fprintf(p.out, "Saved to %s\n", summary.Path)
	p.notify(report.SuccessMessage())

	return report, nil
}

// notify sends text to the notifier, logging failures
func (p *Pipeline) notify(text string) {
	if p.notifier == nil {
		return
	}
	if err := p.notifier.Notify(text); err != nil {
		log.Printf("Warning: Failed to send notification: %v\n", err)
	}
}
