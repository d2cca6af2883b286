package fetcher

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodFetcher implements the Fetcher interface using rod (headless browser).
// Each Fetch owns a fresh browser process and kills it before returning.
type RodFetcher struct {
	opts BrowserOptions
}

// NewRodFetcher creates a new RodFetcher instance
func NewRodFetcher(opts BrowserOptions) *RodFetcher {
	defaults := DefaultBrowserOptions()
	if opts.ViewportWidth <= 0 || opts.ViewportHeight <= 0 {
		opts.ViewportWidth, opts.ViewportHeight = defaults.ViewportWidth, defaults.ViewportHeight
	}
	if opts.PageLoadTimeout <= 0 {
		opts.PageLoadTimeout = defaults.PageLoadTimeout
	}
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = defaults.SettleTimeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaults.PollInterval
	}
	return &RodFetcher{opts: opts}
}

// Name implements the Fetcher interface
func (rf *RodFetcher) Name() string {
	return StrategyBrowser
}

// newLauncher configures the browser process
func (rf *RodFetcher) newLauncher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true).
		Leakless(false). // Disable leakless to avoid antivirus issues
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", fmt.Sprintf("%d,%d", rf.opts.ViewportWidth, rf.opts.ViewportHeight)).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("mute-audio")

	// Prefer a configured or system browser over downloading Chromium
	if rf.opts.Bin != "" {
		l = l.Bin(rf.opts.Bin)
	} else if path, has := launcher.LookPath(); has {
		l = l.Bin(path)
	}

	return l
}

// Fetch implements the Fetcher interface
func (rf *RodFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	// rod reports some failures by panicking
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: panic during browser fetch: %v", rf.Name(), r)
		}
	}()

	l := rf.newLauncher(ctx)
	// Cleanup blocks until the browser process exits, so it only runs for a started process
	teardown := func() {
		if l.PID() == 0 {
			return
		}
		l.Kill()
		l.Cleanup()
	}

	controlURL, err := l.Launch()
	if err != nil {
		teardown()
		return "", fmt.Errorf("%s: failed to launch browser: %w\n\nNote: On Linux, you may need to install Chromium dependencies:\n  apt-get update && apt-get install -y chromium", rf.Name(), err)
	}
	defer teardown()

	browser := rod.New().Context(ctx).ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return "", fmt.Errorf("%s: failed to connect to browser: %w", rf.Name(), err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			log.Printf("Warning: Failed to close browser: %v\n", err)
		}
	}()

	page, err := stealth.Page(browser)
	if err != nil {
		return "", fmt.Errorf("%s: failed to create page: %w", rf.Name(), err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             rf.opts.ViewportWidth,
		Height:            rf.opts.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		log.Printf("Warning: Failed to set viewport: %v\n", err)
	}

	loading := page.Timeout(rf.opts.PageLoadTimeout)
	if err := loading.Navigate(url); err != nil {
		return "", fmt.Errorf("%s: failed to navigate: %w", rf.Name(), err)
	}
	if err := loading.WaitLoad(); err != nil {
		log.Printf("Warning: Page did not finish loading within %s, continuing anyway: %v\n", rf.opts.PageLoadTimeout, err)
	}

	if !rf.waitSettled(ctx, page) {
		log.Printf("Warning: Page did not settle within %s, returning current content\n", rf.opts.SettleTimeout)
	}

	html, err = page.HTML()
	if err != nil {
		return "", fmt.Errorf("%s: failed to get HTML: %w", rf.Name(), err)
	}

	log.Printf("Fetched %s with headless browser (%d bytes)\n", url, len(html))
	return html, nil
}

// waitSettled polls the rendered page until the challenge is gone and the
// ready selector shows up, bounded by the settle timeout
func (rf *RodFetcher) waitSettled(ctx context.Context, page *rod.Page) bool {
	deadline := time.Now().Add(rf.opts.SettleTimeout)
	for {
		if html, err := page.HTML(); err == nil && rf.settled(html) {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(rf.opts.PollInterval):
		}
	}
}

// settled decides whether rendered markup is the real page
func (rf *RodFetcher) settled(html string) bool {
	if _, blocked := DetectChallenge(html, rf.opts.ChallengeMarkers); blocked {
		return false
	}
	if rf.opts.ReadySelector == "" {
		return true
	}
	return hasSelector(html, rf.opts.ReadySelector)
}
