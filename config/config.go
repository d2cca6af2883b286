package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"proceedings-scraper/fetcher"
	"proceedings-scraper/parser"

	"gopkg.in/yaml.v3"
)

// DefaultURL is the proceedings listing scraped when none is configured
const DefaultURL = "https://dl.acm.org/doi/proceedings/10.1145/3706598"

// DefaultTOCHeading selects the table of contents heading of DefaultURL
const DefaultTOCHeading = "heading36"

// DefaultOutputPath is where the CSV is written when none is configured
const DefaultOutputPath = "acm_proceedings.csv"

// Config represents the scraper configuration
type Config struct {
	Target struct {
		URL        string `yaml:"url"`
		TOCHeading string `yaml:"toc_heading"`
	} `yaml:"target"`

	Output struct {
		Path string `yaml:"path"`
	} `yaml:"output"`

	Fetch struct {
		Strategies       []string          `yaml:"strategies"`
		UserAgent        string            `yaml:"user_agent"`
		Headers          map[string]string `yaml:"headers"`
		Timeout          time.Duration     `yaml:"timeout"`
		RequestDelay     time.Duration     `yaml:"request_delay"`
		ChallengeMarkers []string          `yaml:"challenge_markers"`
	} `yaml:"fetch"`

	Browser struct {
		Bin             string        `yaml:"bin"`
		ViewportWidth   int           `yaml:"viewport_width"`
		ViewportHeight  int           `yaml:"viewport_height"`
		PageLoadTimeout time.Duration `yaml:"page_load_timeout"`
		SettleTimeout   time.Duration `yaml:"settle_timeout"`
		PollInterval    time.Duration `yaml:"poll_interval"`
		ReadySelector   string        `yaml:"ready_selector"` // Defaults to the item marker
	} `yaml:"browser"`

	Markers struct {
		Preset    string         `yaml:"preset"`
		Overrides parser.Markers `yaml:"overrides"`
	} `yaml:"markers"`

	Filters struct {
		Sessions []string `yaml:"sessions"`
	} `yaml:"filters"`

	Notify struct {
		TelegramChatID int64 `yaml:"telegram_chat_id"`
	} `yaml:"notify"`
}

// LoadConfig loads configuration from a YAML file. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{}
	cfg.Target.URL = DefaultURL
	cfg.Target.TOCHeading = DefaultTOCHeading
	cfg.Output.Path = DefaultOutputPath

	httpOpts := fetcher.DefaultOptions()
	cfg.Fetch.Strategies = []string{fetcher.StrategyCloudflare, fetcher.StrategyBrowser}
	cfg.Fetch.UserAgent = httpOpts.UserAgent
	cfg.Fetch.Timeout = httpOpts.Timeout
	cfg.Fetch.RequestDelay = httpOpts.RequestDelay
	cfg.Fetch.ChallengeMarkers = fetcher.DefaultChallengeMarkers()

	browserOpts := fetcher.DefaultBrowserOptions()
	cfg.Browser.ViewportWidth = browserOpts.ViewportWidth
	cfg.Browser.ViewportHeight = browserOpts.ViewportHeight
	cfg.Browser.PageLoadTimeout = browserOpts.PageLoadTimeout
	cfg.Browser.SettleTimeout = browserOpts.SettleTimeout
	cfg.Browser.PollInterval = browserOpts.PollInterval

	cfg.Markers.Preset = parser.PresetClassic
	return cfg
}

// Validate checks the values that cannot be defaulted later on
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target.URL) == "" {
		return fmt.Errorf("target.url must not be empty")
	}
	if strings.TrimSpace(c.Output.Path) == "" {
		return fmt.Errorf("output.path must not be empty")
	}
	if len(c.Fetch.Strategies) == 0 {
		return fmt.Errorf("fetch.strategies must name at least one strategy")
	}
	if _, err := c.ResolveMarkers(); err != nil {
		return err
	}
	return nil
}

// ResolveMarkers returns the preset markers with the configured overrides applied
func (c *Config) ResolveMarkers() (parser.Markers, error) {
	base, err := parser.Preset(c.Markers.Preset)
	if err != nil {
		return parser.Markers{}, err
	}
	markers := base.Merge(c.Markers.Overrides)
	if err := markers.Validate(); err != nil {
		return parser.Markers{}, err
	}
	return markers, nil
}

// FetchOptions returns the options of the HTTP strategies
func (c *Config) FetchOptions() fetcher.Options {
	return fetcher.Options{
		UserAgent:    c.Fetch.UserAgent,
		Headers:      c.Fetch.Headers,
		Timeout:      c.Fetch.Timeout,
		RequestDelay: c.Fetch.RequestDelay,
	}
}

// BrowserOptions returns the options of the browser strategy. The ready
// selector falls back to the item marker of the resolved markers.
func (c *Config) BrowserOptions(markers parser.Markers) fetcher.BrowserOptions {
	ready := c.Browser.ReadySelector
	if ready == "" {
		ready = "." + markers.ItemClass
	}
	return fetcher.BrowserOptions{
		Bin:              c.Browser.Bin,
		ViewportWidth:    c.Browser.ViewportWidth,
		ViewportHeight:   c.Browser.ViewportHeight,
		PageLoadTimeout:  c.Browser.PageLoadTimeout,
		SettleTimeout:    c.Browser.SettleTimeout,
		PollInterval:     c.Browser.PollInterval,
		ReadySelector:    ready,
		ChallengeMarkers: c.Fetch.ChallengeMarkers,
	}
}
