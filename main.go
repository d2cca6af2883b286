package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"proceedings-scraper/config"
	"proceedings-scraper/fetcher"
	"proceedings-scraper/filter"
	"proceedings-scraper/notify"
	"proceedings-scraper/parser"
	"proceedings-scraper/pipeline"
	"proceedings-scraper/target"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	targetURL   string
	tocHeading  string
	outputPath  string
	strategies  []string
	preset      string
	sessions    []string
	inputPath   string
	sendSummary bool
)

// newRootCmd creates the command and binds its flags
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "proceedings-scraper",
		Short:         "Scrapes a conference proceedings page into a CSV of sessions, papers and authors",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flags.StringVar(&targetURL, "url", "", "Proceedings page URL (overrides target.url)")
	flags.StringVar(&tocHeading, "heading", "", "Table of contents heading to select, empty for the whole page (overrides target.toc_heading)")
	flags.StringVar(&outputPath, "out", "", "CSV output path (overrides output.path)")
	flags.StringSliceVar(&strategies, "strategies", nil, "Fetch strategies in fallback order: plain, cloudflare, browser")
	flags.StringVar(&preset, "markers", "", "Marker preset: classic or section (overrides markers.preset)")
	flags.StringArrayVar(&sessions, "session", nil, "Keep only sessions containing this text (repeatable)")
	flags.StringVar(&inputPath, "input", "", "Read a page saved from a browser instead of fetching")
	flags.BoolVar(&sendSummary, "notify", true, "Send a run summary to Telegram when TELEGRAM_BOT_TOKEN is set")

	return cmd
}

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// runScrape wires the configured components into a pipeline and runs it once
func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	markers, err := cfg.ResolveMarkers()
	if err != nil {
		return err
	}
	parserInstance, err := parser.NewParser(markers)
	if err != nil {
		return err
	}

	source, fetcherInstance, err := buildSource(cfg, markers, inputPath)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(fetcherInstance, parserInstance, filter.NewFilter(cfg), source, cfg.Output.Path)
	if sendSummary {
		if n := newNotifier(cfg); n != nil {
			p.SetNotifier(n)
		}
	}

	_, err = p.Run(cmd.Context())
	return err
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("Config file not found. Using default configuration.")
		return config.GetDefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides config values with the flags given on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Target.URL = targetURL
	}
	if flags.Changed("heading") {
		cfg.Target.TOCHeading = tocHeading
	}
	if flags.Changed("out") {
		cfg.Output.Path = outputPath
	}
	if flags.Changed("strategies") {
		cfg.Fetch.Strategies = strategies
	}
	if flags.Changed("markers") {
		cfg.Markers.Preset = preset
	}
	if flags.Changed("session") {
		cfg.Filters.Sessions = sessions
	}
}

// buildSource returns what to scrape and the fetcher that retrieves it.
// A saved page still goes through challenge detection.
func buildSource(cfg *config.Config, markers parser.Markers, input string) (string, fetcher.Fetcher, error) {
	if input != "" {
		log.Printf("Reading saved page %s\n", input)
		return input, fetcher.NewChain(cfg.Fetch.ChallengeMarkers, fetcher.NewFileFetcher()), nil
	}

	pageURL, err := target.BuildURL(cfg.Target.URL, cfg.Target.TOCHeading)
	if err != nil {
		return "", nil, fmt.Errorf("invalid target URL: %w", err)
	}
	log.Printf("Target %s (%s)\n", pageURL, target.HeadingLabel(pageURL))

	opts := cfg.FetchOptions()
	browserOpts := cfg.BrowserOptions(markers)

	fetchers := make([]fetcher.Fetcher, 0, len(cfg.Fetch.Strategies))
	for _, name := range cfg.Fetch.Strategies {
		f, err := fetcher.New(name, opts, browserOpts)
		if err != nil {
			return "", nil, err
		}
		fetchers = append(fetchers, f)
	}

	return pageURL, fetcher.NewChain(cfg.Fetch.ChallengeMarkers, fetchers...), nil
}

// newNotifier creates the Telegram notifier when a bot token is available
func newNotifier(cfg *config.Config) pipeline.Notifier {
	token := strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	if token == "" {
		return nil
	}

	chatID := cfg.Notify.TelegramChatID
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Printf("Warning: Invalid TELEGRAM_CHAT_ID %q: %v\n", raw, err)
			return nil
		}
		chatID = id
	}

	n, err := notify.NewTelegramNotifier(token, chatID)
	if err != nil {
		log.Printf("Warning: Telegram notifications disabled: %v\n", err)
		return nil
	}
	return n
}
