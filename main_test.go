package main

import (
	"os"
	"path/filepath"
	"testing"

	"proceedings-scraper/config"
	"proceedings-scraper/fetcher"
	"proceedings-scraper/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlags(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--url", "https://dl.acm.org/doi/proceedings/10.1145/1",
		"--out", "out.csv",
		"--strategies", "plain,browser",
		"--session", "Ethics",
		"--session", "Health",
	}))

	cfg := config.GetDefaultConfig()
	applyFlags(cmd, cfg)

	assert.Equal(t, "https://dl.acm.org/doi/proceedings/10.1145/1", cfg.Target.URL)
	assert.Equal(t, config.DefaultTOCHeading, cfg.Target.TOCHeading, "unset flags keep config values")
	assert.Equal(t, "out.csv", cfg.Output.Path)
	assert.Equal(t, []string{"plain", "browser"}, cfg.Fetch.Strategies)
	assert.Equal(t, []string{"Ethics", "Health"}, cfg.Filters.Sessions)
	assert.Equal(t, parser.PresetClassic, cfg.Markers.Preset)
}

func TestApplyFlags_EmptyHeadingSelectsWholePage(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--heading", ""}))

	cfg := config.GetDefaultConfig()
	applyFlags(cmd, cfg)
	assert.Empty(t, cfg.Target.TOCHeading)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.GetDefaultConfig(), cfg)
}

func TestLoadConfig_InvalidFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("markers:\n  preset: unknown\n"), 0644))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_StatErrorFails(t *testing.T) {
	notDir := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(notDir, []byte("x"), 0644))

	_, err := loadConfig(filepath.Join(notDir, "config.yaml"))
	assert.Error(t, err, "only a missing file falls back to defaults")
}

func TestBuildSource(t *testing.T) {
	cfg := config.GetDefaultConfig()
	markers, err := cfg.ResolveMarkers()
	require.NoError(t, err)

	source, f, err := buildSource(cfg, markers, "")
	require.NoError(t, err)
	assert.Equal(t, "https://dl.acm.org/doi/proceedings/10.1145/3706598?tocHeading=heading36", source)
	assert.Equal(t, "cloudflare -> browser", f.Name())

	source, f, err = buildSource(cfg, markers, "saved.html")
	require.NoError(t, err)
	assert.Equal(t, "saved.html", source)
	assert.Equal(t, fetcher.StrategyFile, f.Name())

	cfg.Fetch.Strategies = []string{"plain", "carrier-pigeon"}
	_, _, err = buildSource(cfg, markers, "")
	assert.Error(t, err)

	cfg.Fetch.Strategies = []string{"plain"}
	cfg.Target.URL = "ftp://dl.acm.org/"
	_, _, err = buildSource(cfg, markers, "")
	assert.Error(t, err)
}

func TestNewNotifier_DisabledWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	assert.Nil(t, newNotifier(config.GetDefaultConfig()))

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")
	assert.Nil(t, newNotifier(config.GetDefaultConfig()))
}
