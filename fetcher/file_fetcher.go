package fetcher

import (
	"context"
	"fmt"
	"os"
)

// StrategyFile names the fetcher that reads a saved page from disk
const StrategyFile = "file"

// FileFetcher implements the Fetcher interface for pages saved from a browser
type FileFetcher struct{}

// NewFileFetcher creates a new FileFetcher instance
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

// Name implements the Fetcher interface
func (ff *FileFetcher) Name() string {
	return StrategyFile
}

// Fetch implements the Fetcher interface; path is a local file
func (ff *FileFetcher) Fetch(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%s: failed to read saved page: %w", ff.Name(), err)
	}
	return string(data), nil
}
