package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte("<html>saved</html>"), 0644))

	f := NewFileFetcher()
	content, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "<html>saved</html>", content)

	_, err = f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
