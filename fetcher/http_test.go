package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPageServer(t *testing.T, status int, body string) (*httptest.Server, *http.Header) {
	t.Helper()
	var seen http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Timeout = 5 * time.Second
	opts.RequestDelay = 0
	opts.Headers = map[string]string{"Accept-Language": "en-US"}
	return opts
}

func TestCollyFetcher_OK(t *testing.T) {
	srv, seen := newPageServer(t, http.StatusOK, "<html>proceedings</html>")

	f := NewCollyFetcher(testOptions())
	content, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>proceedings</html>", content)
	assert.Equal(t, DefaultUserAgent, seen.Get("User-Agent"))
	assert.Equal(t, "en-US", seen.Get("Accept-Language"))
}

func TestCollyFetcher_RevisitsSameURL(t *testing.T) {
	srv, _ := newPageServer(t, http.StatusOK, "ok")

	f := NewCollyFetcher(testOptions())
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
}

func TestCollyFetcher_NonOKStatus(t *testing.T) {
	srv, _ := newPageServer(t, http.StatusForbidden, "blocked by policy")

	f := NewCollyFetcher(testOptions())
	_, err := f.Fetch(context.Background(), srv.URL)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusForbidden, te.Status)
	assert.Equal(t, "blocked by policy", te.Body)
	assert.Equal(t, StrategyPlain, te.Strategy)
}

func TestCollyFetcher_NetworkError(t *testing.T) {
	srv, _ := newPageServer(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()

	f := NewCollyFetcher(testOptions())
	_, err := f.Fetch(context.Background(), url)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Zero(t, te.Status)
	assert.Error(t, te.Err)
}

func TestCollyFetcher_ContextCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	opts := testOptions()
	opts.Timeout = 30 * time.Second
	f := NewCollyFetcher(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := f.Fetch(ctx, srv.URL)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Less(t, time.Since(start), 10*time.Second, "cancellation must not wait for the request timeout")
}

func TestCloudflareFetcher_OK(t *testing.T) {
	srv, seen := newPageServer(t, http.StatusOK, "<html>proceedings</html>")

	f := NewCloudflareFetcher(testOptions())
	content, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>proceedings</html>", content)
	assert.Equal(t, "en-US", seen.Get("Accept-Language"))
}

func TestCloudflareFetcher_NonOKStatus(t *testing.T) {
	srv, _ := newPageServer(t, http.StatusServiceUnavailable, "<title>Just a moment...</title>")

	f := NewCloudflareFetcher(testOptions())
	_, err := f.Fetch(context.Background(), srv.URL)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusServiceUnavailable, te.Status)
	assert.Contains(t, te.Body, "Just a moment")
	assert.Equal(t, StrategyCloudflare, te.Strategy)
}

func TestCloudflareFetcher_NetworkError(t *testing.T) {
	srv, _ := newPageServer(t, http.StatusOK, "")
	url := srv.URL
	srv.Close()

	f := NewCloudflareFetcher(testOptions())
	_, err := f.Fetch(context.Background(), url)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Error(t, te.Err)
}

func TestCloudflareFetcher_RequestDelay(t *testing.T) {
	srv, _ := newPageServer(t, http.StatusOK, "ok")

	opts := testOptions()
	opts.RequestDelay = 200 * time.Millisecond
	f := NewCloudflareFetcher(opts)

	start := time.Now()
	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond, "second request waits for the delay")
}
