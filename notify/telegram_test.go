package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTelegram answers getMe and records sendMessage calls
type fakeTelegram struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		json.NewEncoder(w).Encode(map[string]any{
			"ok":     true,
			"result": map[string]any{"id": 1, "is_bot": true, "first_name": "scraper", "username": "scraper_bot"},
		})
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		r.ParseForm()
		f.mu.Lock()
		f.sent = append(f.sent, r.FormValue("text"))
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"result": map[string]any{
				"message_id": len(f.sent),
				"date":       0,
				"chat":       map[string]any{"id": 42, "type": "private"},
				"text":       r.FormValue("text"),
			},
		})
	default:
		http.NotFound(w, r)
	}
}

func newFakeNotifier(t *testing.T) (*TelegramNotifier, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	n, err := newTelegramNotifier("123:abc", 42, srv.URL+"/bot%s/%s")
	require.NoError(t, err)
	return n, fake
}

func TestTelegramNotifier_Notify(t *testing.T) {
	n, fake := newFakeNotifier(t)

	require.NoError(t, n.Notify("Successfully scraped 2 author entries from 1 papers."))
	assert.Equal(t, []string{"Successfully scraped 2 author entries from 1 papers."}, fake.sent)
}

func TestTelegramNotifier_SplitsLongMessages(t *testing.T) {
	n, fake := newFakeNotifier(t)

	line := strings.Repeat("x", 100)
	text := strings.TrimSuffix(strings.Repeat(line+"\n", 100), "\n")

	require.NoError(t, n.Notify(text))
	assert.Len(t, fake.sent, 3)
}

func TestNewTelegramNotifier_Validation(t *testing.T) {
	_, err := NewTelegramNotifier("", 42)
	assert.Error(t, err)

	_, err = NewTelegramNotifier("123:abc", 0)
	assert.Error(t, err)
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))

	parts := splitMessage("aaaa\nbbbb\ncccc", 10)
	assert.Equal(t, []string{"aaaa\nbbbb\n", "cccc\n"}, parts)

	parts = splitMessage(strings.Repeat("z", 25), 10)
	assert.Equal(t, []string{"zzzzzzzzzz", "zzzzzzzzzz", "zzzzz\n"}, parts)

	for _, p := range splitMessage(strings.Repeat("word ", 50)+"\n"+strings.Repeat("y", 9), 10) {
		assert.LessOrEqual(t, len(p), 10)
	}
}

func TestSplitMessage_KeepsRunesWhole(t *testing.T) {
	text := "a" + strings.Repeat("é", 12)

	parts := splitMessage(text, 10)
	for _, p := range parts {
		assert.True(t, utf8.ValidString(p), "part %q", p)
		assert.LessOrEqual(t, len(p), 10)
	}
	assert.Equal(t, text, strings.TrimSuffix(strings.Join(parts, ""), "\n"))
}
