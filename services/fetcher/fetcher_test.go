package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"regwatch/models/constants"
	"regwatch/models/entities"
	"regwatch/services/categorizer"
	"regwatch/services/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSource = entities.FeedSource{Key: "occ", Label: "OCC", URL: "https://feeds.example.gov/occ.xml"}

func feedBody(titles ...string) string {
	body := `<rss version="2.0"><channel>`
	for i, title := range titles {
		body += fmt.Sprintf("<item><title>%s</title><link>https://example.gov/%d</link><pubDate>Mon, 01 Jan 2024 0%d:00:00 GMT</pubDate></item>", title, i, i)
	}
	return body + `</channel></rss>`
}

// forwarder answers with the handler and counts requests.
type forwarder struct {
	server *httptest.Server
	hits   atomic.Int32
}

func newForwarder(t *testing.T, handler http.HandlerFunc) *forwarder {
	t.Helper()
	f := &forwarder{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *forwarder) path() string {
	return f.server.URL + "/raw?url={url}"
}

func serveFeed(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}
}

func newTestFetcher(t *testing.T, store Store, templates ...string) *Impl {
	t.Helper()
	p := parser.New(categorizer.New(constants.GetTopicTable()), 300)
	f, err := New(http.DefaultClient, p, store, Options{
		Paths:          ParsePaths(templates),
		AttemptTimeout: 200 * time.Millisecond,
		Freshness:      15 * time.Minute,
		UserAgent:      "regwatch-test",
	})
	require.NoError(t, err)
	return f
}

func TestFetchFirstPath(t *testing.T) {
	var gotTarget atomic.Value
	fw := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		gotTarget.Store(r.URL.Query().Get("url"))
		serveFeed(feedBody("Consent order", "Bulletin"))(w, r)
	})
	store := NewMemoryStore()

	result := newTestFetcher(t, store, fw.path()).Fetch(context.Background(), testSource)

	require.True(t, result.Succeeded())
	assert.Len(t, result.Updates, 2)
	assert.Equal(t, StateSuccess, result.State)
	assert.False(t, result.FromCache)
	assert.Equal(t, testSource.URL, gotTarget.Load(), "target is passed percent-encoded and decoded by the endpoint")

	entry, found := store.Get(testSource.URL)
	require.True(t, found)
	assert.Equal(t, result.Updates, entry.Updates)
}

func TestFetchCacheShortCircuit(t *testing.T) {
	fw := newForwarder(t, serveFeed(feedBody("A")))
	f := newTestFetcher(t, NewMemoryStore(), fw.path())

	first := f.Fetch(context.Background(), testSource)
	require.True(t, first.Succeeded())
	require.Equal(t, int32(1), fw.hits.Load())

	second := f.Fetch(context.Background(), testSource)
	assert.Equal(t, int32(1), fw.hits.Load(), "no network attempt within the freshness window")
	assert.True(t, second.FromCache)
	assert.Empty(t, second.Attempts)
	assert.Equal(t, first.Updates, second.Updates)
}

func TestFetchStaleCacheRefetches(t *testing.T) {
	fw := newForwarder(t, serveFeed(feedBody("A")))
	now := time.Now()
	f := newTestFetcher(t, NewMemoryStore(), fw.path()).WithClock(func() time.Time { return now })

	f.Fetch(context.Background(), testSource)
	now = now.Add(16 * time.Minute)
	result := f.Fetch(context.Background(), testSource)

	assert.False(t, result.FromCache)
	assert.Equal(t, int32(2), fw.hits.Load())
}

func TestFetchFailoverOnTimeout(t *testing.T) {
	slow := newForwarder(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	good := newForwarder(t, serveFeed(feedBody("Second path")))
	store := NewMemoryStore()

	result := newTestFetcher(t, store, slow.path(), good.path()).Fetch(context.Background(), testSource)

	require.True(t, result.Succeeded())
	assert.Equal(t, "Second path", result.Updates[0].Title)
	require.Len(t, result.Attempts, 2)
	assert.ErrorIs(t, result.Attempts[0].Err, ErrTimeout)
	assert.Equal(t, StateNextPath, result.Attempts[0].State)
	assert.Equal(t, StateSuccess, result.Attempts[1].State)

	entry, found := store.Get(testSource.URL)
	require.True(t, found)
	assert.Equal(t, result.Updates, entry.Updates)
}

func TestFetchFailoverOnBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{"status", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }, ErrStatus},
		{"empty", func(w http.ResponseWriter, r *http.Request) {}, ErrEmptyBody},
		{"not markup", func(w http.ResponseWriter, r *http.Request) { fmt.Fprint(w, "rate limited") }, ErrNotMarkup},
		{"malformed", serveFeed("<rss><channel><item></channel>"), parser.ErrUnparsable},
		{"no items", serveFeed(feedBody()), ErrNoRecords},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := newForwarder(t, tt.handler)
			good := newForwarder(t, serveFeed(feedBody("Fallback")))

			result := newTestFetcher(t, NewMemoryStore(), bad.path(), good.path()).Fetch(context.Background(), testSource)

			require.True(t, result.Succeeded())
			require.Len(t, result.Attempts, 2)
			assert.ErrorIs(t, result.Attempts[0].Err, tt.wantErr)
			assert.Equal(t, int32(1), good.hits.Load())
		})
	}
}

func TestFetchExhausted(t *testing.T) {
	down := newForwarder(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) })
	store := NewMemoryStore()

	result := newTestFetcher(t, store, down.path(), down.path(), down.path()).Fetch(context.Background(), testSource)

	assert.False(t, result.Succeeded())
	assert.Empty(t, result.Updates)
	assert.Equal(t, StateExhausted, result.State)
	assert.Len(t, result.Attempts, 3, "one attempt per path, no retries")
	assert.Equal(t, int32(3), down.hits.Load())

	_, found := store.Get(testSource.URL)
	assert.False(t, found, "failures are never cached")
}

func TestFetchStopsOnFirstSuccess(t *testing.T) {
	first := newForwarder(t, serveFeed(feedBody("A")))
	second := newForwarder(t, serveFeed(feedBody("B")))

	newTestFetcher(t, NopStore{}, first.path(), second.path()).Fetch(context.Background(), testSource)

	assert.Equal(t, int32(1), first.hits.Load())
	assert.Equal(t, int32(0), second.hits.Load())
}

func TestFetchCancelledContext(t *testing.T) {
	fw := newForwarder(t, serveFeed(feedBody("A")))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestFetcher(t, NopStore{}, fw.path()).Fetch(ctx, testSource)

	assert.False(t, result.Succeeded())
	assert.Equal(t, StateExhausted, result.State)
	assert.Equal(t, int32(0), fw.hits.Load())
}

func TestNewValidatesPaths(t *testing.T) {
	p := parser.New(categorizer.New(constants.GetTopicTable()), 300)

	_, err := New(http.DefaultClient, p, nil, Options{})
	assert.ErrorIs(t, err, ErrNoPaths)

	_, err = New(http.DefaultClient, p, nil, Options{Paths: []Path{{Name: "x", Template: "https://proxy.example/"}}})
	assert.ErrorIs(t, err, ErrBadPath)
}

func TestPathWrap(t *testing.T) {
	paths := ParsePaths([]string{"https://corsproxy.io/?{url}", " ", "https://api.codetabs.com/v1/proxy?quest={url}"})
	require.Len(t, paths, 2)
	assert.Equal(t, "corsproxy.io", paths[0].Name)
	assert.Equal(t, "api.codetabs.com", paths[1].Name)
	assert.Equal(t,
		"https://corsproxy.io/?https%3A%2F%2Fexample.gov%2Ffeed%3Fa%3D1%26b%3D2",
		paths[0].Wrap("https://example.gov/feed?a=1&b=2"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	_, found := store.Get("k")
	assert.False(t, found)

	at := time.Now()
	store.Put("k", entities.CacheEntry{CapturedAt: at})
	store.Put("k", entities.CacheEntry{CapturedAt: at.Add(time.Minute)})

	entry, found := store.Get("k")
	require.True(t, found)
	assert.Equal(t, at.Add(time.Minute), entry.CapturedAt, "newer entry supersedes")
	assert.Equal(t, 1, store.Len())
}
