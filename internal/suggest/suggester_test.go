package suggest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/suggest"
)

const suggestPage = `<!DOCTYPE html>
<html lang="sv">
<body>
<form action="/sok">
  <input list="datalist-4f21" name="plats">
  <datalist id="datalist-4f21">
    <option value="Malmö kommun"></option>
    <option value="Tran&aring;s"></option>
    <option value="  "></option>
    <option value="skåne län"></option>
  </datalist>
</form>
</body>
</html>`

type fakeFeed struct {
	mu           sync.Mutex
	calls        int
	lastLocation string
	events       []domain.RawEvent
	err          error
}

func (f *fakeFeed) Events(_ context.Context, locationName string) ([]domain.RawEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.lastLocation = locationName

	if f.err != nil {
		return nil, f.err
	}

	return f.events, nil
}

func (f *fakeFeed) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func feedEvents() []domain.RawEvent {
	return []domain.RawEvent{
		{ID: 1, Location: domain.Location{Name: "Lund"}},
		{ID: 2, Location: domain.Location{Name: " Stockholms län "}},
		{ID: 3},
	}
}

// newSuggestServer serves the datalist page and counts page hits.
func newSuggestServer(t *testing.T, status int, hits *atomic.Int64) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		hits.Add(1)

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(suggestPage))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func sortedCaseFolded(list []string) bool {
	return sort.SliceIsSorted(list, func(i, j int) bool {
		return strings.ToLower(list[i]) < strings.ToLower(list[j])
	})
}

func TestSuggestions_MergesCountiesScrapeAndFeed(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	srv := newSuggestServer(t, http.StatusOK, &hits)
	feed := &fakeFeed{events: feedEvents()}

	s := suggest.NewSuggester(feed, suggest.WithPageURL(srv.URL))
	got := s.Suggestions(context.Background())

	// 21 counties plus two scraped names plus one new feed name.
	assert.Len(t, got, 24)
	assert.Contains(t, got, "Malmö kommun")
	assert.Contains(t, got, "Tranås")
	assert.Contains(t, got, "Lund")
	assert.Contains(t, got, "Blekinge län")
	assert.True(t, sortedCaseFolded(got))

	assert.Equal(t, "", feed.lastLocation, "feed lookup must be unfiltered")
}

func TestSuggestions_ScrapeFailureDegradesToFeedAndCounties(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	srv := newSuggestServer(t, http.StatusInternalServerError, &hits)
	feed := &fakeFeed{events: feedEvents()}

	s := suggest.NewSuggester(feed, suggest.WithPageURL(srv.URL))
	got := s.Suggestions(context.Background())

	assert.Len(t, got, 22)
	assert.Contains(t, got, "Lund")
	assert.NotContains(t, got, "Malmö kommun")
}

func TestSuggestions_AllLiveSourcesDownStillCounties(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	srv := newSuggestServer(t, http.StatusInternalServerError, &hits)
	feed := &fakeFeed{err: errors.New("connection refused")}

	s := suggest.NewSuggester(feed, suggest.WithPageURL(srv.URL))
	got := s.Suggestions(context.Background())

	require.Len(t, got, 21)
	assert.Equal(t, suggest.Counties(), got, "the static list is already case-folded sorted")
}

func TestSuggestions_ResultIsCached(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	srv := newSuggestServer(t, http.StatusOK, &hits)
	feed := &fakeFeed{events: feedEvents()}

	var (
		mu      sync.Mutex
		current = time.Now()
	)

	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()

		return current
	}

	s := suggest.NewSuggester(feed, suggest.WithPageURL(srv.URL), suggest.WithClock(clock))

	first := s.Suggestions(context.Background())
	second := s.Suggestions(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, 1, feed.callCount())

	mu.Lock()
	current = current.Add(13 * time.Hour)
	mu.Unlock()

	s.Suggestions(context.Background())

	assert.Equal(t, int64(2), hits.Load(), "an expired cache re-reads both sources")
	assert.Equal(t, 2, feed.callCount())
}

func TestSuggestions_UnescapesAndTrimsOptionValues(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	srv := newSuggestServer(t, http.StatusOK, &hits)
	feed := &fakeFeed{}

	s := suggest.NewSuggester(feed, suggest.WithPageURL(srv.URL))
	got := s.Suggestions(context.Background())

	assert.Contains(t, got, "Tranås")

	for _, v := range got {
		assert.Equal(t, strings.TrimSpace(v), v)
		assert.NotEmpty(t, v)
	}
}

func TestSuggestions_CountySpellingWinsOverLiveVariant(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	srv := newSuggestServer(t, http.StatusOK, &hits)
	feed := &fakeFeed{events: []domain.RawEvent{
		{ID: 1, Location: domain.Location{Name: "STOCKHOLMS LÄN"}},
	}}

	s := suggest.NewSuggester(feed, suggest.WithPageURL(srv.URL))
	got := s.Suggestions(context.Background())

	var skane, stockholm []string

	for _, v := range got {
		switch strings.ToLower(v) {
		case "skåne län":
			skane = append(skane, v)
		case "stockholms län":
			stockholm = append(stockholm, v)
		}
	}

	assert.Equal(t, []string{"Skåne län"}, skane)
	assert.Equal(t, []string{"Stockholms län"}, stockholm)
}

func TestSuggestions_CallerCannotMutateCache(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64

	srv := newSuggestServer(t, http.StatusOK, &hits)
	feed := &fakeFeed{}

	s := suggest.NewSuggester(feed, suggest.WithPageURL(srv.URL))

	first := s.Suggestions(context.Background())
	require.NotEmpty(t, first)
	first[0] = "tampered"

	second := s.Suggestions(context.Background())
	assert.NotEqual(t, "tampered", second[0])
}
