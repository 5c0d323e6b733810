package feed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/feed"
)

// feedBody is a two element listing in the upstream format. The gps
// field is present upstream but not modeled here.
const feedBody = `[
  {
    "id": 584612,
    "datetime": "2026-01-12 22:41:33 +01:00",
    "name": "12 januari 22.16, Mordbrand, Helsingborg",
    "summary": "Polisen utreder en mordbrand.",
    "url": "/aktuellt/handelser/2026/januari/12/mordbrand-helsingborg/",
    "type": "Mordbrand",
    "location": {"name": "Helsingborg", "gps": "56.046467,12.694512"}
  },
  {
    "id": 584613,
    "datetime": "2026-01-12 23:05:00 +01:00",
    "name": "12 januari 22.55, Trafikolycka, Stockholm",
    "summary": "En trafikolycka har intraffat.",
    "url": "/aktuellt/handelser/2026/januari/12/trafikolycka-stockholm/",
    "type": "Trafikolycka",
    "location": {"name": "Stockholm"}
  }
]`

func newFeedServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *feed.Client) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := feed.NewClient(
		feed.WithEndpoint(srv.URL),
		feed.WithHTTPClient(srv.Client()),
	)

	return srv, client
}

func TestEvents_Success(t *testing.T) {
	t.Parallel()

	_, client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(feedBody))
	})

	events, err := client.Events(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, int64(584612), first.ID)
	assert.Equal(t, "12 januari 22.16, Mordbrand, Helsingborg", first.Name)
	assert.Equal(t, "Polisen utreder en mordbrand.", first.Summary)
	assert.Equal(t, "2026-01-12 22:41:33 +01:00", first.Datetime)
	assert.Equal(t, "Mordbrand", first.Type)
	assert.Equal(t, "/aktuellt/handelser/2026/januari/12/mordbrand-helsingborg/", first.URL)
	assert.Equal(t, "Helsingborg", first.Location.Name)
}

func TestEvents_SendsLocationAndHeaders(t *testing.T) {
	t.Parallel()

	var gotLocation, gotAgent, gotAccept string

	_, client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotLocation = r.URL.Query().Get("locationname")
		gotAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte("[]"))
	})

	_, err := client.Events(context.Background(), "Malmö kommun")
	require.NoError(t, err)

	assert.Equal(t, "Malmö kommun", gotLocation)
	assert.Contains(t, gotAgent, "PolisWatch")
	assert.Equal(t, "application/json", gotAccept)
}

func TestEvents_OmitsEmptyLocation(t *testing.T) {
	t.Parallel()

	var hadParam bool

	_, client := newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, hadParam = r.URL.Query()["locationname"]
		_, _ = w.Write([]byte("[]"))
	})

	_, err := client.Events(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, hadParam)
}

func TestEvents_UnexpectedStatus(t *testing.T) {
	t.Parallel()

	_, client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Events(context.Background(), "")
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusBadGateway, fetchErr.Status)
}

func TestEvents_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	}))

	client := feed.NewClient(feed.WithEndpoint(srv.URL))
	srv.Close()

	_, err := client.Events(context.Background(), "")
	require.Error(t, err)

	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Zero(t, fetchErr.Status)
	assert.Error(t, errors.Unwrap(fetchErr))
}

func TestEvents_NotAnArray(t *testing.T) {
	t.Parallel()

	_, client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message": "maintenance"}`))
	})

	_, err := client.Events(context.Background(), "")
	require.Error(t, err)

	var parseErr *domain.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestEvents_SkipsMalformedElements(t *testing.T) {
	t.Parallel()

	body := `[
	  {"id": 1, "name": "ok one", "location": {"name": "Umeå"}},
	  {"id": "not-a-number", "name": "broken"},
	  "just a string",
	  {"id": 2, "name": "ok two", "location": {"name": "Luleå"}}
	]`

	_, client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	})

	events, err := client.Events(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(1), events[0].ID)
	assert.Equal(t, int64(2), events[1].ID)
}

func TestEvents_EmptyListing(t *testing.T) {
	t.Parallel()

	_, client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	events, err := client.Events(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	client := feed.NewClient()

	tests := []struct {
		name     string
		eventURL string
		want     string
	}{
		{"host relative", "/aktuellt/handelser/x/", "https://polisen.se/aktuellt/handelser/x/"},
		{"missing leading slash", "aktuellt/handelser/x/", "https://polisen.se/aktuellt/handelser/x/"},
		{"absolute passes through", "https://example.com/x", "https://example.com/x"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, client.ResolveURL(tt.eventURL))
		})
	}
}

func TestResolveURL_UsesEndpointOrigin(t *testing.T) {
	t.Parallel()

	srv, client := newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})

	assert.Equal(t, srv.URL, client.Origin())
	assert.Equal(t, srv.URL+"/detail/1", client.ResolveURL("/detail/1"))
}
