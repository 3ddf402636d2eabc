package generators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/romangod6/route-sitemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upstreamSitemap = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://legacy.example.com/help/en/Content/Home.htm</loc></url>
  <url><loc>https://legacy.example.com/help/en/Content/Devices.htm</loc><lastmod>2020-01-01</lastmod></url>
  <url><loc>https://legacy.example.com/help/en/Content/Home.htm</loc></url>
  <url><loc>https://legacy.example.com/</loc></url>
</urlset>`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sitemap.xml" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, DefaultFeedUserAgent, r.UserAgent())
		w.Header().Set("Content-Type", "application/xml")
		w.Write([]byte(upstreamSitemap))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedFetch(t *testing.T) {
	srv := newUpstream(t)

	payloads, err := Feed{URL: srv.URL + "/sitemap.xml", Param: "page"}.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Payload{
		{"page": "help/en/Content/Home.htm"},
		{"page": "help/en/Content/Devices.htm"},
	}, payloads)
}

func TestFeedDefaultParam(t *testing.T) {
	srv := newUpstream(t)

	op, ok := NewFeeds(map[string]Feed{"legacy": {URL: srv.URL + "/sitemap.xml"}}).Operation("legacy")
	require.True(t, ok)
	payloads, err := op(context.Background(), "legacy")
	require.NoError(t, err)
	require.NotEmpty(t, payloads)
	assert.Contains(t, payloads[0], DefaultFeedParam)
}

func TestFeedFetchErrors(t *testing.T) {
	srv := newUpstream(t)

	_, err := Feed{URL: srv.URL + "/missing.xml"}.Fetch(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Feed{URL: srv.URL + "/sitemap.xml"}.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFeedFetchStopsOnCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := Feed{URL: srv.URL + "/sitemap.xml", Timeout: time.Minute}.Fetch(ctx)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 10*time.Second)
}
