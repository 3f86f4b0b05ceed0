package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/models"
)

func feedXML(articleBase string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <item>
    <title>Feed headline one</title>
    <link>%s/story/1</link>
    <description>&lt;p&gt;Short teaser with &lt;b&gt;markup&lt;/b&gt;.&lt;/p&gt;</description>
    <pubDate>Sun, 30 Aug 2026 09:00:00 +0700</pubDate>
    <enclosure url="%s/images/one.jpg" type="image/jpeg" length="1000"/>
  </item>
  <item>
    <title>Feed headline two</title>
    <link>%s/story/2</link>
    <description>A reasonably long description that serves as the article body and needs no detail fetch at all.</description>
  </item>
  <item>
    <title></title>
    <link>%s/story/3</link>
  </item>
</channel>
</rss>`, articleBase, articleBase, articleBase, articleBase)
}

func newTestFeed(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	detailHits := 0
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/feed.xml":
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprint(w, feedXML(srv.URL))
		default:
			detailHits++
			fmt.Fprint(w, detailPage)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &detailHits
}

func newTestRSSExtractor(srv *httptest.Server, spec FeedSpec) *RSSExtractor {
	spec.FeedURL = srv.URL + "/feed.xml"
	fetcher := NewFetcher(5*time.Second, "test-agent", zap.NewNop())
	return NewRSSExtractor(spec, fetcher, time.Millisecond, time.UTC, zap.NewNop())
}

func TestRSSExtractorParsesFeed(t *testing.T) {
	srv, detailHits := newTestFeed(t)
	e := newTestRSSExtractor(srv, FeedSpec{
		Name:     "testfeed",
		Category: models.CategoryEconomy,
	})

	candidates, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2, "item without a title is dropped")
	require.Equal(t, 0, *detailHits, "no detail fallback configured")

	first := candidates[0]
	require.Equal(t, "Feed headline one", first.Title)
	require.Equal(t, srv.URL+"/story/1", first.OriginalURL)
	require.Equal(t, "testfeed", first.Source)
	require.Equal(t, models.CategoryEconomy, first.Category)
	require.Equal(t, srv.URL+"/images/one.jpg", first.ImageURL)
	require.NotContains(t, first.Summary, "<p>", "markup is stripped from the teaser")
	require.Contains(t, first.Summary, "Short teaser with markup")
	require.Equal(t, 2026, first.PublishedAt.Year())
}

func TestRSSExtractorDetailFallbackOnThinBody(t *testing.T) {
	srv, detailHits := newTestFeed(t)
	e := newTestRSSExtractor(srv, FeedSpec{
		Name:             "testfeed",
		MinBodyChars:     60,
		ContentSelectors: []string{"div.article-body p"},
	})

	candidates, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// First item's teaser is under the threshold, so the article page fills
	// the body; second item's description is long enough on its own.
	require.Equal(t, 1, *detailHits)
	require.Contains(t, candidates[0].Content, "Paragraph one")
	require.Contains(t, candidates[1].Content, "no detail fetch")
}

func TestRSSExtractorFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	e := newTestRSSExtractor(srv, FeedSpec{Name: "testfeed"})

	candidates, err := e.Extract(context.Background())
	require.Error(t, err)
	require.Empty(t, candidates)
}

func TestRSSExtractorMaxItems(t *testing.T) {
	srv, _ := newTestFeed(t)
	e := newTestRSSExtractor(srv, FeedSpec{Name: "testfeed", MaxItems: 1})

	candidates, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}
