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

const listPage = `<html><body>
<ul class="news-list">
  <li class="item">
    <a href="/article/1">First headline</a>
    <span class="date">2026-08-30</span>
  </li>
  <li class="item">
    <a href="/article/2">Second headline</a>
  </li>
  <li class="item">
    <a href="">broken item without link</a>
  </li>
</ul>
</body></html>`

const detailPage = `<html><head>
<meta property="og:image" content="/images/lead.jpg">
</head><body>
<div class="article-body">
  <p>Paragraph one of the article body text.</p>
  <p>Paragraph two with more detail for readers.</p>
</div>
</body></html>`

const detailPageOldMarkup = `<html><body>
<div class="legacy-content">
  <p>Only the legacy selector finds this paragraph.</p>
</div>
<img data-src="/images/lazy.jpg">
</body></html>`

func newTestSite(t *testing.T, detail string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/list":
			fmt.Fprint(w, listPage)
		default:
			fmt.Fprint(w, detail)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestHTMLExtractor(srv *httptest.Server, spec SiteSpec) *HTMLExtractor {
	spec.ListURL = srv.URL + "/list"
	fetcher := NewFetcher(5*time.Second, "test-agent", zap.NewNop())
	return NewHTMLExtractor(spec, fetcher, time.Millisecond, time.UTC, zap.NewNop())
}

func baseSpec() SiteSpec {
	return SiteSpec{
		Name:         "testsite",
		ItemSelector: "li.item",
		DateSelector: "span.date",
		ContentSelectors: []string{
			"div.article-body p",
			"div.legacy-content p",
		},
		Category: models.CategorySociety,
	}
}

func TestHTMLExtractorParsesListAndDetail(t *testing.T) {
	srv := newTestSite(t, detailPage)
	e := newTestHTMLExtractor(srv, baseSpec())

	candidates, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2, "item without a link is dropped")

	first := candidates[0]
	require.Equal(t, "First headline", first.Title)
	require.Equal(t, srv.URL+"/article/1", first.OriginalURL)
	require.Equal(t, "testsite", first.Source)
	require.Equal(t, 0, first.Position)
	require.Contains(t, first.Content, "Paragraph one")
	require.Contains(t, first.Content, "Paragraph two")
	require.Equal(t, srv.URL+"/images/lead.jpg", first.ImageURL)
	require.Equal(t, 2026, first.PublishedAt.Year())

	require.Equal(t, 1, candidates[1].Position)
}

func TestHTMLExtractorContentSelectorFallback(t *testing.T) {
	srv := newTestSite(t, detailPageOldMarkup)
	e := newTestHTMLExtractor(srv, baseSpec())

	candidates, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	require.Contains(t, candidates[0].Content, "legacy selector")
	// No og:image; the lazy-loaded body image is picked up instead.
	require.Equal(t, srv.URL+"/images/lazy.jpg", candidates[0].ImageURL)
}

func TestHTMLExtractorDetailFailureKeepsListData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/list" {
			fmt.Fprint(w, listPage)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	e := newTestHTMLExtractor(srv, baseSpec())

	candidates, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, "First headline", candidates[0].Title)
	require.Empty(t, candidates[0].Content)
}

func TestHTMLExtractorMaxItems(t *testing.T) {
	srv := newTestSite(t, detailPage)
	spec := baseSpec()
	spec.MaxItems = 1
	e := newTestHTMLExtractor(srv, spec)

	candidates, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
}

func TestHTMLExtractorSkipDetail(t *testing.T) {
	detailHits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/list" {
			fmt.Fprint(w, listPage)
			return
		}
		detailHits++
		fmt.Fprint(w, detailPage)
	}))
	t.Cleanup(srv.Close)
	spec := baseSpec()
	spec.SkipDetail = true
	e := newTestHTMLExtractor(srv, spec)

	candidates, err := e.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	require.Equal(t, 0, detailHits)
}

func TestHTMLExtractorListFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	e := newTestHTMLExtractor(srv, baseSpec())

	candidates, err := e.Extract(context.Background())
	require.Error(t, err)
	require.Empty(t, candidates)
}
