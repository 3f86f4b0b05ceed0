package extractor

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/nhannv/vikonews/pkg/util"
)

// Fetcher is the shared HTTP layer for all extractors. Every request
// carries the configured timeout and user agent.
type Fetcher struct {
	client    *http.Client
	userAgent string
	logger    *zap.Logger
}

func NewFetcher(timeout time.Duration, userAgent string, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		logger:    logger,
	}
}

// Client exposes the underlying HTTP client so feed parsers can share the
// same timeout policy.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Document fetches url and parses it into a goquery document.
func (f *Fetcher) Document(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s returned status %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}

	return doc, nil
}

// chainText walks an ordered list of candidate content selectors and
// returns the paragraphs of the first one that matches anything useful.
// The fallback chain is what keeps detail extraction alive when a source
// redesigns its markup.
func chainText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 10 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			return strings.Join(paragraphs, "\n\n")
		}
	}
	return ""
}

// resolveImage picks an article image: og:image meta first, then the
// first in-body image. An empty result is valid.
func resolveImage(doc *goquery.Document, baseURL string) string {
	if content, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok {
		if img := util.ResolveURL(baseURL, content); img != "" {
			return img
		}
	}
	var img string
	doc.Find("article img, .article-body img, .content img, img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, ok := s.Attr("src")
		if !ok {
			src, ok = s.Attr("data-src")
		}
		if ok {
			if resolved := util.ResolveURL(baseURL, src); resolved != "" {
				img = resolved
				return false
			}
		}
		return true
	})
	return img
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTML removes markup from feed descriptions.
func stripHTML(s string) string {
	return util.CleanText(tagPattern.ReplaceAllString(s, " "))
}

// politeWait sleeps between detail-page fetches so sources don't ban us.
func politeWait(ctx context.Context, delay time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
