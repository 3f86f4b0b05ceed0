package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/pkg/util"
)

// SiteSpec describes one scraped site as configuration data. Adding a
// source means adding a spec, never touching the coordinator.
type SiteSpec struct {
	Name            string
	ListURL         string
	ItemSelector    string
	LinkSelector    string
	TitleSelector   string
	SummarySelector string
	DateSelector    string
	// ContentSelectors is the ordered fallback chain tried on the detail
	// page; the first selector yielding paragraphs wins.
	ContentSelectors []string
	Category         models.Category
	MaxItems         int
	// SkipDetail keeps the extractor to the list page only.
	SkipDetail bool
}

// HTMLExtractor is the generic two-stage scraper: list page first, then
// one detail fetch per item with a politeness delay in between.
type HTMLExtractor struct {
	spec    SiteSpec
	fetcher *Fetcher
	delay   time.Duration
	loc     *time.Location
	logger  *zap.Logger
}

func NewHTMLExtractor(spec SiteSpec, fetcher *Fetcher, delay time.Duration, loc *time.Location, logger *zap.Logger) *HTMLExtractor {
	if spec.LinkSelector == "" {
		spec.LinkSelector = "a"
	}
	if spec.MaxItems <= 0 {
		spec.MaxItems = 10
	}
	return &HTMLExtractor{
		spec:    spec,
		fetcher: fetcher,
		delay:   delay,
		loc:     loc,
		logger:  logger.With(zap.String("source", spec.Name)),
	}
}

func (e *HTMLExtractor) Name() string {
	return e.spec.Name
}

func (e *HTMLExtractor) Extract(ctx context.Context) (candidates []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor %s panicked: %v", e.spec.Name, r)
		}
	}()

	doc, err := e.fetcher.Document(ctx, e.spec.ListURL)
	if err != nil {
		return nil, fmt.Errorf("list page: %w", err)
	}

	items := doc.Find(e.spec.ItemSelector)
	e.logger.Debug("List page parsed", zap.Int("items", items.Length()))

	var stop error
	items.EachWithBreak(func(i int, item *goquery.Selection) bool {
		if len(candidates) >= e.spec.MaxItems {
			return false
		}

		cand, ok := e.parseItem(item, len(candidates))
		if !ok {
			return true
		}

		if !e.spec.SkipDetail {
			if waitErr := politeWait(ctx, e.delay); waitErr != nil {
				stop = waitErr
				return false
			}
			e.fillDetail(ctx, &cand)
		}

		candidates = append(candidates, cand)
		return true
	})

	if stop != nil {
		// Run budget exhausted; hand back what we already have.
		return candidates, stop
	}
	return candidates, nil
}

func (e *HTMLExtractor) parseItem(item *goquery.Selection, position int) (Candidate, bool) {
	link := item
	if !item.Is(e.spec.LinkSelector) {
		link = item.Find(e.spec.LinkSelector).First()
	}
	href, _ := link.Attr("href")
	originalURL := util.ResolveURL(e.spec.ListURL, href)
	if originalURL == "" {
		return Candidate{}, false
	}

	title := ""
	if e.spec.TitleSelector != "" {
		title = util.CleanText(item.Find(e.spec.TitleSelector).First().Text())
	}
	if title == "" {
		title = util.CleanText(link.Text())
	}
	if title == "" {
		return Candidate{}, false
	}

	summary := ""
	if e.spec.SummarySelector != "" {
		summary = util.CleanText(item.Find(e.spec.SummarySelector).First().Text())
	}

	return Candidate{
		Title:       title,
		Summary:     summary,
		OriginalURL: originalURL,
		Source:      e.spec.Name,
		Category:    e.spec.Category,
		PublishedAt: e.parseDate(item),
		Position:    position,
	}, true
}

// fillDetail fetches the article page for full body and image. Detail
// failures degrade to list-page data, never fail the item.
func (e *HTMLExtractor) fillDetail(ctx context.Context, cand *Candidate) {
	doc, err := e.fetcher.Document(ctx, cand.OriginalURL)
	if err != nil {
		e.logger.Warn("Detail fetch failed, keeping list data",
			zap.String("url", cand.OriginalURL),
			zap.Error(err))
		return
	}

	if content := chainText(doc, e.spec.ContentSelectors); content != "" {
		cand.Content = content
	}
	if cand.ImageURL == "" {
		cand.ImageURL = resolveImage(doc, cand.OriginalURL)
	}
	if cand.Summary == "" && cand.Content != "" {
		cand.Summary = util.TruncateRunes(cand.Content, 300, 80)
	}
}

// parseDate reads the item's date text when the spec names one; source
// sites report dates in wildly different formats, so parsing is tolerant
// and falls back to ingestion time in the reference timezone.
func (e *HTMLExtractor) parseDate(item *goquery.Selection) time.Time {
	if e.spec.DateSelector != "" {
		raw := util.CleanText(item.Find(e.spec.DateSelector).First().Text())
		if raw != "" {
			if t, err := dateparse.ParseIn(raw, e.loc); err == nil {
				return t.In(e.loc)
			}
		}
	}
	return time.Now().In(e.loc)
}
