package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/pkg/util"
)

// FeedSpec describes one RSS/Atom source.
type FeedSpec struct {
	Name     string
	FeedURL  string
	Category models.Category
	MaxItems int
	// MinBodyChars triggers a detail-page fetch when the feed body is
	// shorter; zero disables the fallback.
	MinBodyChars     int
	ContentSelectors []string
}

// RSSExtractor parses a feed and optionally falls back to a detail fetch
// when the feed carries no usable body.
type RSSExtractor struct {
	spec    FeedSpec
	parser  *gofeed.Parser
	fetcher *Fetcher
	delay   time.Duration
	loc     *time.Location
	logger  *zap.Logger
}

func NewRSSExtractor(spec FeedSpec, fetcher *Fetcher, delay time.Duration, loc *time.Location, logger *zap.Logger) *RSSExtractor {
	if spec.MaxItems <= 0 {
		spec.MaxItems = 20
	}
	parser := gofeed.NewParser()
	parser.Client = fetcher.Client()
	return &RSSExtractor{
		spec:    spec,
		parser:  parser,
		fetcher: fetcher,
		delay:   delay,
		loc:     loc,
		logger:  logger.With(zap.String("source", spec.Name)),
	}
}

func (e *RSSExtractor) Name() string {
	return e.spec.Name
}

func (e *RSSExtractor) Extract(ctx context.Context) (candidates []Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor %s panicked: %v", e.spec.Name, r)
		}
	}()

	feed, err := e.parser.ParseURLWithContext(e.spec.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("feed parse: %w", err)
	}

	for i, item := range feed.Items {
		if len(candidates) >= e.spec.MaxItems {
			break
		}
		if item.Link == "" || item.Title == "" {
			continue
		}

		cand := Candidate{
			Title:       util.CleanText(item.Title),
			Summary:     stripHTML(item.Description),
			Content:     util.FirstNonEmpty(item.Content, item.Description),
			OriginalURL: item.Link,
			Source:      e.spec.Name,
			Category:    e.spec.Category,
			PublishedAt: e.itemTime(item),
			Position:    i,
		}
		if item.Image != nil {
			cand.ImageURL = item.Image.URL
		}
		if cand.ImageURL == "" {
			for _, enc := range item.Enclosures {
				if enc.URL != "" {
					cand.ImageURL = enc.URL
					break
				}
			}
		}

		// Feed body too thin: fetch the article page instead.
		if e.spec.MinBodyChars > 0 && len(cand.Content) < e.spec.MinBodyChars && len(e.spec.ContentSelectors) > 0 {
			if waitErr := politeWait(ctx, e.delay); waitErr != nil {
				return candidates, waitErr
			}
			e.fillDetail(ctx, &cand)
		}

		candidates = append(candidates, cand)
	}

	return candidates, nil
}

func (e *RSSExtractor) fillDetail(ctx context.Context, cand *Candidate) {
	doc, err := e.fetcher.Document(ctx, cand.OriginalURL)
	if err != nil {
		e.logger.Warn("Detail fetch failed, keeping feed data",
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
}

func (e *RSSExtractor) itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.In(e.loc)
	}
	if item.Published != "" {
		if t, err := dateparse.ParseIn(item.Published, e.loc); err == nil {
			return t.In(e.loc)
		}
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.In(e.loc)
	}
	return time.Now().In(e.loc)
}
