package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/config"
	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/internal/service/extractor"
)

// CandidateStore is the slice of the store the coordinator needs.
type CandidateStore interface {
	SaveCandidate(ctx context.Context, cand extractor.Candidate) (*models.Article, bool, error)
	RecordRun(ctx context.Context, run *models.CrawlerRun)
}

// SourceReport is the per-source outcome of one run.
type SourceReport struct {
	Count int    `json:"count"`
	Error string `json:"error,omitempty"`
}

// CrawlResult summarizes one pipeline run for direct display.
type CrawlResult struct {
	Status        models.RunStatus        `json:"status"`
	NewItemsSaved int                     `json:"new_items_saved"`
	Duplicates    int                     `json:"duplicates"`
	PerSource     map[string]SourceReport `json:"per_source"`
	Errors        []string                `json:"errors,omitempty"`
	Enrichment    *EnrichResult           `json:"enrichment,omitempty"`
	Duration      time.Duration           `json:"duration"`
}

// CrawlerService fans out to all source extractors, dedups and ranks the
// merged candidates, persists new ones as translation-pending, and then
// enriches them as a followup step within the same run.
type CrawlerService struct {
	extractors []extractor.Extractor
	store      CandidateStore
	enrich     *EnrichService
	cfg        config.CrawlerConfig
	logger     *zap.Logger

	lowPriority map[string]bool
}

func NewCrawlerService(extractors []extractor.Extractor, store CandidateStore, enrich *EnrichService, cfg config.CrawlerConfig, logger *zap.Logger) *CrawlerService {
	lowPriority := make(map[string]bool, len(cfg.LowPrioritySources))
	for _, name := range cfg.LowPrioritySources {
		lowPriority[name] = true
	}
	return &CrawlerService{
		extractors:  extractors,
		store:       store,
		enrich:      enrich,
		cfg:         cfg,
		logger:      logger,
		lowPriority: lowPriority,
	}
}

// Sources lists the registered extractor names.
func (s *CrawlerService) Sources() []string {
	names := make([]string, 0, len(s.extractors))
	for _, e := range s.extractors {
		names = append(names, e.Name())
	}
	return names
}

// Crawl runs one extractor (by name) or all of them, and returns the run
// summary. Per-source failures are isolated; only a run where every
// source failed counts as FAILED.
func (s *CrawlerService) Crawl(ctx context.Context, sourceName string) (*CrawlResult, error) {
	targets := s.extractors
	if sourceName != "" {
		target := s.findExtractor(sourceName)
		if target == nil {
			return nil, fmt.Errorf("unknown source %q", sourceName)
		}
		targets = []extractor.Extractor{target}
	}

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeoutDuration())
	defer cancel()

	start := time.Now()
	merged, reports := s.collect(runCtx, targets)
	status := runStatus(reports, len(targets))

	ranked := RankCandidates(merged, s.lowPriority)

	result := &CrawlResult{
		Status:    status,
		PerSource: reports,
	}

	var newIDs []uint
	for _, cand := range ranked {
		article, created, err := s.store.SaveCandidate(runCtx, cand)
		if err != nil {
			s.logger.Error("Failed to persist candidate",
				zap.String("url", cand.OriginalURL),
				zap.Error(err))
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		if created {
			result.NewItemsSaved++
			newIDs = append(newIDs, article.ID)
		} else {
			result.Duplicates++
		}
	}

	// Enrichment follows insertion; its failures never fail the run.
	if s.enrich != nil && len(newIDs) > 0 {
		enrichResult, err := s.enrich.TranslateBatch(runCtx, newIDs)
		if err != nil {
			s.logger.Error("Enrichment followup failed", zap.Error(err))
			result.Errors = append(result.Errors, err.Error())
		} else {
			result.Enrichment = enrichResult
		}
	}

	result.Duration = time.Since(start)
	s.recordRun(ctx, result, reports)

	s.logger.Info("Crawl run finished",
		zap.String("status", string(result.Status)),
		zap.Int("new", result.NewItemsSaved),
		zap.Int("duplicates", result.Duplicates),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// collect fans out one goroutine per extractor and settles them all
// independently: a failing source contributes its error, never
// cancellation of its siblings. Partial output returned alongside an
// error is still merged.
func (s *CrawlerService) collect(ctx context.Context, targets []extractor.Extractor) ([]extractor.Candidate, map[string]SourceReport) {
	type outcome struct {
		name       string
		candidates []extractor.Candidate
		err        error
	}

	results := make(chan outcome, len(targets))
	var wg sync.WaitGroup
	for _, e := range targets {
		wg.Add(1)
		go func(e extractor.Extractor) {
			defer wg.Done()
			// Extractors recover internally, but a misbehaving one must
			// still never take its siblings down.
			defer func() {
				if r := recover(); r != nil {
					results <- outcome{name: e.Name(), err: fmt.Errorf("panic: %v", r)}
				}
			}()
			candidates, err := e.Extract(ctx)
			results <- outcome{name: e.Name(), candidates: candidates, err: err}
		}(e)
	}
	wg.Wait()
	close(results)

	var merged []extractor.Candidate
	reports := make(map[string]SourceReport, len(targets))
	for out := range results {
		report := SourceReport{Count: len(out.candidates)}
		if out.err != nil {
			report.Error = out.err.Error()
			s.logger.Warn("Source extraction failed",
				zap.String("source", out.name),
				zap.Error(out.err))
		}
		reports[out.name] = report
		merged = append(merged, out.candidates...)
	}
	return merged, reports
}

func (s *CrawlerService) findExtractor(name string) extractor.Extractor {
	for _, e := range s.extractors {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

func runStatus(reports map[string]SourceReport, total int) models.RunStatus {
	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	switch {
	case failed == 0:
		return models.RunSuccess
	case failed == total:
		return models.RunFailed
	default:
		return models.RunPartial
	}
}

// recordRun appends the audit entry. Uses the parent context so a run
// that timed out still gets logged.
func (s *CrawlerService) recordRun(ctx context.Context, result *CrawlResult, reports map[string]SourceReport) {
	var details models.JSONMap
	for name, r := range reports {
		if r.Error != "" {
			if details == nil {
				details = models.JSONMap{}
			}
			details[name] = r.Error
		}
	}

	s.store.RecordRun(ctx, &models.CrawlerRun{
		RunAt:      time.Now(),
		Status:     result.Status,
		ItemsFound: result.NewItemsSaved,
		Duplicates: result.Duplicates,
		Message: fmt.Sprintf("%d new, %d duplicates, %d/%d sources failed",
			result.NewItemsSaved, result.Duplicates, len(details), len(reports)),
		ErrorDetails: details,
		DurationMS:   result.Duration.Milliseconds(),
	})
}
