package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/config"
	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/internal/service/translator"
	"github.com/nhannv/vikonews/pkg/retry"
)

// Translator is the LLM boundary the enrichment service calls through.
type Translator interface {
	Translate(ctx context.Context, req translator.Request) (*translator.Result, error)
}

// EnrichmentStore is the slice of the store enrichment needs.
type EnrichmentStore interface {
	GetArticle(ctx context.Context, id uint) (*models.Article, error)
	MarkTranslated(ctx context.Context, id uint, res TranslationUpdate) error
	MarkTranslationFailed(ctx context.Context, id uint, fallbackTitle string, category models.Category, reason string) error
}

// EnrichResult reports one batch-enrichment invocation.
type EnrichResult struct {
	TranslatedCount int `json:"translated_count"`
	SkippedCount    int `json:"skipped_count"`
	FailedCount     int `json:"failed_count"`
}

// EnrichService translates and classifies articles in bounded concurrent
// batches. A single article exhausting its retries never affects its
// batch siblings and never blocks the pipeline.
type EnrichService struct {
	store      EnrichmentStore
	llm        Translator
	policy     retry.Policy
	batchSize  int
	batchPause time.Duration
	korean     map[string]bool
	logger     *zap.Logger
}

func NewEnrichService(store EnrichmentStore, llm Translator, cfg config.TranslatorConfig, logger *zap.Logger) *EnrichService {
	korean := make(map[string]bool, len(cfg.KoreanSources))
	for _, name := range cfg.KoreanSources {
		korean[name] = true
	}
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 10
	}
	return &EnrichService{
		store:      store,
		llm:        llm,
		policy:     retry.New(cfg.MaxAttempts, cfg.RetryDelayDuration()),
		batchSize:  batchSize,
		batchPause: cfg.BatchPauseDuration(),
		korean:     korean,
		logger:     logger,
	}
}

type enrichOutcome int

const (
	outcomeTranslated enrichOutcome = iota
	outcomeSkipped
	outcomeFailed
)

// TranslateBatch enriches the given articles in fixed-size concurrent
// batches with a short pause in between, bounding pressure on the LLM.
func (s *EnrichService) TranslateBatch(ctx context.Context, ids []uint) (*EnrichResult, error) {
	result := &EnrichResult{}
	var mu sync.Mutex

	for start := 0; start < len(ids); start += s.batchSize {
		end := start + s.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		var wg sync.WaitGroup
		for _, id := range ids[start:end] {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				outcome := s.enrichOne(ctx, id)
				mu.Lock()
				switch outcome {
				case outcomeTranslated:
					result.TranslatedCount++
				case outcomeSkipped:
					result.SkippedCount++
				case outcomeFailed:
					result.FailedCount++
				}
				mu.Unlock()
			}(id)
		}
		wg.Wait()

		if end < len(ids) {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.batchPause):
			}
		}
	}

	s.logger.Info("Enrichment batch finished",
		zap.Int("translated", result.TranslatedCount),
		zap.Int("skipped", result.SkippedCount),
		zap.Int("failed", result.FailedCount))
	return result, nil
}

func (s *EnrichService) enrichOne(ctx context.Context, id uint) enrichOutcome {
	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load article for enrichment", zap.Uint("id", id), zap.Error(err))
		return outcomeFailed
	}

	// Already done: completed earlier, explicitly skipped, or hand-drafted
	// by an editor. Resubmitting must not burn another LLM call.
	if article.EnrichmentDone() {
		return outcomeSkipped
	}

	// Korean-native sources are already in the target language; completing
	// with the original text costs nothing.
	if s.korean[article.Source] {
		update := TranslationUpdate{
			Title:    article.Title,
			Summary:  article.Summary,
			Content:  article.Content,
			Category: fallbackCategory(article),
		}
		if err := s.store.MarkTranslated(ctx, id, update); err != nil {
			s.logger.Error("Failed to complete native article", zap.Uint("id", id), zap.Error(err))
			return outcomeFailed
		}
		return outcomeTranslated
	}

	var res *translator.Result
	err = s.policy.Do(ctx, func() error {
		var callErr error
		res, callErr = s.llm.Translate(ctx, translator.Request{
			Title:   article.Title,
			Summary: article.Summary,
			Content: article.Content,
			Source:  article.Source,
		})
		return callErr
	})
	if err != nil {
		// Retries exhausted. The article is persisted with the original
		// title as fallback; the pipeline moves on.
		s.logger.Warn("Translation exhausted retries",
			zap.Uint("id", id),
			zap.String("source", article.Source),
			zap.Error(err))
		if storeErr := s.store.MarkTranslationFailed(ctx, id, article.Title, fallbackCategory(article), err.Error()); storeErr != nil {
			s.logger.Error("Failed to record translation failure", zap.Uint("id", id), zap.Error(storeErr))
		}
		return outcomeFailed
	}

	update := TranslationUpdate{
		Title:    res.Title,
		Summary:  res.Summary,
		Content:  res.Content,
		Category: models.NormalizeCategory(res.Category),
	}
	if err := s.store.MarkTranslated(ctx, id, update); err != nil {
		s.logger.Error("Failed to store translation", zap.Uint("id", id), zap.Error(err))
		return outcomeFailed
	}
	return outcomeTranslated
}

// fallbackCategory keeps the extractor's hint when it exists and defaults
// otherwise; either way the stored value is a member of the enum.
func fallbackCategory(article *models.Article) models.Category {
	if article.Category != "" {
		return models.NormalizeCategory(string(article.Category))
	}
	return models.DefaultCategory
}
