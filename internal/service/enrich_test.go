package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/config"
	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/internal/service/translator"
)

type fakeEnrichStore struct {
	mu       sync.Mutex
	articles map[uint]*models.Article
	failures map[uint]string
}

func newFakeEnrichStore(articles ...*models.Article) *fakeEnrichStore {
	s := &fakeEnrichStore{
		articles: map[uint]*models.Article{},
		failures: map[uint]string{},
	}
	for _, a := range articles {
		s.articles[a.ID] = a
	}
	return s
}

func (f *fakeEnrichStore) GetArticle(_ context.Context, id uint) (*models.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.articles[id]
	if !ok {
		return nil, errors.New("article not found")
	}
	copied := *a
	return &copied, nil
}

func (f *fakeEnrichStore) MarkTranslated(_ context.Context, id uint, res TranslationUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.articles[id]
	a.TranslatedTitle = res.Title
	a.TranslatedSummary = res.Summary
	a.TranslatedContent = res.Content
	a.Category = res.Category
	a.TranslationStatus = models.TranslationCompleted
	if a.Status == models.StatusDraft {
		a.Status = models.StatusTranslated
	}
	return nil
}

func (f *fakeEnrichStore) MarkTranslationFailed(_ context.Context, id uint, fallbackTitle string, category models.Category, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.articles[id]
	a.TranslatedTitle = fallbackTitle
	a.Category = category
	a.TranslationStatus = models.TranslationFailed
	f.failures[id] = reason
	return nil
}

type fakeTranslator struct {
	mu      sync.Mutex
	calls   int
	failing int
	result  *translator.Result
}

func (f *fakeTranslator) Translate(context.Context, translator.Request) (*translator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failing {
		return nil, errors.New("model overloaded")
	}
	if f.result == nil {
		return &translator.Result{Title: "번역 제목", Summary: "요약", Content: "본문", Category: "Economy"}, nil
	}
	return f.result, nil
}

func (f *fakeTranslator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testTranslatorConfig() config.TranslatorConfig {
	return config.TranslatorConfig{
		MaxAttempts:   2,
		RetryDelay:    "1ms",
		BatchSize:     5,
		BatchPause:    "1ms",
		KoreanSources: []string{"yonhap", "chosun"},
	}
}

func TestEnrichTranslatesForeignArticle(t *testing.T) {
	store := newFakeEnrichStore(&models.Article{
		ID: 1, Source: "vnexpress", Title: "Tin tức",
		Status: models.StatusDraft, TranslationStatus: models.TranslationPending,
	})
	llm := &fakeTranslator{}
	svc := NewEnrichService(store, llm, testTranslatorConfig(), zap.NewNop())

	result, err := svc.TranslateBatch(context.Background(), []uint{1})
	require.NoError(t, err)
	require.Equal(t, 1, result.TranslatedCount)
	require.Equal(t, 1, llm.callCount())

	a := store.articles[1]
	require.Equal(t, "번역 제목", a.TranslatedTitle)
	require.Equal(t, models.CategoryEconomy, a.Category)
	require.Equal(t, models.TranslationCompleted, a.TranslationStatus)
	require.Equal(t, models.StatusTranslated, a.Status)
}

func TestEnrichKoreanSourceSkipsLLM(t *testing.T) {
	store := newFakeEnrichStore(&models.Article{
		ID: 1, Source: "yonhap", Title: "한국 뉴스", Summary: "요약", Content: "본문",
		Status: models.StatusDraft, TranslationStatus: models.TranslationPending,
	})
	llm := &fakeTranslator{}
	svc := NewEnrichService(store, llm, testTranslatorConfig(), zap.NewNop())

	result, err := svc.TranslateBatch(context.Background(), []uint{1})
	require.NoError(t, err)
	require.Equal(t, 1, result.TranslatedCount)
	require.Equal(t, 0, llm.callCount())

	a := store.articles[1]
	require.Equal(t, "한국 뉴스", a.TranslatedTitle)
	require.Equal(t, models.TranslationCompleted, a.TranslationStatus)
}

func TestEnrichAlreadyDoneSkipsWithoutCalls(t *testing.T) {
	store := newFakeEnrichStore(&models.Article{
		ID: 1, Source: "vnexpress",
		TranslationStatus: models.TranslationCompleted,
		TranslatedTitle:   "기존 번역",
	})
	llm := &fakeTranslator{}
	svc := NewEnrichService(store, llm, testTranslatorConfig(), zap.NewNop())

	result, err := svc.TranslateBatch(context.Background(), []uint{1})
	require.NoError(t, err)
	require.Equal(t, 1, result.SkippedCount)
	require.Equal(t, 0, llm.callCount())
	require.Equal(t, "기존 번역", store.articles[1].TranslatedTitle)
}

func TestEnrichRecoversWithinRetryBudget(t *testing.T) {
	store := newFakeEnrichStore(&models.Article{
		ID: 1, Source: "vnexpress", Title: "Tin tức",
		Status: models.StatusDraft, TranslationStatus: models.TranslationPending,
	})
	llm := &fakeTranslator{failing: 1}
	svc := NewEnrichService(store, llm, testTranslatorConfig(), zap.NewNop())

	result, err := svc.TranslateBatch(context.Background(), []uint{1})
	require.NoError(t, err)
	require.Equal(t, 1, result.TranslatedCount)
	require.Equal(t, 2, llm.callCount())
}

func TestEnrichExhaustionFallsBackToOriginalTitle(t *testing.T) {
	store := newFakeEnrichStore(&models.Article{
		ID: 1, Source: "vnexpress", Title: "Tin gốc", Category: models.CategoryTravel,
		Status: models.StatusDraft, TranslationStatus: models.TranslationPending,
	})
	llm := &fakeTranslator{failing: 100}
	svc := NewEnrichService(store, llm, testTranslatorConfig(), zap.NewNop())

	result, err := svc.TranslateBatch(context.Background(), []uint{1})
	require.NoError(t, err)
	require.Equal(t, 1, result.FailedCount)
	require.Equal(t, 2, llm.callCount())

	a := store.articles[1]
	// Display fields are never left empty even on total failure.
	require.Equal(t, "Tin gốc", a.TranslatedTitle)
	require.Equal(t, models.CategoryTravel, a.Category)
	require.Equal(t, models.TranslationFailed, a.TranslationStatus)
	require.Contains(t, store.failures[1], "failed after 2 attempts")
}

func TestEnrichExhaustionWithoutHintUsesDefaultCategory(t *testing.T) {
	store := newFakeEnrichStore(&models.Article{
		ID: 1, Source: "vnexpress", Title: "Tin gốc",
		Status: models.StatusDraft, TranslationStatus: models.TranslationPending,
	})
	llm := &fakeTranslator{failing: 100}
	svc := NewEnrichService(store, llm, testTranslatorConfig(), zap.NewNop())

	_, err := svc.TranslateBatch(context.Background(), []uint{1})
	require.NoError(t, err)
	require.Equal(t, models.DefaultCategory, store.articles[1].Category)
}

func TestEnrichOneFailureDoesNotAffectSiblings(t *testing.T) {
	store := newFakeEnrichStore(
		&models.Article{ID: 1, Source: "vnexpress", Title: "ok", Status: models.StatusDraft, TranslationStatus: models.TranslationPending},
		&models.Article{ID: 2, Source: "yonhap", Title: "네이티브", Status: models.StatusDraft, TranslationStatus: models.TranslationPending},
	)
	// First call fails both attempts for article 1, article 2 never calls.
	llm := &fakeTranslator{failing: 100}
	svc := NewEnrichService(store, llm, testTranslatorConfig(), zap.NewNop())

	result, err := svc.TranslateBatch(context.Background(), []uint{1, 2})
	require.NoError(t, err)
	require.Equal(t, 1, result.FailedCount)
	require.Equal(t, 1, result.TranslatedCount)
	require.Equal(t, models.TranslationCompleted, store.articles[2].TranslationStatus)
}
