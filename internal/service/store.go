package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/internal/service/extractor"
)

// TopNewsCap is the maximum number of articles that may carry the
// top-news flag at once within one lifecycle scope.
const TopNewsCap = 2

// Store is the durable home of articles and run records. It is passed
// explicitly into every service; there is no package-level database state.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger

	// urlLocks serializes check-then-insert per canonical URL so
	// concurrent runs cannot create duplicate articles.
	urlMu    sync.Mutex
	urlLocks map[string]*sync.Mutex

	// topNewsMu makes the cap check-then-set a critical section within
	// this process.
	topNewsMu sync.Mutex
}

func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{
		db:       db,
		logger:   logger,
		urlLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) lockURL(url string) func() {
	s.urlMu.Lock()
	mu, ok := s.urlLocks[url]
	if !ok {
		mu = &sync.Mutex{}
		s.urlLocks[url] = mu
	}
	s.urlMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// SaveCandidate inserts a new article for the candidate, or refreshes soft
// fields on the already-stored row. Returns the stored article and whether
// it was newly created. The duplicate case is expected steady state, not
// an error.
func (s *Store) SaveCandidate(ctx context.Context, cand extractor.Candidate) (*models.Article, bool, error) {
	unlock := s.lockURL(cand.OriginalURL)
	defer unlock()

	var existing models.Article
	err := s.db.WithContext(ctx).Where("original_url = ?", cand.OriginalURL).First(&existing).Error
	switch {
	case err == nil:
		updates := softRefresh(&existing, cand)
		if len(updates) > 0 {
			if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
				return nil, false, fmt.Errorf("failed to refresh article %d: %w", existing.ID, err)
			}
		}
		return &existing, false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		article := articleFromCandidate(cand)
		if err := s.db.WithContext(ctx).Create(article).Error; err != nil {
			return nil, false, fmt.Errorf("failed to insert article: %w", err)
		}
		return article, true, nil

	default:
		return nil, false, fmt.Errorf("failed to look up %s: %w", cand.OriginalURL, err)
	}
}

// softRefresh fills gaps in a stored row from a re-crawl. Translated and
// editorial fields are never touched here.
func softRefresh(a *models.Article, cand extractor.Candidate) map[string]any {
	updates := map[string]any{}
	if a.Content == "" && cand.Content != "" {
		updates["content"] = cand.Content
	}
	if a.ImageURL == "" && cand.ImageURL != "" {
		updates["image_url"] = cand.ImageURL
	}
	if a.Summary == "" && cand.Summary != "" {
		updates["summary"] = cand.Summary
	}
	return updates
}

func articleFromCandidate(cand extractor.Candidate) *models.Article {
	publishedAt := cand.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = time.Now()
	}
	return &models.Article{
		OriginalURL:       cand.OriginalURL,
		Title:             cand.Title,
		Summary:           cand.Summary,
		Content:           cand.Content,
		ImageURL:          cand.ImageURL,
		Source:            cand.Source,
		Position:          cand.Position,
		PublishedAt:       publishedAt,
		Category:          models.NormalizeCategory(string(cand.Category)),
		Status:            models.StatusDraft,
		TranslationStatus: models.TranslationPending,
	}
}

func (s *Store) GetArticle(ctx context.Context, id uint) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, fmt.Errorf("article %d not found: %w", id, err)
	}
	return &article, nil
}

// ArticleFilter narrows ListArticles. Zero values mean "any".
type ArticleFilter struct {
	Status   models.ArticleStatus
	Category models.Category
	Source   string
	Selected *bool
	Page     int
	Size     int
}

func (s *Store) ListArticles(ctx context.Context, filter ArticleFilter) ([]models.Article, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Article{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Selected != nil {
		query = query.Where("is_selected = ?", *filter.Selected)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.Size)
	var articles []models.Article
	if err := query.Order("published_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&articles).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, total, nil
}

// TranslationUpdate carries enrichment output into the store.
type TranslationUpdate struct {
	Title    string
	Summary  string
	Content  string
	Category models.Category
}

// MarkTranslated stores enrichment output and advances the article to
// TRANSLATED when it is still a draft.
func (s *Store) MarkTranslated(ctx context.Context, id uint, res TranslationUpdate) error {
	updates := map[string]any{
		"translated_title":   res.Title,
		"translated_summary": res.Summary,
		"translated_content": res.Content,
		"category":           res.Category,
		"translation_status": models.TranslationCompleted,
		"translation_error":  "",
	}
	if err := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to store translation for article %d: %w", id, err)
	}
	// Status only ever advances; published or archived rows keep theirs.
	if err := s.db.WithContext(ctx).Model(&models.Article{}).
		Where("id = ? AND status = ?", id, models.StatusDraft).
		Update("status", models.StatusTranslated).Error; err != nil {
		return fmt.Errorf("failed to advance article %d status: %w", id, err)
	}
	return nil
}

// MarkTranslationFailed records retry exhaustion. The fallback title is
// never empty, so downstream display always has something to show.
func (s *Store) MarkTranslationFailed(ctx context.Context, id uint, fallbackTitle string, category models.Category, reason string) error {
	updates := map[string]any{
		"translated_title":   fallbackTitle,
		"category":           category,
		"translation_status": models.TranslationFailed,
		"translation_error":  reason,
	}
	if err := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record translation failure for article %d: %w", id, err)
	}
	return nil
}

func (s *Store) SetSelected(ctx context.Context, id uint, selected bool) error {
	return s.setFlag(ctx, id, "is_selected", selected)
}

func (s *Store) SetCardNews(ctx context.Context, id uint, flagged bool) error {
	return s.setFlag(ctx, id, "is_card_news", flagged)
}

func (s *Store) setFlag(ctx context.Context, id uint, column string, value bool) error {
	result := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Update(column, value)
	if result.Error != nil {
		return fmt.Errorf("failed to update article %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("article %d not found", id)
	}
	return nil
}

func (s *Store) SetCategory(ctx context.Context, id uint, raw string) error {
	category := models.NormalizeCategory(raw)
	return s.update(ctx, id, map[string]any{"category": category})
}

func (s *Store) update(ctx context.Context, id uint, updates map[string]any) error {
	result := s.db.WithContext(ctx).Model(&models.Article{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update article %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("article %d not found", id)
	}
	return nil
}

// SetTopNews toggles the top-news flag. Turning it on runs the cap check
// inside a process-wide critical section; a capped request is rejected
// with the current holders named and mutates nothing.
func (s *Store) SetTopNews(ctx context.Context, id uint, on bool) error {
	if !on {
		return s.setFlag(ctx, id, "is_top_news", false)
	}

	s.topNewsMu.Lock()
	defer s.topNewsMu.Unlock()

	article, err := s.GetArticle(ctx, id)
	if err != nil {
		return err
	}
	if article.IsTopNews {
		return nil
	}

	holders, err := s.topNewsHolders(ctx, article.Terminal())
	if err != nil {
		return err
	}
	if err := checkTopNewsCap(holders, id); err != nil {
		return err
	}

	return s.setFlag(ctx, id, "is_top_news", true)
}

// topNewsHolders returns current flag holders in the same lifecycle scope:
// published articles compete for site display, everything else for
// editorial selection.
func (s *Store) topNewsHolders(ctx context.Context, published bool) ([]models.Article, error) {
	query := s.db.WithContext(ctx).Where("is_top_news = ?", true)
	if published {
		query = query.Where("status = ?", models.StatusPublished)
	} else {
		query = query.Where("status NOT IN ?", []models.ArticleStatus{models.StatusPublished, models.StatusArchived})
	}
	var holders []models.Article
	if err := query.Find(&holders).Error; err != nil {
		return nil, fmt.Errorf("failed to count top news holders: %w", err)
	}
	return holders, nil
}

// checkTopNewsCap rejects a flag request once the cap is already held by
// other articles.
func checkTopNewsCap(holders []models.Article, id uint) error {
	var others []string
	for _, h := range holders {
		if h.ID == id {
			continue
		}
		others = append(others, fmt.Sprintf("#%d %q", h.ID, h.Title))
	}
	if len(others) >= TopNewsCap {
		return fmt.Errorf("top news cap of %d reached, currently held by %s",
			TopNewsCap, strings.Join(others, ", "))
	}
	return nil
}

// RecordPublish stores the outcome of a publish action. Post fields are
// written only when the remote call actually created a post; the daily
// target reusing the main post passes post == nil.
func (s *Store) RecordPublish(ctx context.Context, id uint, target PublishTarget, postURL, imageURL string, mediaID int) error {
	updates := map[string]any{
		"status":       models.StatusPublished,
		"published_at": time.Now(),
		"is_selected":  false,
	}
	if postURL != "" {
		updates["wordpress_url"] = postURL
	}
	if imageURL != "" {
		updates["wordpress_image_url"] = imageURL
	}
	if mediaID > 0 {
		updates["wordpress_media_id"] = mediaID
	}
	switch target {
	case TargetMain:
		updates["is_published_main"] = true
	case TargetDaily:
		updates["is_published_daily"] = true
	}
	return s.update(ctx, id, updates)
}

// DeleteArticle removes the row. Remote CMS cleanup is best effort and
// handled by the publisher before this is called.
func (s *Store) DeleteArticle(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Article{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete article %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("article %d not found", id)
	}
	return nil
}

// RecordRun appends one audit row per pipeline invocation. Logging
// failures never fail the pipeline.
func (s *Store) RecordRun(ctx context.Context, run *models.CrawlerRun) {
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		s.logger.Error("Failed to record crawler run", zap.Error(err))
	}
}

func (s *Store) ListRuns(ctx context.Context, page, size int) ([]models.CrawlerRun, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.CrawlerRun{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	page, size = normalizePage(page, size)
	var runs []models.CrawlerRun
	if err := s.db.WithContext(ctx).
		Order("run_at DESC").
		Offset((page - 1) * size).Limit(size).
		Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, total, nil
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}
