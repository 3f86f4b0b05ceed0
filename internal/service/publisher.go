package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nhannv/vikonews/internal/config"
	"github.com/nhannv/vikonews/internal/models"
	"github.com/nhannv/vikonews/internal/service/wordpress"
	"github.com/nhannv/vikonews/pkg/util"
)

// PublishTarget names a logical placement on the site. Both targets share
// one underlying CMS post.
type PublishTarget string

const (
	TargetMain  PublishTarget = "main"
	TargetDaily PublishTarget = "daily"
)

// PublishStore is the slice of the store the publisher needs.
type PublishStore interface {
	GetArticle(ctx context.Context, id uint) (*models.Article, error)
	RecordPublish(ctx context.Context, id uint, target PublishTarget, postURL, imageURL string, mediaID int) error
	DeleteArticle(ctx context.Context, id uint) error
}

// CMS is the remote publishing boundary. Calls are slow and may fail;
// failures surface to the caller and are never auto-retried here.
type CMS interface {
	CreatePost(ctx context.Context, req wordpress.PostRequest) (*wordpress.PostResult, error)
	UploadMediaFromURL(ctx context.Context, imageURL string) (*wordpress.MediaResult, error)
	DeletePost(ctx context.Context, id int) error
}

// PublishResult is returned to the caller for direct display.
type PublishResult struct {
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	URL     string `json:"url,omitempty"`
}

type PublisherService struct {
	store  PublishStore
	cms    CMS
	cfg    config.WordPressConfig
	logger *zap.Logger
}

func NewPublisherService(store PublishStore, cms CMS, cfg config.WordPressConfig, logger *zap.Logger) *PublisherService {
	return &PublisherService{
		store:  store,
		cms:    cms,
		cfg:    cfg,
		logger: logger,
	}
}

// Publish pushes one article to the given target. A set WordpressURL
// permanently blocks further post creation for the article: repeating a
// target is a no-op reporting success-without-action, and the second
// target reuses the existing post instead of creating another one.
func (s *PublisherService) Publish(ctx context.Context, id uint, target PublishTarget) (*PublishResult, error) {
	if target != TargetMain && target != TargetDaily {
		return nil, fmt.Errorf("unknown publish target %q", target)
	}

	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	alreadyFlagged := (target == TargetMain && article.IsPublishedMain) ||
		(target == TargetDaily && article.IsPublishedDaily)
	if alreadyFlagged {
		return &PublishResult{Success: true, Skipped: true, URL: article.WordpressURL}, nil
	}

	if article.Status == models.StatusArchived {
		return nil, fmt.Errorf("article %d is archived and cannot be published", id)
	}

	if article.WordpressURL != "" {
		// Post already exists, created by the other target. Reuse it with no
		// remote call; creating a second post would duplicate the article on
		// the site.
		if err := s.store.RecordPublish(ctx, id, target, "", "", 0); err != nil {
			return nil, err
		}
		return &PublishResult{Success: true, URL: article.WordpressURL}, nil
	}

	// Media upload happens before post creation so the most failure-prone
	// remote call runs last; a failed upload degrades to a post without a
	// featured image.
	var mediaID int
	var mediaURL string
	if article.ImageURL != "" {
		media, err := s.cms.UploadMediaFromURL(ctx, article.ImageURL)
		if err != nil {
			s.logger.Warn("Media upload failed, publishing without featured image",
				zap.Uint("id", id),
				zap.Error(err))
		} else {
			mediaID = media.ID
			mediaURL = media.URL
		}
	}

	post, err := s.cms.CreatePost(ctx, wordpress.PostRequest{
		Title:           util.FirstNonEmpty(article.TranslatedTitle, article.Title),
		Content:         util.FirstNonEmpty(article.TranslatedContent, article.Content),
		Excerpt:         util.FirstNonEmpty(article.TranslatedSummary, article.Summary),
		CategoryID:      s.categoryID(target),
		FeaturedMediaID: mediaID,
	})
	if err != nil {
		// No publish flags are set; the article stays unpublished and the
		// error surfaces verbatim for manual retry.
		return nil, fmt.Errorf("publish article %d: %w", id, err)
	}

	if err := s.store.RecordPublish(ctx, id, target, post.URL, mediaURL, mediaID); err != nil {
		return nil, err
	}

	s.logger.Info("Article published",
		zap.Uint("id", id),
		zap.String("target", string(target)),
		zap.String("url", post.URL))
	return &PublishResult{Success: true, URL: post.URL}, nil
}

// Delete removes the article row. The remote post is deleted best effort
// first; a CMS failure is logged and does not block local deletion.
func (s *PublisherService) Delete(ctx context.Context, id uint) error {
	article, err := s.store.GetArticle(ctx, id)
	if err != nil {
		return err
	}

	if article.WordpressMediaID > 0 || article.WordpressURL != "" {
		if postID := extractPostID(article); postID > 0 {
			if err := s.cms.DeletePost(ctx, postID); err != nil {
				s.logger.Warn("Remote post deletion failed, removing local row anyway",
					zap.Uint("id", id),
					zap.Error(err))
			}
		}
	}

	return s.store.DeleteArticle(ctx, id)
}

func (s *PublisherService) categoryID(target PublishTarget) int {
	if target == TargetDaily {
		return s.cfg.DailyCategoryID
	}
	return s.cfg.MainCategoryID
}

// extractPostID derives the remote post id. WordPress permalinks carry
// the post id as ?p=N on unpretty installs; pretty permalinks leave us
// only the media id hint, so zero disables remote cleanup.
func extractPostID(article *models.Article) int {
	var id int
	if n, err := fmt.Sscanf(article.WordpressURL, "%*[^?]?p=%d", &id); err == nil && n == 1 {
		return id
	}
	return 0
}
