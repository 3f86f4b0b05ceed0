package models

import (
	"time"

	"gorm.io/gorm"
)

// ArticleStatus is the editorial lifecycle state of an article.
type ArticleStatus string

const (
	StatusDraft      ArticleStatus = "DRAFT"
	StatusTranslated ArticleStatus = "TRANSLATED"
	StatusPublished  ArticleStatus = "PUBLISHED"
	StatusArchived   ArticleStatus = "ARCHIVED"
)

// TranslationStatus tracks how far enrichment has taken an article.
type TranslationStatus string

const (
	TranslationPending   TranslationStatus = "PENDING"
	TranslationDraft     TranslationStatus = "DRAFT"
	TranslationCompleted TranslationStatus = "COMPLETED"
	TranslationFailed    TranslationStatus = "FAILED"
	// TranslationSkipped is set only by explicit editorial action,
	// never by the pipeline.
	TranslationSkipped TranslationStatus = "SKIPPED"
)

type Article struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// OriginalURL is the canonical source URL and the dedup key. Two
	// articles with the same OriginalURL must never both exist.
	OriginalURL string `gorm:"uniqueIndex;not null;size:1000" json:"original_url"`

	// Source fields, immutable after creation.
	Title       string    `gorm:"not null;size:1000" json:"title"`
	Summary     string    `gorm:"type:text" json:"summary"`
	Content     string    `gorm:"type:text" json:"content"`
	ImageURL    string    `gorm:"size:1000" json:"image_url"`
	Source      string    `gorm:"size:100;index" json:"source"`
	Position    int       `gorm:"default:0" json:"position"`
	PublishedAt time.Time `json:"published_at"`

	// Enrichment fields, empty until enrichment runs.
	TranslatedTitle   string            `gorm:"size:1000" json:"translated_title"`
	TranslatedSummary string            `gorm:"type:text" json:"translated_summary"`
	TranslatedContent string            `gorm:"type:text" json:"translated_content"`
	Category          Category          `gorm:"size:50;index" json:"category"`
	TranslationStatus TranslationStatus `gorm:"size:20;default:'PENDING';index" json:"translation_status"`
	TranslationError  string            `gorm:"type:text" json:"translation_error,omitempty"`

	// Editorial workflow fields.
	Status           ArticleStatus `gorm:"size:20;default:'DRAFT';index" json:"status"`
	IsSelected       bool          `gorm:"default:false;index" json:"is_selected"`
	IsTopNews        bool          `gorm:"default:false;index" json:"is_top_news"`
	IsCardNews       bool          `gorm:"default:false" json:"is_card_news"`
	IsPublishedMain  bool          `gorm:"default:false" json:"is_published_main"`
	IsPublishedDaily bool          `gorm:"default:false" json:"is_published_daily"`
	IsSentSNS        bool          `gorm:"column:is_sent_sns;default:false" json:"is_sent_sns"`

	// Publish-result fields, set once by the publish step. A non-empty
	// WordpressURL blocks any further post creation for this article.
	WordpressURL      string `gorm:"size:1000" json:"wordpress_url"`
	WordpressImageURL string `gorm:"size:1000" json:"wordpress_image_url"`
	WordpressMediaID  int    `gorm:"default:0" json:"wordpress_media_id"`
	LocalImagePath    string `gorm:"size:1000" json:"local_image_path"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// Terminal reports whether the article has left the editorial pipeline.
func (a *Article) Terminal() bool {
	return a.Status == StatusPublished || a.Status == StatusArchived
}

// FullyTranslated reports whether all three translated fields are populated.
func (a *Article) FullyTranslated() bool {
	return a.TranslatedTitle != "" && a.TranslatedSummary != "" && a.TranslatedContent != ""
}

// EnrichmentDone reports whether enrichment must skip this article: either
// it already completed, or an editor drafted all translated fields by hand.
// Skipping preserves editorial edits and avoids redundant paid LLM calls.
func (a *Article) EnrichmentDone() bool {
	if a.TranslationStatus == TranslationCompleted || a.TranslationStatus == TranslationSkipped {
		return true
	}
	return a.TranslationStatus == TranslationDraft && a.FullyTranslated()
}
