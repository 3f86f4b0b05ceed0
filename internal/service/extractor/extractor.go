package extractor

import (
	"context"
	"time"

	"github.com/nhannv/vikonews/internal/models"
)

// Candidate is a raw article record produced by one source extractor,
// before deduplication and enrichment.
type Candidate struct {
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Content     string          `json:"content"`
	OriginalURL string          `json:"original_url"`
	ImageURL    string          `json:"image_url"`
	Source      string          `json:"source"`
	Category    models.Category `json:"category"`
	PublishedAt time.Time       `json:"published_at"`
	// Position is the zero-based index of the item on the source page;
	// lower means it appeared higher and carries more editorial weight.
	Position int `json:"position"`
}

// Extractor fetches one external site or feed and yields a finite list of
// candidates. Implementations must not panic past their boundary and must
// bound the number of detail fetches per run. A non-nil error marks the
// source as failed for the run; any candidates returned alongside it are
// still merged.
type Extractor interface {
	Name() string
	Extract(ctx context.Context) ([]Candidate, error)
}
