package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnrichmentDone(t *testing.T) {
	cases := []struct {
		name    string
		article Article
		want    bool
	}{
		{
			name:    "pending is not done",
			article: Article{TranslationStatus: TranslationPending},
			want:    false,
		},
		{
			name:    "completed is done",
			article: Article{TranslationStatus: TranslationCompleted},
			want:    true,
		},
		{
			name:    "skipped is done",
			article: Article{TranslationStatus: TranslationSkipped},
			want:    true,
		},
		{
			name:    "failed is not done, a retry may still succeed",
			article: Article{TranslationStatus: TranslationFailed},
			want:    false,
		},
		{
			name: "hand-drafted with all fields is done",
			article: Article{
				TranslationStatus: TranslationDraft,
				TranslatedTitle:   "제목",
				TranslatedSummary: "요약",
				TranslatedContent: "본문",
			},
			want: true,
		},
		{
			name: "draft with missing field is not done",
			article: Article{
				TranslationStatus: TranslationDraft,
				TranslatedTitle:   "제목",
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.article.EnrichmentDone())
		})
	}
}

func TestTerminal(t *testing.T) {
	require.False(t, (&Article{Status: StatusDraft}).Terminal())
	require.False(t, (&Article{Status: StatusTranslated}).Terminal())
	require.True(t, (&Article{Status: StatusPublished}).Terminal())
	require.True(t, (&Article{Status: StatusArchived}).Terminal())
}
