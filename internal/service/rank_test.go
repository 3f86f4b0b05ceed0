package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nhannv/vikonews/internal/service/extractor"
)

func TestRankCandidatesPositionOrder(t *testing.T) {
	in := []extractor.Candidate{
		{Source: "yonhap", Title: "c", Position: 2},
		{Source: "chosun", Title: "a", Position: 0},
		{Source: "yonhap", Title: "b", Position: 1},
	}

	ranked := RankCandidates(in, nil)

	require.Equal(t, []string{"a", "b", "c"}, titles(ranked))
	// Input slice stays untouched.
	require.Equal(t, "c", in[0].Title)
}

func TestRankCandidatesLowPriorityTail(t *testing.T) {
	in := []extractor.Candidate{
		{Source: "cafef", Title: "demoted-1", Position: 0},
		{Source: "yonhap", Title: "top", Position: 0},
		{Source: "cafef", Title: "demoted-2", Position: 1},
		{Source: "chosun", Title: "second", Position: 3},
	}

	ranked := RankCandidates(in, map[string]bool{"cafef": true})

	require.Equal(t, []string{"top", "second", "demoted-1", "demoted-2"}, titles(ranked))
}

func TestRankCandidatesMissingPositionSortsLast(t *testing.T) {
	in := []extractor.Candidate{
		{Source: "yonhap", Title: "no-position", Position: -1},
		{Source: "yonhap", Title: "first", Position: 0},
	}

	ranked := RankCandidates(in, nil)

	require.Equal(t, []string{"first", "no-position"}, titles(ranked))
}

func TestRankCandidatesStableOnTies(t *testing.T) {
	in := []extractor.Candidate{
		{Source: "yonhap", Title: "x", Position: 1},
		{Source: "chosun", Title: "y", Position: 1},
		{Source: "kbs-world", Title: "z", Position: 1},
	}

	ranked := RankCandidates(in, nil)

	require.Equal(t, []string{"x", "y", "z"}, titles(ranked))
}

func titles(candidates []extractor.Candidate) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Title)
	}
	return out
}
