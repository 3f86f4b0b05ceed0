package service

import (
	"sort"

	"github.com/nhannv/vikonews/internal/service/extractor"
)

// positionSentinel sorts candidates without a position hint to the back
// of their tier.
const positionSentinel = 1 << 20

// RankCandidates orders new candidates for persistence: low-priority
// sources form a tail tier, everything else sorts ascending by list-page
// position. The sort is stable, so ties keep their input order.
func RankCandidates(candidates []extractor.Candidate, lowPriority map[string]bool) []extractor.Candidate {
	ranked := make([]extractor.Candidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := tier(ranked[i], lowPriority), tier(ranked[j], lowPriority)
		if ti != tj {
			return ti < tj
		}
		if ti == 1 {
			// Demoted sources keep their relative input order.
			return false
		}
		return position(ranked[i]) < position(ranked[j])
	})
	return ranked
}

func tier(c extractor.Candidate, lowPriority map[string]bool) int {
	if lowPriority[c.Source] {
		return 1
	}
	return 0
}

func position(c extractor.Candidate) int {
	if c.Position < 0 {
		return positionSentinel
	}
	return c.Position
}
