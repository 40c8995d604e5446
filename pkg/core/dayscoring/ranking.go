package dayscoring

import (
	"sort"

	"github.com/quedamos/quedamos-engine/pkg/core/model"
)

// Rank sorts day scores in place into their deterministic total order:
// score descending, then available count descending, then date ascending
// (earliest first). ISO dates compare lexicographically, so the string
// comparison is also chronological.
func Rank(scores []model.DayScore) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		if scores[i].AvailableCount != scores[j].AvailableCount {
			return scores[i].AvailableCount > scores[j].AvailableCount
		}
		return scores[i].Date < scores[j].Date
	})
}

// TopN returns the best n candidate dates as a ranked prefix. The input is
// not modified. n <= 0 falls back to DefaultTopN.
func TopN(scores []model.DayScore, n int) []model.DayScore {
	if n <= 0 {
		n = DefaultTopN
	}

	ranked := make([]model.DayScore, len(scores))
	copy(ranked, scores)
	Rank(ranked)

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
