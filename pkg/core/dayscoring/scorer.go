package dayscoring

import (
	"github.com/quedamos/quedamos-engine/pkg/core/model"
)

// ScoreDay aggregates one date's overlap measurements into a DayScore.
//
// The score combines the attendance ratio (available members over roster
// size) with overlap quality (the longest stretch of the day during which
// all available members are simultaneously free, as a fraction of the
// day), weighted per the supplied policy and clamped to [0, 1]. Weights
// are expected to satisfy ScoreWeights.Validate; a policy that sums to
// zero is replaced with the defaults rather than dividing by zero.
//
// A roster of zero members is a defined boundary, not an error: the date
// scores 0. Dates where nobody is available also score 0 rather than
// being omitted; whether to display them is the ranking stage's call.
func ScoreDay(date string, totalMembers int, coverage *DayCoverage, weights ScoreWeights) model.DayScore {
	score := model.DayScore{
		Date:         date,
		TotalMembers: totalMembers,
	}

	for _, minutes := range coverage.CoveredMinutes {
		if minutes > 0 {
			score.AvailableCount++
		}
	}

	if totalMembers == 0 || score.AvailableCount == 0 {
		return score
	}

	if weights.Attendance+weights.Overlap <= 0 {
		weights = DefaultScoreWeights()
	}

	attendanceRatio := float64(score.AvailableCount) / float64(totalMembers)
	overlapQuality := float64(coverage.MinutesAtLeast[score.AvailableCount]) / float64(MinutesPerDay)

	combined := (weights.Attendance*attendanceRatio + weights.Overlap*overlapQuality) /
		(weights.Attendance + weights.Overlap)
	score.Score = clamp01(combined)

	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
