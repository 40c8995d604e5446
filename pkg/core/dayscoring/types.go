package dayscoring

import (
	"sort"

	"github.com/quedamos/quedamos-engine/pkg/core/model"
)

// MinutesPerDay is the upper bound of the time-of-day scale
const MinutesPerDay = 1440

// Interval is a half-open range [Start, End) of time-of-day, in minutes
// since midnight. Intervals never cross midnight.
type Interval struct {
	Start int
	End   int
}

// Length returns the number of minutes the interval covers
func (iv Interval) Length() int {
	return iv.End - iv.Start
}

// IsValid reports whether the interval sits inside a single day with Start < End
func (iv Interval) IsValid() bool {
	return iv.Start >= 0 && iv.Start < iv.End && iv.End <= MinutesPerDay
}

// slotTable maps each named slot to its fixed canonical interval.
// Static configuration, not user-editable.
var slotTable = map[model.TimeSlot]Interval{
	model.SlotMorning:   {Start: 480, End: 840},   // 8:00 – 14:00
	model.SlotAfternoon: {Start: 840, End: 1200},  // 14:00 – 20:00
	model.SlotEvening:   {Start: 1200, End: 1440}, // 20:00 – 24:00
}

// SlotInterval returns the canonical interval for a named slot.
// Total over the valid slot enum; unknown slots (rejected by Normalize
// before any scoring) map to the zero interval.
func SlotInterval(slot model.TimeSlot) Interval {
	return slotTable[slot]
}

// Intersect returns the intersection of two intervals. Touching endpoints
// (a.End == b.Start) do not overlap, consistent with half-open semantics.
func Intersect(a, b Interval) (Interval, bool) {
	start := max(a.Start, b.Start)
	end := min(a.End, b.End)
	if start >= end {
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// MergeIntervals returns a minimal sorted sequence covering the same minutes
// as the input: adjacent and overlapping intervals are coalesced. The input
// slice is not modified.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &merged[len(merged)-1]
		if iv.Start <= last.End {
			// Overlapping or touching: extend the current run
			if iv.End > last.End {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}

	return merged
}

// UnionLength returns the total minutes covered by a set of intervals,
// counting overlapping minutes once.
func UnionLength(intervals []Interval) int {
	total := 0
	for _, iv := range MergeIntervals(intervals) {
		total += iv.Length()
	}
	return total
}

// NormalizedCoverage is the canonical per-date representation of one
// member's availability: the whole day, or a merged, sorted,
// non-overlapping sequence of intervals.
type NormalizedCoverage struct {
	FullDay   bool
	Intervals []Interval
}

// CoveredMinutes returns how many minutes of the date the coverage spans
func (c NormalizedCoverage) CoveredMinutes() int {
	if c.FullDay {
		return MinutesPerDay
	}
	total := 0
	for _, iv := range c.Intervals {
		total += iv.Length()
	}
	return total
}
