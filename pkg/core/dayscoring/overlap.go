package dayscoring

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInconsistentTimeline indicates the sweep encountered more end events
// than start events, which can only happen through an internal bug. It is
// never returned for valid normalized coverage.
var ErrInconsistentTimeline = errors.New("interval timeline has more end events than start events")

// DayCoverage holds the overlap measurements for one date.
type DayCoverage struct {
	// CoveredMinutes maps each member present on this date to the total
	// minutes they are available (1440 for a full day).
	CoveredMinutes map[string]int

	// MinutesAtLeast[k] is the total minutes during which at least k of the
	// members are simultaneously available, for k in 1..len(CoveredMinutes).
	// Index 0 is unused.
	MinutesAtLeast []int
}

// coverageEvent is one interval boundary on the sweep timeline
type coverageEvent struct {
	at    int
	delta int // +1 for a start, -1 for an end
}

// StackCoverage computes per-member covered minutes and the stacked
// coverage histogram for a single date. Members with no record for the
// date are simply absent from the input; absence means unknown, not
// available-all-day.
//
// Every coverage is converted into ±1 boundary events and swept in
// chronological order while tracking the running concurrency count. End
// events apply before start events at the same instant, so adjacent
// non-overlapping intervals are never counted as overlapping.
func StackCoverage(coverage map[string]NormalizedCoverage) (*DayCoverage, error) {
	result := &DayCoverage{
		CoveredMinutes: make(map[string]int, len(coverage)),
	}

	events := make([]coverageEvent, 0, len(coverage)*2)
	for userID, cov := range coverage {
		result.CoveredMinutes[userID] = cov.CoveredMinutes()

		if cov.FullDay {
			events = append(events,
				coverageEvent{at: 0, delta: 1},
				coverageEvent{at: MinutesPerDay, delta: -1})
			continue
		}
		for _, iv := range cov.Intervals {
			events = append(events,
				coverageEvent{at: iv.Start, delta: 1},
				coverageEvent{at: iv.End, delta: -1})
		}
	}

	stacked, err := sweep(events, len(coverage))
	if err != nil {
		return nil, err
	}
	result.MinutesAtLeast = stacked

	return result, nil
}

// sweep walks boundary events in chronological order and accumulates, for
// each concurrency level k in 1..memberCount, the minutes spent at or
// above that level. Returns a slice of length memberCount+1 with index 0
// unused.
func sweep(events []coverageEvent, memberCount int) ([]int, error) {
	minutesAtLeast := make([]int, memberCount+1)
	if len(events) == 0 {
		return minutesAtLeast, nil
	}

	// Ends sort before starts at equal timestamps (-1 < +1)
	sort.Slice(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].delta < events[j].delta
	})

	concurrency := 0
	prev := events[0].at

	for _, ev := range events {
		if length := ev.at - prev; length > 0 && concurrency > 0 {
			for k := 1; k <= concurrency && k <= memberCount; k++ {
				minutesAtLeast[k] += length
			}
		}
		prev = ev.at

		concurrency += ev.delta
		if concurrency < 0 {
			return nil, fmt.Errorf("sweep at minute %d: %w", ev.at, ErrInconsistentTimeline)
		}
	}

	if concurrency != 0 {
		return nil, fmt.Errorf("sweep finished with %d unclosed intervals: %w", concurrency, ErrInconsistentTimeline)
	}

	return minutesAtLeast, nil
}
