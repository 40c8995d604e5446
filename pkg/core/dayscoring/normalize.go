package dayscoring

import (
	"fmt"

	"github.com/quedamos/quedamos-engine/pkg/core/model"
)

// ValidationError reports an availability record that violates its
// type-consistency invariant. It identifies the offending record so the
// caller can surface a corrective message or discard it.
type ValidationError struct {
	UserID string
	Date   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid availability for user %s on %s: %s", e.UserID, e.Date, e.Reason)
}

// Normalize collapses a heterogeneous availability declaration into its
// canonical coverage. This is the single validation choke point: callers
// never need to re-check type/field consistency downstream.
//
// Deterministic and side-effect-free; the same input always yields the
// same coverage.
func Normalize(a model.Availability) (NormalizedCoverage, error) {
	invalid := func(reason string) (NormalizedCoverage, error) {
		return NormalizedCoverage{}, &ValidationError{UserID: a.UserID, Date: a.Date, Reason: reason}
	}

	if !a.Type.IsValid() {
		return invalid(fmt.Sprintf("unknown availability type %q", a.Type))
	}

	switch a.Type {
	case model.TypeDay:
		if len(a.Slots) > 0 {
			return invalid("day availability must not carry slots")
		}
		if a.StartTime != 0 || a.EndTime != 0 {
			return invalid("day availability must not carry a time range")
		}
		return NormalizedCoverage{FullDay: true}, nil

	case model.TypeSlots:
		if len(a.Slots) == 0 {
			return invalid("slots availability must name at least one slot")
		}
		if a.StartTime != 0 || a.EndTime != 0 {
			return invalid("slots availability must not carry a time range")
		}
		intervals := make([]Interval, 0, len(a.Slots))
		for _, slot := range a.Slots {
			if !slot.IsValid() {
				return invalid(fmt.Sprintf("unknown slot %q", slot))
			}
			intervals = append(intervals, SlotInterval(slot))
		}
		return NormalizedCoverage{Intervals: MergeIntervals(intervals)}, nil

	case model.TypeRange:
		if len(a.Slots) > 0 {
			return invalid("range availability must not carry slots")
		}
		iv := Interval{Start: a.StartTime, End: a.EndTime}
		if !iv.IsValid() {
			return invalid(fmt.Sprintf("time range [%d, %d) must satisfy 0 <= start < end <= %d",
				a.StartTime, a.EndTime, MinutesPerDay))
		}
		return NormalizedCoverage{Intervals: []Interval{iv}}, nil
	}

	// Unreachable: IsValid covers the enum
	return invalid(fmt.Sprintf("unhandled availability type %q", a.Type))
}
