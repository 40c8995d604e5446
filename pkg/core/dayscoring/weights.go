package dayscoring

import "fmt"

// Default scoring policy. The split between attendance and overlap quality
// is a product decision and may be retuned; callers override it through
// ScoreWeights rather than editing scoring code.
const (
	// DefaultAttendanceWeight is the default weight of the attendance
	// ratio (available members / roster size) in the combined score.
	DefaultAttendanceWeight = 0.7

	// DefaultOverlapWeight is the default weight of overlap quality (the
	// fraction of the day during which all available members are
	// simultaneously free) in the combined score.
	DefaultOverlapWeight = 0.3

	// DefaultTopN is how many candidate dates TopN returns when the
	// caller does not ask for a specific count.
	DefaultTopN = 3
)

// ScoreWeights is the relative weighting of the two score components.
// Weights are normalized by their sum, so only their ratio matters.
type ScoreWeights struct {
	Attendance float64
	Overlap    float64
}

// DefaultScoreWeights returns the documented default policy
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Attendance: DefaultAttendanceWeight, Overlap: DefaultOverlapWeight}
}

// ConfigurationError reports unusable score weights
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid scoring configuration: %s", e.Reason)
}

// Validate checks that the weights are non-negative and sum to a positive
// number. Returns a *ConfigurationError otherwise.
func (w ScoreWeights) Validate() error {
	if w.Attendance < 0 || w.Overlap < 0 {
		return &ConfigurationError{Reason: fmt.Sprintf("weights must be non-negative, got attendance=%g overlap=%g", w.Attendance, w.Overlap)}
	}
	if w.Attendance+w.Overlap <= 0 {
		return &ConfigurationError{Reason: "weights must sum to a positive number"}
	}
	return nil
}
