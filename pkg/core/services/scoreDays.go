package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quedamos/quedamos-engine/pkg/core/dayscoring"
	"github.com/quedamos/quedamos-engine/pkg/core/model"
)

// Default input ceilings. The engine is a bounded in-memory computation;
// oversized snapshots are rejected fast instead of degrading.
const (
	DefaultMaxMembers = 200
	DefaultMaxDates   = 366
)

// Options carries the recognized scoring options. The zero value means
// "all defaults".
type Options struct {
	// Weights overrides the score weighting policy. Nil uses the defaults.
	Weights *dayscoring.ScoreWeights

	// UseDefaultWeightsOnInvalid opts into falling back to the default
	// weights when the supplied ones are unusable. Without the opt-in an
	// invalid override fails the call.
	UseDefaultWeightsOnInvalid bool

	// TopN is how many dates TopDates returns when the caller does not
	// ask for a specific count; 0 means dayscoring.DefaultTopN.
	TopN int

	// MaxMembers and MaxDates bound the input snapshot; 0 means the
	// package default.
	MaxMembers int
	MaxDates   int
}

// ComputeDayScores scores every date declared in the group's availability
// snapshot and returns the scores in their deterministic ranked order.
//
// The computation is pure over its inputs: nothing is mutated, no state is
// shared between calls, and concurrent invocations for different groups
// need no locking as long as each call gets its own snapshot.
//
// Records from users not on the current roster are excluded so stale
// membership never inflates a score. Duplicate records for the same
// (user, date) resolve last-record-wins, matching upsert write semantics.
// Any record violating its type-consistency invariant fails the whole
// call; silently skipping it would produce misleading scores.
func ComputeDayScores(
	ctx context.Context,
	logger *zap.Logger,
	groupID string,
	members []model.GroupMember,
	availabilities []model.Availability,
	opts Options,
) ([]model.DayScore, error) {
	weights, err := resolveWeights(logger, opts)
	if err != nil {
		return nil, err
	}

	// Build the roster. Duplicate membership rows collapse to one member.
	roster := make(map[string]bool, len(members))
	for _, m := range members {
		if m.GroupID == groupID {
			roster[m.UserID] = true
		}
	}

	maxMembers := opts.MaxMembers
	if maxMembers <= 0 {
		maxMembers = DefaultMaxMembers
	}
	if len(roster) > maxMembers {
		return nil, fmt.Errorf("group %s has %d members, exceeding the limit of %d", groupID, len(roster), maxMembers)
	}

	// Group records by date, keeping only current members and letting the
	// last record per (user, date) win.
	byDate := make(map[string]map[string]model.Availability)
	stale := 0
	for _, a := range availabilities {
		if a.GroupID != groupID || !roster[a.UserID] {
			stale++
			continue
		}
		if byDate[a.Date] == nil {
			byDate[a.Date] = make(map[string]model.Availability)
		}
		byDate[a.Date][a.UserID] = a
	}

	logger.Debug("Scoring availability snapshot",
		zap.String("group_id", groupID),
		zap.Int("members", len(roster)),
		zap.Int("records", len(availabilities)),
		zap.Int("excluded_records", stale),
		zap.Int("dates", len(byDate)))

	maxDates := opts.MaxDates
	if maxDates <= 0 {
		maxDates = DefaultMaxDates
	}
	if len(byDate) > maxDates {
		return nil, fmt.Errorf("group %s declares %d distinct dates, exceeding the limit of %d", groupID, len(byDate), maxDates)
	}

	scores := make([]model.DayScore, 0, len(byDate))
	for date, records := range byDate {
		coverage := make(map[string]dayscoring.NormalizedCoverage, len(records))
		for userID, record := range records {
			normalized, err := dayscoring.Normalize(record)
			if err != nil {
				return nil, fmt.Errorf("scoring group %s: %w", groupID, err)
			}
			coverage[userID] = normalized
		}

		stacked, err := dayscoring.StackCoverage(coverage)
		if err != nil {
			return nil, fmt.Errorf("scoring group %s on %s: %w", groupID, date, err)
		}

		scores = append(scores, dayscoring.ScoreDay(date, len(roster), stacked, weights))
	}

	dayscoring.Rank(scores)
	return scores, nil
}

// TopDates returns the n best candidate dates for the group. n <= 0
// falls back to the configured opts.TopN, then to dayscoring.DefaultTopN.
func TopDates(
	ctx context.Context,
	logger *zap.Logger,
	groupID string,
	members []model.GroupMember,
	availabilities []model.Availability,
	n int,
	opts Options,
) ([]model.DayScore, error) {
	scores, err := ComputeDayScores(ctx, logger, groupID, members, availabilities, opts)
	if err != nil {
		return nil, err
	}

	if n <= 0 {
		n = opts.TopN
	}
	return dayscoring.TopN(scores, n), nil
}

// resolveWeights validates an overridden weighting policy, falling back to
// the defaults only when the caller opted in.
func resolveWeights(logger *zap.Logger, opts Options) (dayscoring.ScoreWeights, error) {
	if opts.Weights == nil {
		return dayscoring.DefaultScoreWeights(), nil
	}

	if err := opts.Weights.Validate(); err != nil {
		if opts.UseDefaultWeightsOnInvalid {
			logger.Warn("Ignoring invalid score weights, using defaults",
				zap.Float64("attendance", opts.Weights.Attendance),
				zap.Float64("overlap", opts.Weights.Overlap),
				zap.Error(err))
			return dayscoring.DefaultScoreWeights(), nil
		}
		return dayscoring.ScoreWeights{}, err
	}

	return *opts.Weights, nil
}
