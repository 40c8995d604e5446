package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quedamos/quedamos-engine/pkg/core/dayscoring"
	"github.com/quedamos/quedamos-engine/pkg/core/model"
)

func testMembers(groupID string, userIDs ...string) []model.GroupMember {
	members := make([]model.GroupMember, 0, len(userIDs))
	for _, id := range userIDs {
		members = append(members, model.GroupMember{GroupID: groupID, UserID: id})
	}
	return members
}

func TestComputeDayScores_EndToEnd(t *testing.T) {
	// Roster of 4; on one date 3 members declare the morning slot and the
	// fourth declares nothing.
	members := testMembers("g1", "alvaro", "misa", "sara", "juan")
	availabilities := []model.Availability{
		{ID: "a1", UserID: "alvaro", GroupID: "g1", Date: "2026-09-04", Type: model.TypeSlots, Slots: []model.TimeSlot{model.SlotMorning}},
		{ID: "a2", UserID: "misa", GroupID: "g1", Date: "2026-09-04", Type: model.TypeSlots, Slots: []model.TimeSlot{model.SlotMorning}},
		{ID: "a3", UserID: "sara", GroupID: "g1", Date: "2026-09-04", Type: model.TypeSlots, Slots: []model.TimeSlot{model.SlotMorning}},
	}

	scores, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	assert.Equal(t, "2026-09-04", scores[0].Date)
	assert.Equal(t, 3, scores[0].AvailableCount)
	assert.Equal(t, 4, scores[0].TotalMembers)

	// attendanceRatio = 0.75, overlapQuality = 360/1440 = 0.25
	// score = 0.7*0.75 + 0.3*0.25 = 0.6
	assert.InDelta(t, 0.6, scores[0].Score, 1e-9)

	// Stable across repeated calls with identical input
	again, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{})
	require.NoError(t, err)
	assert.Equal(t, scores, again)
}

func TestComputeDayScores_RanksAllDeclaredDates(t *testing.T) {
	members := testMembers("g1", "u1", "u2")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "u2", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-06", Type: model.TypeSlots, Slots: []model.TimeSlot{model.SlotEvening}},
	}

	scores, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{})
	require.NoError(t, err)
	require.Len(t, scores, 2)

	// The date where both are free all day wins
	assert.Equal(t, "2026-09-05", scores[0].Date)
	assert.Equal(t, 1.0, scores[0].Score)
	assert.Equal(t, "2026-09-06", scores[1].Date)
}

func TestComputeDayScores_StaleMembershipExcluded(t *testing.T) {
	// "ghost" has a record but is no longer on the roster
	members := testMembers("g1", "u1", "u2")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "ghost", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
	}

	scores, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	assert.Equal(t, 1, scores[0].AvailableCount)
	assert.Equal(t, 2, scores[0].TotalMembers)
}

func TestComputeDayScores_OtherGroupRecordsIgnored(t *testing.T) {
	members := testMembers("g1", "u1")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g2", Date: "2026-09-05", Type: model.TypeDay},
	}

	scores, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{})
	require.NoError(t, err)
	assert.Empty(t, scores, "dates are never synthesized from other groups' records")
}

func TestComputeDayScores_DuplicateRecordLastWins(t *testing.T) {
	members := testMembers("g1", "u1", "u2")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "u2", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		// u1 later replaces the full day with a short evening range
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeRange, StartTime: 1200, EndTime: 1320},
	}

	scores, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	// overlapQuality = 120/1440, attendance still 2/2
	expected := 0.7 + 0.3*(120.0/1440.0)
	assert.InDelta(t, expected, scores[0].Score, 1e-9)
}

func TestComputeDayScores_InvalidRecordFailsWholeCall(t *testing.T) {
	members := testMembers("g1", "u1", "u2")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "u2", GroupID: "g1", Date: "2026-09-06", Type: model.TypeSlots}, // empty slot set
	}

	_, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{})
	require.Error(t, err)

	var validationErr *dayscoring.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "u2", validationErr.UserID)
	assert.Equal(t, "2026-09-06", validationErr.Date)
}

func TestComputeDayScores_InvalidWeightsSurface(t *testing.T) {
	members := testMembers("g1", "u1")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
	}

	_, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{
		Weights: &dayscoring.ScoreWeights{Attendance: -1, Overlap: 0.5},
	})
	require.Error(t, err)

	var cfgErr *dayscoring.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestComputeDayScores_InvalidWeightsFallBackWhenOptedIn(t *testing.T) {
	members := testMembers("g1", "u1")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
	}

	scores, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{
		Weights:                    &dayscoring.ScoreWeights{Attendance: -1, Overlap: 0.5},
		UseDefaultWeightsOnInvalid: true,
	})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 1.0, scores[0].Score)
}

func TestComputeDayScores_InputCeilings(t *testing.T) {
	members := testMembers("g1", "u1", "u2", "u3")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-06", Type: model.TypeDay},
	}

	_, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{MaxMembers: 2})
	assert.Error(t, err)

	_, err = ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{MaxDates: 1})
	assert.Error(t, err)
}

func TestComputeDayScores_EmptyRosterIsBoundaryNotError(t *testing.T) {
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
	}

	scores, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", nil, availabilities, Options{})
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestComputeDayScores_InputsNotMutated(t *testing.T) {
	members := testMembers("g1", "u1", "u2")
	availabilities := []model.Availability{
		{UserID: "u2", GroupID: "g1", Date: "2026-09-06", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
	}

	_, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", members, availabilities, Options{})
	require.NoError(t, err)

	assert.Equal(t, "2026-09-06", availabilities[0].Date)
	assert.Equal(t, "2026-09-05", availabilities[1].Date)
}

func TestComputeDayScores_ConcurrentGroupsMatchSequential(t *testing.T) {
	// Two groups sharing the same availability slice
	membersG1 := testMembers("g1", "u1", "u2")
	membersG2 := testMembers("g2", "u1", "u3")
	shared := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "u2", GroupID: "g1", Date: "2026-09-05", Type: model.TypeSlots, Slots: []model.TimeSlot{model.SlotAfternoon}},
		{UserID: "u1", GroupID: "g2", Date: "2026-09-05", Type: model.TypeRange, StartTime: 600, EndTime: 900},
		{UserID: "u3", GroupID: "g2", Date: "2026-09-06", Type: model.TypeDay},
	}

	sequential1, err := ComputeDayScores(context.Background(), zap.NewNop(), "g1", membersG1, shared, Options{})
	require.NoError(t, err)
	sequential2, err := ComputeDayScores(context.Background(), zap.NewNop(), "g2", membersG2, shared, Options{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var concurrent1, concurrent2 []model.DayScore
	var err1, err2 error

	wg.Add(2)
	go func() {
		defer wg.Done()
		concurrent1, err1 = ComputeDayScores(context.Background(), zap.NewNop(), "g1", membersG1, shared, Options{})
	}()
	go func() {
		defer wg.Done()
		concurrent2, err2 = ComputeDayScores(context.Background(), zap.NewNop(), "g2", membersG2, shared, Options{})
	}()
	wg.Wait()

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, sequential1, concurrent1)
	assert.Equal(t, sequential2, concurrent2)
}

func TestTopDates_DefaultCount(t *testing.T) {
	members := testMembers("g1", "u1")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-06", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-07", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-08", Type: model.TypeDay},
	}

	top, err := TopDates(context.Background(), zap.NewNop(), "g1", members, availabilities, 0, Options{})
	require.NoError(t, err)

	assert.Len(t, top, dayscoring.DefaultTopN)
	// Fully tied scores fall back to earliest-date order
	assert.Equal(t, "2026-09-05", top[0].Date)
}

func TestTopDates_ConfiguredCountUsedWhenUnspecified(t *testing.T) {
	members := testMembers("g1", "u1")
	availabilities := []model.Availability{
		{UserID: "u1", GroupID: "g1", Date: "2026-09-05", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-06", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-07", Type: model.TypeDay},
		{UserID: "u1", GroupID: "g1", Date: "2026-09-08", Type: model.TypeDay},
	}

	top, err := TopDates(context.Background(), zap.NewNop(), "g1", members, availabilities, 0, Options{TopN: 2})
	require.NoError(t, err)
	assert.Len(t, top, 2)

	// An explicit n still beats the configured default
	top, err = TopDates(context.Background(), zap.NewNop(), "g1", members, availabilities, 4, Options{TopN: 2})
	require.NoError(t, err)
	assert.Len(t, top, 4)
}
