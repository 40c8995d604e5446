package model

// AvailabilityType tags which representation an availability declaration uses
type AvailabilityType string

const (
	// TypeDay means the member is available for the entire date
	TypeDay AvailabilityType = "day"
	// TypeSlots means the member is available during a set of named day-parts
	TypeSlots AvailabilityType = "slots"
	// TypeRange means the member is available during one explicit time range
	TypeRange AvailabilityType = "range"
)

func (t AvailabilityType) IsValid() bool {
	return t == TypeDay || t == TypeSlots || t == TypeRange
}

// TimeSlot is a named, fixed portion of a day
type TimeSlot string

const (
	SlotMorning   TimeSlot = "Morning"
	SlotAfternoon TimeSlot = "Afternoon"
	SlotEvening   TimeSlot = "Evening"
)

func (s TimeSlot) IsValid() bool {
	return s == SlotMorning || s == SlotAfternoon || s == SlotEvening
}

// Availability is one member's declaration for one date.
// Exactly one representation is populated, consistent with Type:
// day uses no extra fields, slots uses Slots, range uses StartTime/EndTime.
// There is at most one declaration per (UserID, GroupID, Date); later
// writes replace earlier ones.
type Availability struct {
	ID      string
	UserID  string
	GroupID string
	Date    string // YYYY-MM-DD
	Type    AvailabilityType
	Slots   []TimeSlot

	// StartTime and EndTime are minutes since midnight, half-open [start, end).
	// Only meaningful when Type is TypeRange.
	StartTime int
	EndTime   int
}

// Group represents a group of users planning to meet
type Group struct {
	ID    string
	Name  string
	Emoji string
}

// GroupMember is the membership relation between a user and a group.
// The roster defines the denominator used when scoring a date.
type GroupMember struct {
	GroupID     string
	UserID      string
	DisplayName string
}

// DayScore is the computed agreement score for one candidate date.
// It is derived output with no lifecycle of its own: recomputed on
// demand, never mutated after construction.
type DayScore struct {
	Date           string
	Score          float64
	AvailableCount int
	TotalMembers   int
}
