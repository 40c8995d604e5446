// Package groupfile loads a group's roster and availability declarations
// from a local YAML document, producing the validated records the scoring
// engine consumes.
package groupfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/quedamos/quedamos-engine/pkg/core/model"
)

// MemberEntry is one roster row in the group file
type MemberEntry struct {
	UserID string `yaml:"userId" validate:"required"`
	Name   string `yaml:"name,omitempty"`
}

// AvailabilityEntry is one availability declaration in the group file.
// Times use the wire format of the mobile client: date YYYY-MM-DD,
// startTime/endTime HH:mm.
type AvailabilityEntry struct {
	ID        string   `yaml:"id,omitempty"`
	UserID    string   `yaml:"userId" validate:"required"`
	Date      string   `yaml:"date" validate:"required,datetime=2006-01-02"`
	Type      string   `yaml:"type" validate:"required,oneof=day slots range"`
	Slots     []string `yaml:"slots,omitempty"`
	StartTime string   `yaml:"startTime,omitempty"`
	EndTime   string   `yaml:"endTime,omitempty"`
}

// GroupFile is the on-disk document shape
type GroupFile struct {
	GroupID        string              `yaml:"groupId" validate:"required"`
	Name           string              `yaml:"name" validate:"required"`
	Emoji          string              `yaml:"emoji,omitempty"`
	Members        []MemberEntry       `yaml:"members" validate:"min=1,dive"`
	Availabilities []AvailabilityEntry `yaml:"availabilities,omitempty" validate:"dive"`
}

// Document is the loaded, engine-ready form of a group file
type Document struct {
	Group          model.Group
	Members        []model.GroupMember
	Availabilities []model.Availability
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load reads, parses and validates a group file
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read group file: %w", err)
	}

	var gf GroupFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("failed to parse group file: %w", err)
	}

	if err := validate.Struct(&gf); err != nil {
		return nil, fmt.Errorf("group file validation failed: %w", err)
	}

	return gf.toDocument()
}

func (gf *GroupFile) toDocument() (*Document, error) {
	doc := &Document{
		Group: model.Group{
			ID:    gf.GroupID,
			Name:  gf.Name,
			Emoji: gf.Emoji,
		},
	}

	for _, m := range gf.Members {
		doc.Members = append(doc.Members, model.GroupMember{
			GroupID:     gf.GroupID,
			UserID:      m.UserID,
			DisplayName: m.Name,
		})
	}

	for i, entry := range gf.Availabilities {
		record, err := entry.toModel(gf.GroupID)
		if err != nil {
			return nil, fmt.Errorf("availabilities[%d]: %w", i, err)
		}
		doc.Availabilities = append(doc.Availabilities, record)
	}

	return doc, nil
}

func (e *AvailabilityEntry) toModel(groupID string) (model.Availability, error) {
	record := model.Availability{
		ID:      e.ID,
		UserID:  e.UserID,
		GroupID: groupID,
		Date:    e.Date,
		Type:    model.AvailabilityType(e.Type),
	}

	// Records authored outside the app arrive without IDs
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	for _, s := range e.Slots {
		record.Slots = append(record.Slots, model.TimeSlot(s))
	}

	if e.StartTime != "" || e.EndTime != "" {
		start, err := ParseClock(e.StartTime)
		if err != nil {
			return model.Availability{}, fmt.Errorf("startTime: %w", err)
		}
		end, err := ParseClock(e.EndTime)
		if err != nil {
			return model.Availability{}, fmt.Errorf("endTime: %w", err)
		}
		record.StartTime = start
		record.EndTime = end
	}

	return record, nil
}

// ParseClock converts an HH:mm time of day to minutes since midnight.
// "24:00" is accepted as the exclusive end of the day (1440 minutes).
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, fmt.Errorf("time %q is not in HH:mm format", s)
	}

	hours, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("time %q is not in HH:mm format", s)
	}
	minutes, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("time %q is not in HH:mm format", s)
	}

	if hours < 0 || hours > 24 || minutes < 0 || minutes > 59 || (hours == 24 && minutes != 0) {
		return 0, fmt.Errorf("time %q is out of range", s)
	}

	return hours*60 + minutes, nil
}
