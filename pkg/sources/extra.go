package sources

import (
	"fmt"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/campusops/wayfind/pkg/locations"
)

// extraData is the shape of the static supplemental dataset.
type extraData struct {
	Locations []extraLocation `yaml:"locations"`
	Calendars []extraCalendar `yaml:"calendars"`
}

type extraLocation struct {
	Name      string   `yaml:"name"`
	BldgID    string   `yaml:"bldgID"`
	Campus    string   `yaml:"campus"`
	Type      string   `yaml:"type"`
	Tags      []string `yaml:"tags"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
}

type extraCalendar struct {
	ID         string   `yaml:"id"`
	CalendarID string   `yaml:"calendarId"`
	Merge      bool     `yaml:"merge"`
	Parent     string   `yaml:"parent"`
	Tags       []string `yaml:"tags"`
}

// ExtraSource loads the static supplemental dataset shipped alongside the
// binary: hand-curated locations plus per-location calendar attachments.
type ExtraSource struct {
	path string
}

// NewExtraSource creates a supplemental dataset loader.
func NewExtraSource(path string) *ExtraSource {
	return &ExtraSource{path: path}
}

// Fetch loads the dataset and splits it into standalone extra locations
// and service-calendar entries. Calendar entries without a calendar ID
// have no primary key and are dropped. Entries tagged "services" become
// services; merge-flagged entries fold into their building during merge.
func (s *ExtraSource) Fetch() ([]ExtraRecord, []ServiceRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read extra data %s: %w", s.path, err)
	}

	var data extraData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, nil, fmt.Errorf("failed to parse extra data %s: %w", s.path, err)
	}

	extras := make([]ExtraRecord, 0, len(data.Locations))
	for _, loc := range data.Locations {
		extras = append(extras, ExtraRecord{
			Name:      loc.Name,
			BldgID:    loc.BldgID,
			Campus:    loc.Campus,
			Type:      loc.Type,
			Tags:      loc.Tags,
			Longitude: loc.Longitude,
			Latitude:  loc.Latitude,
		})
	}

	calendars := make([]ServiceRecord, 0, len(data.Calendars))
	for _, cal := range data.Calendars {
		if cal.CalendarID == "" {
			continue
		}
		locType := locations.TypeOther
		if slices.Contains(cal.Tags, "services") {
			locType = locations.TypeServices
		}
		calendars = append(calendars, ServiceRecord{
			CalendarID:   cal.CalendarID,
			ConceptTitle: cal.ID,
			Parent:       cal.Parent,
			Tags:         cal.Tags,
			Merge:        cal.Merge,
			Type:         locType,
		})
	}

	return extras, calendars, nil
}
