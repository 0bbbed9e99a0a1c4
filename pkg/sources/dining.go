package sources

import (
	"context"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/internal/transport"
	"github.com/campusops/wayfind/pkg/locations"
)

// rawDiner is the wire shape of one dining-services calendar entry.
type rawDiner struct {
	ConceptTitle string `json:"concept_title"`
	Zone         string `json:"zone"`
	CalendarID   string `json:"calendar_id"`
	ConceptCoord string `json:"concept_coord"`
	LocID        string `json:"loc_id"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

// DiningSource reads the dining-services feed.
type DiningSource struct {
	client      *transport.Client
	calendarURL string
	weekMenuURL string
	logger      zerolog.Logger
}

// NewDiningSource creates a dining feed wrapper. baseURL is the dining
// service root; calendarPath and weeklyMenuPath are appended to it.
func NewDiningSource(client *transport.Client, baseURL, calendarPath, weeklyMenuPath string, logger zerolog.Logger) *DiningSource {
	return &DiningSource{
		client:      client,
		calendarURL: baseURL + "/" + calendarPath,
		weekMenuURL: baseURL + "/" + weeklyMenuPath,
		logger:      logger,
	}
}

// Fetch returns one dining record per distinct calendar ID. Entries
// without a calendar ID have no primary key and are dropped; duplicate
// calendar IDs keep the first entry seen.
func (s *DiningSource) Fetch(ctx context.Context) ([]ServiceRecord, error) {
	var diners []rawDiner
	if err := s.client.GetJSON(ctx, s.calendarURL, nil, &diners); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(diners))
	var records []ServiceRecord
	for _, diner := range diners {
		if diner.CalendarID == "" || seen[diner.CalendarID] {
			continue
		}
		seen[diner.CalendarID] = true

		lon, lat := parseConceptCoord(diner.ConceptCoord)

		weeklyMenu := ""
		if diner.LocID != "" {
			weeklyMenu = s.weekMenuURL + "?loc=" + diner.LocID
		}

		records = append(records, ServiceRecord{
			CalendarID:   diner.CalendarID,
			ConceptTitle: diner.ConceptTitle,
			Zone:         diner.Zone,
			Longitude:    lon,
			Latitude:     lat,
			WeeklyMenu:   weeklyMenu,
			Type:         locations.TypeDining,
		})
	}

	s.logger.Debug().Int("records", len(records)).Msg("fetched dining locations")
	return records, nil
}

// parseConceptCoord splits the feed's "latitude, longitude" string.
func parseConceptCoord(coord string) (lon, lat *float64) {
	parts := strings.SplitN(coord, ",", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	latV, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lonV, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &lonV, &latV
}
