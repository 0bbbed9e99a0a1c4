package sources

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/internal/transport"
	"github.com/campusops/wayfind/pkg/locations"
)

// kioskAccept selects the kiosk hours representation of the library API.
const kioskAccept = "application/vnd.kiosks.v1"

// libraryDay is one day's hours in the library API response.
type libraryDay struct {
	SortableDate string `json:"sortable_date"`
	Open         string `json:"open"`
	Close        string `json:"close"`
}

// LibrarySource reads the main library's open hours. The library publishes
// a fixed schedule through its own API instead of an iCalendar feed.
type LibrarySource struct {
	client *transport.Client
	url    string
	logger zerolog.Logger
}

// NewLibrarySource creates a library hours wrapper.
func NewLibrarySource(client *transport.Client, url string, logger zerolog.Logger) *LibrarySource {
	return &LibrarySource{client: client, url: url, logger: logger}
}

// Fetch posts the run's 7-day window and returns it as an open-hours
// table. Every window day is present; days the library answered for carry
// one open/close event.
func (s *LibrarySource) Fetch(ctx context.Context, today time.Time) (locations.OpenHours, error) {
	body := map[string][]string{"dates": locations.Window(today)}

	var days map[string]libraryDay
	err := s.client.PostJSON(ctx, s.url, body, map[string]string{"Accept": kioskAccept}, &days)
	if err != nil {
		return nil, err
	}

	hours := locations.NewOpenHours(today)
	for _, day := range days {
		if _, ok := hours[day.SortableDate]; !ok {
			continue
		}

		start, okStart := parseLibraryHour(day.SortableDate, day.Open)
		end, okEnd := parseLibraryHour(day.SortableDate, day.Close)
		if !okStart || !okEnd {
			continue
		}

		hours[day.SortableDate] = []locations.Event{{
			Start: locations.StringValue(start.Format(locations.TimestampFormat)),
			End:   locations.StringValue(end.Format(locations.TimestampFormat)),
		}}
	}

	s.logger.Debug().Msg("fetched library hours")
	return hours, nil
}

// parseLibraryHour combines a date with a kiosk clock string such as
// "7:45am". An empty clock string yields the bare date (a day with no
// posted hours).
func parseLibraryHour(date, clock string) (time.Time, bool) {
	clock = strings.ToUpper(strings.TrimSpace(clock))
	if clock == "" {
		t, err := time.ParseInLocation(locations.DateFormat, date, time.UTC)
		return t, err == nil
	}
	t, err := time.ParseInLocation("2006-01-02 3:04PM", date+" "+clock, time.UTC)
	return t, err == nil
}
