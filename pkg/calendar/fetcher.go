// Package calendar retrieves per-location iCalendar feeds concurrently and
// reduces them to 7-day open-hours tables.
//
// The fan-out is bounded: tens to low hundreds of calendars resolve
// through a fixed-size worker pool instead of one goroutine burst, so the
// calendar host never sees the whole batch at once. Each worker sends its
// (calendar ID, table) pair over a channel and the caller folds the pairs
// into a map after all workers finish — no shared mutable table, and the
// merge step never starts before the fold completes.
package calendar

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/internal/transport"
	"github.com/campusops/wayfind/pkg/locations"
)

// calendarIDToken is the placeholder replaced by the calendar identifier
// in the configured feed URL template.
const calendarIDToken = "calendar-id"

// DefaultConcurrency bounds the fetch fan-out when no limit is configured.
const DefaultConcurrency = 20

// Fetcher retrieves calendar feeds and windows their events.
type Fetcher struct {
	client      *transport.Client
	urlTemplate string
	concurrency int
	logger      zerolog.Logger
}

// NewFetcher creates a calendar fetcher. urlTemplate must contain the
// literal token "calendar-id".
func NewFetcher(client *transport.Client, urlTemplate string, concurrency int, logger zerolog.Logger) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Fetcher{
		client:      client,
		urlTemplate: urlTemplate,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Fetch resolves every calendar identifier to a 7-day open-hours table
// starting at today (UTC). Identifiers are deduplicated. A failed fetch or
// unparseable feed never aborts the batch: that identifier maps to 7 empty
// day buckets and the failure is logged. Fetch returns only after every
// dispatched fetch has completed.
func (f *Fetcher) Fetch(ctx context.Context, calendarIDs []string, today time.Time) map[string]locations.OpenHours {
	unique := make([]string, 0, len(calendarIDs))
	seen := make(map[string]bool, len(calendarIDs))
	for _, id := range calendarIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	type result struct {
		id    string
		hours locations.OpenHours
	}

	results := make(chan result, len(unique))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, f.concurrency)

	for _, id := range unique {
		wg.Add(1)
		go func(calendarID string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results <- result{id: calendarID, hours: f.fetchOne(ctx, calendarID, today)}
		}(id)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	hours := make(map[string]locations.OpenHours, len(unique))
	for r := range results {
		hours[r.id] = r.hours
	}
	return hours
}

// fetchOne retrieves and windows a single calendar, failing open to an
// empty table.
func (f *Fetcher) fetchOne(ctx context.Context, calendarID string, today time.Time) locations.OpenHours {
	hours := locations.NewOpenHours(today)

	url := strings.Replace(f.urlTemplate, calendarIDToken, calendarID, 1)
	body, err := f.client.GetBytes(ctx, url, nil)
	if err != nil {
		f.logger.Warn().Err(err).Str("calendar_id", calendarID).Msg("calendar fetch failed")
		return hours
	}

	cal, err := ics.ParseCalendar(strings.NewReader(string(body)))
	if err != nil {
		f.logger.Warn().Err(err).Str("calendar_id", calendarID).Msg("calendar parse failed")
		return hours
	}

	for _, event := range cal.Events() {
		start, err := event.GetStartAt()
		if err != nil {
			continue
		}
		utcStart := start.UTC()

		day := utcStart.Format(locations.DateFormat)
		if _, ok := hours[day]; !ok {
			// Outside the 7-day window.
			continue
		}

		entry := locations.Event{
			Summary:      propertyValue(event, ics.ComponentPropertySummary),
			UID:          propertyValue(event, ics.ComponentPropertyUniqueId),
			Start:        locations.StringValue(utcStart.Format(locations.TimestampFormat)),
			Sequence:     propertyInt(event, ics.ComponentProperty("SEQUENCE")),
			RecurrenceID: propertyValue(event, ics.ComponentProperty("RECURRENCE-ID")),
			LastModified: propertyValue(event, ics.ComponentProperty("LAST-MODIFIED")),
		}
		if end, err := event.GetEndAt(); err == nil {
			entry.End = locations.StringValue(end.UTC().Format(locations.TimestampFormat))
		}

		// Feed order within a day bucket is preserved.
		hours[day] = append(hours[day], entry)
	}
	return hours
}

// propertyValue reads one event property, nil when absent or empty.
func propertyValue(event *ics.VEvent, name ics.ComponentProperty) *string {
	prop := event.GetProperty(name)
	if prop == nil || prop.Value == "" {
		return nil
	}
	value := prop.Value
	return &value
}

// propertyInt reads one integral event property, nil when absent or not a
// number.
func propertyInt(event *ics.VEvent, name ics.ComponentProperty) *int {
	prop := event.GetProperty(name)
	if prop == nil {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(prop.Value))
	if err != nil {
		return nil
	}
	return &n
}
