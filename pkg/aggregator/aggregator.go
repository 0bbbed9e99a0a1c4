// Package aggregator orchestrates one aggregation run: fetch every source,
// resolve calendars behind the join barrier, merge, and render resources.
package aggregator

import (
	"context"
	"os"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/internal/config"
	"github.com/campusops/wayfind/internal/transport"
	"github.com/campusops/wayfind/pkg/calendar"
	"github.com/campusops/wayfind/pkg/locations"
	"github.com/campusops/wayfind/pkg/merge"
	"github.com/campusops/wayfind/pkg/sources"
)

// Aggregator runs the aggregation pipeline.
type Aggregator struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// Result is one completed run.
type Result struct {
	RunID     string
	StartedAt utc.Time

	Locations []locations.Resource
	Services  []locations.Resource

	// SourceCounts tallies emitted locations by their provenance tag.
	SourceCounts map[string]int
}

// New creates an aggregator.
func New(cfg *config.Config, logger zerolog.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, logger: logger}
}

// Run executes one aggregation. The facilities database is the only fatal
// dependency: every other source degrades to an empty contribution with a
// warning. Each source is read once and treated as a snapshot.
func (a *Aggregator) Run(ctx context.Context) (*Result, error) {
	startedAt := utc.Now()
	runID := uuid.NewString()
	logger := a.logger.With().Str("run_id", runID).Logger()

	// The open-hours window is computed once per run: every table in the
	// run agrees on its 7 date keys.
	today := time.Date(
		startedAt.Year(), startedAt.Month(), startedAt.Day(),
		0, 0, 0, 0, time.UTC,
	)

	client := transport.New(0)

	query, err := os.ReadFile(a.cfg.Contrib.FacilQuery)
	if err != nil {
		return nil, err
	}
	facilSource, err := sources.NewFacilSource(a.cfg.Database.DSN, string(query), logger)
	if err != nil {
		return nil, err
	}
	defer facilSource.Close()

	// Fatal: no location can exist without its facility row.
	facilities, err := facilSource.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("count", len(facilities)).Msg("fetched facility locations")

	arcgis := sources.NewArcGISSource(client, a.cfg, logger)

	restrooms, err := arcgis.GenderInclusiveRestrooms(ctx)
	warnDegraded(logger, "gender-inclusive-restrooms", err)

	geometries, err := arcgis.BuildingGeometries(ctx)
	warnDegraded(logger, "building-geometries", err)

	parkings, err := arcgis.ParkingLots(ctx)
	warnDegraded(logger, "parking-lots", err)

	fields, err := arcgis.Fields(ctx)
	warnDegraded(logger, "fields", err)

	places, err := arcgis.Places(ctx)
	warnDegraded(logger, "places", err)

	extensions, err := sources.NewExtensionSource(client, a.cfg.Extension.URL, logger).Fetch(ctx)
	warnDegraded(logger, "extension", err)

	campusMap, err := sources.NewCampusMapSource(client, a.cfg.CampusMap.URL, logger).Fetch(ctx)
	warnDegraded(logger, "campus-map", err)

	extras, extraCalendars, err := sources.NewExtraSource(a.cfg.Contrib.ExtraData).Fetch()
	warnDegraded(logger, "extra-data", err)

	dining, err := sources.NewDiningSource(
		client, a.cfg.UHDS.URL, a.cfg.UHDS.Calendar, a.cfg.UHDS.WeeklyMenu, logger,
	).Fetch(ctx)
	warnDegraded(logger, "dining", err)

	// Resolve every calendar before merging. Fetch returns only after the
	// whole fan-out has joined.
	calendarIDs := make([]string, 0, len(dining)+len(extraCalendars))
	for _, record := range dining {
		calendarIDs = append(calendarIDs, record.CalendarID)
	}
	for _, record := range extraCalendars {
		calendarIDs = append(calendarIDs, record.CalendarID)
	}
	openHours := calendar.NewFetcher(
		client, a.cfg.ICal.URL, a.cfg.Calendars.Concurrency, logger,
	).Fetch(ctx, calendarIDs, today)

	libraryHours, err := sources.NewLibrarySource(client, a.cfg.Library.URL, logger).Fetch(ctx, today)
	warnDegraded(logger, "library-hours", err)

	emitted, services := merge.NewEngine(logger).Merge(merge.Inputs{
		Facilities:        facilities,
		Restrooms:         restrooms,
		Geometries:        geometries,
		Extras:            extras,
		Extensions:        extensions,
		Parkings:          parkings,
		Fields:            fields,
		Places:            places,
		Dining:            dining,
		ExtraCalendars:    extraCalendars,
		CampusMap:         campusMap,
		OpenHours:         openHours,
		LibraryHours:      libraryHours,
		LibraryBuildingID: a.cfg.Library.BuildingID,
	})

	result := &Result{
		RunID:        runID,
		StartedAt:    startedAt,
		Locations:    make([]locations.Resource, 0, len(emitted)),
		Services:     make([]locations.Resource, 0, len(services)),
		SourceCounts: make(map[string]int),
	}
	for _, loc := range emitted {
		result.SourceCounts[loc.Source]++
		result.Locations = append(result.Locations, loc.Resource(a.cfg.LocationsAPI.URL))
	}
	for _, service := range services {
		result.Services = append(result.Services, service.Resource(a.cfg.LocationsAPI.URL))
	}

	logger.Info().
		Int("locations", len(result.Locations)).
		Int("services", len(result.Services)).
		Msg("aggregation complete")
	return result, nil
}

// warnDegraded logs a fail-open source: its contribution is already empty.
func warnDegraded(logger zerolog.Logger, source string, err error) {
	if err == nil {
		return
	}
	logger.Warn().Err(err).Str("source", source).Msg("source degraded to empty contribution")
}
