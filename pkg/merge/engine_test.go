package merge

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/wayfind/pkg/identity"
	"github.com/campusops/wayfind/pkg/locations"
	"github.com/campusops/wayfind/pkg/sources"
)

var testToday = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(zerolog.Nop())
}

func TestMergeLibraryScenario(t *testing.T) {
	libraryHours := locations.NewOpenHours(testToday)
	libraryHours["2026-09-01"] = []locations.Event{{
		Start: locations.StringValue("2026-09-01T07:00:00Z"),
		End:   locations.StringValue("2026-09-02T02:00:00Z"),
	}}

	libraryID := identity.Resolve("building", "0036")

	emitted, services := testEngine().Merge(Inputs{
		Facilities: map[string]sources.FacilRecord{
			"0036": {BldgID: "0036", Name: "Valley Library", Campus: "osucampus", Zip: "97331"},
		},
		CampusMap: map[string]sources.CampusMapRecord{
			libraryID: {ID: libraryID, Address: "123 Library Way"},
		},
		LibraryHours:      libraryHours,
		LibraryBuildingID: "0036",
	})
	require.Len(t, emitted, 1)
	assert.Empty(t, services)

	library := emitted[0]
	assert.Equal(t, libraryID, library.ID())
	assert.Equal(t, "Corvallis", *library.Attributes.Campus)
	assert.Equal(t, "123 Library Way", *library.Attributes.Address)
	assert.Equal(t, "97331", *library.Attributes.Zip)
	assert.Equal(t, 0, *library.Attributes.GIRCount)
	assert.Nil(t, library.Attributes.GIRLimit)
	assert.Equal(t, libraryHours, library.Attributes.OpenHours)
}

func TestMergeCampusDisplayNames(t *testing.T) {
	tests := []struct {
		raw  string
		want *string
	}{
		{"osucampus", locations.StringValue("Corvallis")},
		{"OSUCampus", locations.StringValue("Corvallis")},
		{"cascadescampus", locations.StringValue("Cascades")},
		{"hmsc", locations.StringValue("HMSC")},
		{"portland", locations.StringValue("Other")},
		{"", nil},
	}
	for _, tt := range tests {
		got := campusDisplay(tt.raw)
		if tt.want == nil {
			assert.Nil(t, got, tt.raw)
		} else {
			require.NotNil(t, got, tt.raw)
			assert.Equal(t, *tt.want, *got, tt.raw)
		}
	}
}

func TestMergeRestroomAndGeometryJoin(t *testing.T) {
	lon, lat := -123.276, 44.565
	emitted, _ := testEngine().Merge(Inputs{
		Facilities: map[string]sources.FacilRecord{
			"0021": {BldgID: "0021", Name: "Kidder Hall", Campus: "osucampus", Address1: "2000 SW Campus Way", Address2: "Suite 100"},
		},
		Restrooms: map[string]sources.RestroomRecord{
			"0021": {BldgID: "0021", Abbreviation: "KIDD", Count: 3, Limit: "  ", Locations: "100, 200"},
		},
		Geometries: map[string]sources.GeometryRecord{
			"0021": {BldgID: "0021", Longitude: &lon, Latitude: &lat, CoordinatesType: "Polygon", Coordinates: []any{}},
		},
	})
	require.Len(t, emitted, 1)

	kidder := emitted[0]
	assert.Equal(t, "2000 SW Campus Way\nSuite 100", *kidder.Attributes.Address)
	assert.Equal(t, 3, *kidder.Attributes.GIRCount)
	assert.False(t, *kidder.Attributes.GIRLimit)
	assert.Equal(t, "100, 200", *kidder.Attributes.GIRLocations)
	require.NotNil(t, kidder.Attributes.GeoLocation)
	assert.Equal(t, lon, kidder.Attributes.GeoLocation.Longitude)
	assert.Equal(t, "Polygon", kidder.Attributes.Geometry.Type)
	assert.Equal(t, "KIDD", *kidder.Attributes.ArcGISAbbreviation)
}

func TestMergeFoldsFlaggedEntries(t *testing.T) {
	foldHours := locations.NewOpenHours(testToday)
	foldHours["2026-09-02"] = []locations.Event{{Summary: locations.StringValue("Open")}}

	emitted, services := testEngine().Merge(Inputs{
		Facilities: map[string]sources.FacilRecord{
			"0063": {BldgID: "0063", Name: "Dixon Recreation Center", Campus: "osucampus"},
		},
		ExtraCalendars: []sources.ServiceRecord{
			{
				CalendarID:   "dixon-cal",
				ConceptTitle: "0063",
				Tags:         []string{"recreation", "recreation"},
				Merge:        true,
				Type:         locations.TypeOther,
			},
			// No building 9999 exists: this fold is silently dropped.
			{CalendarID: "ghost-cal", ConceptTitle: "9999", Merge: true, Type: locations.TypeOther},
		},
		OpenHours: map[string]locations.OpenHours{
			"dixon-cal": foldHours,
			"ghost-cal": locations.NewOpenHours(testToday),
		},
	})
	assert.Empty(t, services)

	// Merge-flagged entries are never emitted standalone.
	require.Len(t, emitted, 1)

	dixon := emitted[0]
	assert.Equal(t, []string{"recreation", "recreation"}, dixon.Attributes.Tags)
	assert.Len(t, dixon.Attributes.OpenHours["2026-09-02"], 1)
}

func TestMergeAttachesServiceRelationships(t *testing.T) {
	emitted, services := testEngine().Merge(Inputs{
		Facilities: map[string]sources.FacilRecord{
			"0062": {BldgID: "0062", Name: "Memorial Union", Campus: "osucampus"},
		},
		ExtraCalendars: []sources.ServiceRecord{
			{
				CalendarID:   "info-desk-cal",
				ConceptTitle: "Information Desk",
				Parent:       "0062",
				Tags:         []string{"services"},
				Type:         locations.TypeServices,
			},
		},
		OpenHours: map[string]locations.OpenHours{
			"info-desk-cal": locations.NewOpenHours(testToday),
		},
	})
	require.Len(t, emitted, 1)
	require.Len(t, services, 1)

	desk := services[0]
	assert.Equal(t, locations.TypeServices, desk.Type)

	union := emitted[0]
	refs := union.Relationships["services"].Data
	require.Len(t, refs, 1)
	assert.Equal(t, desk.ID(), refs[0].ID)
	assert.Equal(t, "services", refs[0].Type)
}

func TestMergeEnrichmentWinsForItsFieldsOnly(t *testing.T) {
	parkingID := identity.Resolve("parking", "8000AB")
	emitted, _ := testEngine().Merge(Inputs{
		Parkings: []sources.ParkingRecord{
			{PropID: "8000", ZoneGroup: "AB", Description: "North Lot"},
		},
		CampusMap: map[string]sources.CampusMapRecord{
			parkingID: {
				ID:          parkingID,
				Address:     "Campus Way & 30th",
				Description: "Visitor parking",
				MapURL:      "https://map.example.edu/8000AB",
				Images:      []string{"lot.jpg"},
			},
		},
	})
	require.Len(t, emitted, 1)

	lot := emitted[0]
	assert.Equal(t, "Campus Way & 30th", *lot.Attributes.Address)
	assert.Equal(t, "Visitor parking", *lot.Attributes.Description)
	assert.Equal(t, "https://map.example.edu/8000AB", *lot.Attributes.Website)
	assert.Equal(t, []string{"lot.jpg"}, lot.Attributes.Images)
	assert.Equal(t, []string{}, lot.Attributes.Thumbnails)
	// Fields outside the enrichment set are untouched.
	assert.Equal(t, "North Lot", *lot.Attributes.Name)
	assert.Equal(t, "AB", *lot.Attributes.ParkingZoneGroup)
}

func TestMergeDiningLocation(t *testing.T) {
	hours := locations.NewOpenHours(testToday)
	lon, lat := -123.279, 44.561

	emitted, services := testEngine().Merge(Inputs{
		Dining: []sources.ServiceRecord{
			{
				CalendarID:   "java-ii-cal",
				ConceptTitle: "Java II",
				Zone:         "Zone 2",
				Longitude:    &lon,
				Latitude:     &lat,
				WeeklyMenu:   "https://food.example.edu/menu?loc=42",
				Type:         locations.TypeDining,
			},
		},
		OpenHours: map[string]locations.OpenHours{"java-ii-cal": hours},
	})
	assert.Empty(t, services)
	require.Len(t, emitted, 1)

	java := emitted[0]
	assert.Equal(t, locations.TypeDining, java.Type)
	assert.Equal(t, identity.Resolve("dining", "java-ii-cal"), java.ID())
	assert.Equal(t, "Zone: Zone 2", *java.Attributes.Summary)
	assert.Equal(t, "Corvallis", *java.Attributes.Campus)
	assert.Equal(t, "https://food.example.edu/menu?loc=42", *java.Attributes.WeeklyMenu)
	assert.Equal(t, hours, java.Attributes.OpenHours)
}
