package sources

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusops/wayfind/internal/config"
	"github.com/campusops/wayfind/internal/transport"
)

func newArcGISFixture(t *testing.T, payload string) (*ArcGISSource, *bytes.Buffer, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, payload)
	}))

	cfg := &config.Config{}
	cfg.ArcGIS.URL = server.URL
	cfg.ArcGIS.GenderInclusiveRR = config.Endpoint{Endpoint: "/restrooms"}
	cfg.ArcGIS.BuildingGeometries = config.Endpoint{Endpoint: "/buildings"}
	cfg.ArcGIS.ParkingGeometries = config.Endpoint{Endpoint: "/parking"}
	cfg.ArcGIS.Fields = config.Endpoint{Endpoint: "/fields"}
	cfg.ArcGIS.Places = config.Endpoint{Endpoint: "/places"}

	var logBuf bytes.Buffer
	source := NewArcGISSource(transport.New(0), cfg, zerolog.New(&logBuf))
	return source, &logBuf, server.Close
}

func TestParkingLotsValidityFilter(t *testing.T) {
	source, logBuf, closeServer := newArcGISFixture(t, `{
		"features": [
			{
				"id": 1,
				"properties": {
					"OBJECTID": 1, "Prop_ID": "8000", "ZoneGroup": "AB",
					"AiM_Desc": "North Lot", "ADA_Spc": 4, "MCycle_Spc": 2, "EV_Spc": 1,
					"Cent_Lat": 44.56, "Cent_Lon": -123.28
				},
				"geometry": {"type": "Polygon", "coordinates": [[[-123.281, 44.559], [-123.280, 44.560]]]}
			},
			{"id": 2, "properties": {"OBJECTID": 42, "Prop_ID": "  ", "ZoneGroup": "CD"}},
			{"id": 3, "properties": {"OBJECTID": 43, "Prop_ID": "8001", "ZoneGroup": ""}}
		]
	}`)
	defer closeServer()

	records, err := source.ParkingLots(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	lot := records[0]
	assert.Equal(t, "8000", lot.PropID)
	assert.Equal(t, "AB", lot.ZoneGroup)
	assert.Equal(t, "North Lot", lot.Description)
	assert.Equal(t, 4, *lot.ADASpaces)
	assert.Equal(t, 2, *lot.MotorcycleSpaces)
	assert.Equal(t, 1, *lot.EVSpaces)
	assert.Equal(t, "Polygon", lot.CoordinatesType)

	// Both failing OBJECTIDs land in one aggregated warning.
	assert.Contains(t, logBuf.String(), "42")
	assert.Contains(t, logBuf.String(), "43")
	assert.Contains(t, logBuf.String(), "ignored parking lots")
}

func TestBuildingGeometriesConvertsStatePlaneCoordinates(t *testing.T) {
	source, _, closeServer := newArcGISFixture(t, `{
		"features": [
			{
				"id": "b1",
				"properties": {"BldID": "0036", "BldNamAbr": "VLib", "Cent_Lat": 44.56, "Cent_Lon": -123.28},
				"geometry": {"type": "Polygon", "coordinates": [[[7477868.728748856, 339823.0051170311]]]}
			}
		]
	}`)
	defer closeServer()

	records, err := source.BuildingGeometries(context.Background())
	require.NoError(t, err)
	require.Contains(t, records, "0036")

	record := records["0036"]
	assert.Equal(t, "VLib", record.Abbreviation)
	// Centroid already in decimal degrees passes through untouched.
	assert.InDelta(t, -123.28, *record.Longitude, 1e-9)
	assert.InDelta(t, 44.56, *record.Latitude, 1e-9)

	rings, ok := record.Coordinates.([]any)
	require.True(t, ok)
	require.Len(t, rings, 1)
	pairs := rings[0].([]any)
	require.Len(t, pairs, 1)
	pair := pairs[0].([]any)
	assert.InDelta(t, -123.2794, pair[0].(float64), 1e-6)
	assert.InDelta(t, 44.5646, pair[1].(float64), 1e-6)
}

func TestGenderInclusiveRestrooms(t *testing.T) {
	source, _, closeServer := newArcGISFixture(t, `{
		"features": [
			{"attributes": {"BldID": "0021", "BldNamAbr": "KIDD", "CntAll": 3, "Limits": "2nd floor", "LocaAll": "100, 200"}},
			{"attributes": {"BldNamAbr": "NOID"}}
		]
	}`)
	defer closeServer()

	records, err := source.GenderInclusiveRestrooms(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records["0021"]
	assert.Equal(t, 3, record.Count)
	assert.Equal(t, "2nd floor", record.Limit)
	assert.Equal(t, "100, 200", record.Locations)
}

func TestFieldsExposeFilterAndRingsGeometry(t *testing.T) {
	source, logBuf, closeServer := newArcGISFixture(t, `{
		"features": [
			{
				"id": 10,
				"attributes": {
					"OBJECTID": 10, "Prop_ID": "F100", "Expose": "Y",
					"Field_Nam": "Lower Quad", "Description": "Open lawn",
					"Shape__Area": 1200.5, "Shape__Length": 140.2, "Shape_Acres": 0.03
				},
				"geometry": {"rings": [[[-45024497.45733191, 18216917.444129914]]]}
			},
			{"id": 11, "attributes": {"OBJECTID": 11, "Prop_ID": "F101", "Expose": "N"}}
		]
	}`)
	defer closeServer()

	records, err := source.Fields(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	field := records[0]
	assert.Equal(t, "Lower Quad", field.Name)
	assert.Equal(t, 1200.5, *field.ShapeArea)
	assert.Equal(t, "rings", field.CoordinatesType)

	rings := field.Coordinates.([]any)
	pair := rings[0].([]any)[0].([]any)
	assert.InDelta(t, -123.28, pair[0].(float64), 1e-6)
	assert.InDelta(t, 44.56, pair[1].(float64), 1e-6)

	assert.Contains(t, logBuf.String(), "11")
}

func TestPlacesRequireBothIdentifiers(t *testing.T) {
	source, logBuf, closeServer := newArcGISFixture(t, `{
		"features": [
			{"attributes": {
				"OBJECTID": 20, "Prop_ID": "P200", "uID": "7",
				"Name": "Welcome Center", "Loca": "700 SW 26th St",
				"Desc_": "Campus visitor center", "URL_Home": "https://visit.example.edu",
				"Cent_Lat": 44.559, "Cent_Lon": -123.279
			}},
			{"attributes": {"OBJECTID": 21, "Prop_ID": "P201", "uID": " "}}
		]
	}`)
	defer closeServer()

	records, err := source.Places(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	place := records[0]
	assert.Equal(t, "P200", place.PropID)
	assert.Equal(t, "7", place.UID)
	assert.Equal(t, "Welcome Center", place.Name)
	assert.Equal(t, "700 SW 26th St", place.Address)
	assert.Equal(t, "https://visit.example.edu", place.Website)

	assert.Contains(t, logBuf.String(), "21")
}

func TestUnknownGeometryTypeYieldsNoCoordinates(t *testing.T) {
	source, logBuf, closeServer := newArcGISFixture(t, `{
		"features": [
			{
				"id": "b2",
				"properties": {"BldID": "0050"},
				"geometry": {"type": "Point", "coordinates": [-123.28, 44.56]}
			}
		]
	}`)
	defer closeServer()

	records, err := source.BuildingGeometries(context.Background())
	require.NoError(t, err)

	record := records["0050"]
	assert.Nil(t, record.Coordinates)
	assert.Contains(t, logBuf.String(), "unknown geometry type")
}
