package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "configuration.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
locationsApi:
  url: https://api.example.edu/v1
database:
  dsn: postgres://wayfind@localhost/facil
arcgis:
  url: https://gis.example.edu/arcgis/rest/services
  parkingGeometries:
    endpoint: /Parking/MapServer/0/query
    params:
      f: geojson
ical:
  url: https://calendars.example.edu/feeds/calendar-id.ics
search:
  addresses:
    - http://localhost:9200
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.edu/v1", cfg.LocationsAPI.URL)
	assert.Equal(t, "postgres://wayfind@localhost/facil", cfg.Database.DSN)
	assert.Equal(t, "/Parking/MapServer/0/query", cfg.ArcGIS.ParkingGeometries.Endpoint)
	assert.Equal(t, "geojson", cfg.ArcGIS.ParkingGeometries.Params["f"])
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Search.Addresses)

	// Defaults.
	assert.Equal(t, "0036", cfg.Library.BuildingID)
	assert.Equal(t, 20, cfg.Calendars.Concurrency)
	assert.Equal(t, "contrib/extra-data.yaml", cfg.Contrib.ExtraData)
	assert.Equal(t, "build", cfg.Output.Dir)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://file@localhost/facil
`)
	t.Setenv("DATABASE_DSN", "postgres://env@localhost/facil")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env@localhost/facil", cfg.Database.DSN)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
