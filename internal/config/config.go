// Package config loads the wayfind configuration from a YAML file into one
// explicit struct that is constructed at process start and passed by
// reference into each component. No ambient global state.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Endpoint is one feature-service layer: a path relative to the service
// root plus its fixed query parameters.
type Endpoint struct {
	Endpoint string            `mapstructure:"endpoint"`
	Params   map[string]string `mapstructure:"params"`
}

// Config is the full wayfind configuration.
type Config struct {
	LocationsAPI struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"locationsApi"`

	Database struct {
		// DSN is a lib/pq connection string. Overridable with DATABASE_DSN.
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	ArcGIS struct {
		URL                string   `mapstructure:"url"`
		GenderInclusiveRR  Endpoint `mapstructure:"genderInclusiveRR"`
		BuildingGeometries Endpoint `mapstructure:"buildingGeometries"`
		ParkingGeometries  Endpoint `mapstructure:"parkingGeometries"`
		Fields             Endpoint `mapstructure:"fields"`
		Places             Endpoint `mapstructure:"places"`
	} `mapstructure:"arcgis"`

	CampusMap struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"campusMap"`

	Extension struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"extension"`

	UHDS struct {
		URL        string `mapstructure:"url"`
		Calendar   string `mapstructure:"calendar"`
		WeeklyMenu string `mapstructure:"weeklyMenu"`
	} `mapstructure:"uhds"`

	ICal struct {
		// URL is a template containing the literal token "calendar-id".
		URL string `mapstructure:"url"`
	} `mapstructure:"ical"`

	Library struct {
		URL string `mapstructure:"url"`
		// BuildingID is the distinguished main-library building code whose
		// open hours come from the library source instead of a calendar.
		BuildingID string `mapstructure:"buildingId"`
	} `mapstructure:"library"`

	Calendars struct {
		// Concurrency bounds the calendar fetch fan-out.
		Concurrency int `mapstructure:"concurrency"`
	} `mapstructure:"calendars"`

	Search struct {
		Addresses []string `mapstructure:"addresses"`
		Username  string   `mapstructure:"username"`
		Password  string   `mapstructure:"password"`
	} `mapstructure:"search"`

	Contrib struct {
		ExtraData  string `mapstructure:"extraData"`
		FacilQuery string `mapstructure:"facilQuery"`
	} `mapstructure:"contrib"`

	Output struct {
		Dir string `mapstructure:"dir"`
	} `mapstructure:"output"`
}

// Load reads the YAML config at path. Environment variables override file
// values using underscore-delimited keys (e.g. DATABASE_DSN,
// SEARCH_PASSWORD).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("library.buildingId", "0036")
	v.SetDefault("calendars.concurrency", 20)
	v.SetDefault("contrib.extraData", "contrib/extra-data.yaml")
	v.SetDefault("contrib.facilQuery", "contrib/get_facil_locations.sql")
	v.SetDefault("output.dir", "build")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}
