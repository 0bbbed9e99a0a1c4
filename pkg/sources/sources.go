// Package sources fetches and normalizes each upstream feed into typed,
// source-tagged records. The variant set is closed: every record type below
// corresponds to exactly one upstream source, and the merge engine selects
// behavior by record type rather than through dynamic dispatch.
//
// Failure policy: every source here fails open — an unreachable feed or a
// payload of the wrong shape degrades that source's contribution to empty
// and is logged at warning level by the caller. The one exception is the
// facilities database, which is fatal, because no location can exist
// without its facility row.
package sources

import (
	"strconv"
	"strings"

	"github.com/campusops/wayfind/pkg/locations"
)

// FacilRecord is one authoritative building row from the facilities
// database.
type FacilRecord struct {
	BldgID       string
	Name         string
	Abbreviation string
	Campus       string
	Address1     string
	Address2     string
	City         string
	State        string
	Zip          string
}

// RestroomRecord is the gender-inclusive restroom summary for a building.
type RestroomRecord struct {
	BldgID       string
	Abbreviation string
	Count        int
	Limit        string
	Locations    string
}

// GeometryRecord is a building footprint with its centroid, already
// converted to decimal degrees.
type GeometryRecord struct {
	BldgID          string
	Abbreviation    string
	Longitude       *float64
	Latitude        *float64
	CoordinatesType string
	Coordinates     any
}

// ParkingRecord is one parking lot feature that passed the validity filter
// (both Prop_ID and ZoneGroup populated).
type ParkingRecord struct {
	PropID           string
	ZoneGroup        string
	Description      string
	ADASpaces        *int
	MotorcycleSpaces *int
	EVSpaces         *int
	Longitude        *float64
	Latitude         *float64
	CoordinatesType  string
	Coordinates      any
}

// FieldRecord is one exposed field feature (grass fields, quads, ...).
type FieldRecord struct {
	PropID          string
	Name            string
	Description     string
	Notes           string
	Label1          string
	Label2          string
	Steward         string
	Image           string
	ShapeArea       *float64
	ShapeLength     *float64
	ShapeAcres      *float64
	CoordinatesType string
	Coordinates     any
}

// PlaceRecord is one place feature (welcome center, challenge course, ...).
type PlaceRecord struct {
	PropID      string
	UID         string
	Name        string
	Address     string
	Description string
	Website     string
	Longitude   *float64
	Latitude    *float64
}

// ExtensionRecord is one extension-office entry from the XML feed.
type ExtensionRecord struct {
	GUID          string
	GroupName     string
	StreetAddress string
	City          string
	State         string
	Zip           string
	Fax           string
	Telephone     string
	County        string
	LocationURL   string
	GeoLocation   *locations.GeoPoint
}

// CampusMapRecord is one campus-map enrichment entry, keyed by the
// resource ID it enriches.
type CampusMapRecord struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Address         string   `json:"address"`
	Description     string   `json:"description"`
	DescriptionHTML string   `json:"descriptionHTML"`
	Images          []string `json:"images"`
	Thumbnail       []string `json:"thumbnail"`
	MapURL          string   `json:"mapUrl"`
	Synonyms        []string `json:"synonyms"`
}

// ServiceRecord is a dining or service-calendar entry: a location whose
// open hours come from an iCalendar feed.
type ServiceRecord struct {
	CalendarID   string
	ConceptTitle string
	Zone         string
	Parent       string
	Tags         []string
	Merge        bool
	Longitude    *float64
	Latitude     *float64
	WeeklyMenu   string
	Type         locations.Type
}

// ExtraRecord is one entry from the static supplemental dataset.
type ExtraRecord struct {
	Name      string
	BldgID    string
	Campus    string
	Type      string
	Tags      []string
	Longitude *float64
	Latitude  *float64
}

// isValidField reports whether a natural-key field is usable: present and
// not just whitespace.
func isValidField(s string) bool {
	return strings.TrimSpace(s) != ""
}

// getString reads a string value out of a decoded JSON object. Numbers are
// rendered without an exponent so IDs survive intact.
func getString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// getFloat reads a numeric value out of a decoded JSON object.
func getFloat(m map[string]any, key string) *float64 {
	switch v := m[key].(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}

// getInt reads an integral value out of a decoded JSON object.
func getInt(m map[string]any, key string) *int {
	f := getFloat(m, key)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}
