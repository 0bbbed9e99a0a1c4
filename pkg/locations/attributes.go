package locations

// GeoPoint is a longitude/latitude pair in decimal degrees.
type GeoPoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Geometry is a GeoJSON-style geometry: a type plus nested coordinate
// arrays whose depth depends on the type.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// Attributes is the flattened, namespaced attribute set of a location.
// Downstream consumers rely on key presence: every key is always emitted,
// with null (not omission) standing in for values no source provided.
type Attributes struct {
	Name                        *string           `json:"name"`
	Tags                        []string          `json:"tags"`
	OpenHours                   OpenHours         `json:"openHours"`
	Type                        string            `json:"type"`
	Parent                      *string           `json:"parent"`
	LocationID                  *string           `json:"locationId"`
	BannerAbbreviation          *string           `json:"bannerAbbreviation"`
	ArcGISAbbreviation          *string           `json:"arcgisAbbreviation"`
	GeoLocation                 *GeoPoint         `json:"geoLocation"`
	Geometry                    *Geometry         `json:"geometry"`
	Summary                     *string           `json:"summary"`
	Description                 *string           `json:"description"`
	DescriptionHTML             *string           `json:"descriptionHtml"`
	Address                     *string           `json:"address"`
	City                        *string           `json:"city"`
	State                       *string           `json:"state"`
	Zip                         *string           `json:"zip"`
	County                      *string           `json:"county"`
	Telephone                   *string           `json:"telephone"`
	Fax                         *string           `json:"fax"`
	Thumbnails                  []string          `json:"thumbnails"`
	Images                      []string          `json:"images"`
	Departments                 []string          `json:"departments"`
	Website                     *string           `json:"website"`
	SqFt                        *float64          `json:"sqft"`
	Calendar                    *string           `json:"calendar"`
	Campus                      *string           `json:"campus"`
	GIRCount                    *int              `json:"girCount"`
	GIRLimit                    *bool             `json:"girLimit"`
	GIRLocations                *string           `json:"girLocations"`
	Synonyms                    []string          `json:"synonyms"`
	BldgID                      *string           `json:"bldgId"`
	ParkingZoneGroup            *string           `json:"parkingZoneGroup"`
	PropID                      *string           `json:"propId"`
	ADAParkingSpaceCount        *int              `json:"adaParkingSpaceCount"`
	MotorcycleParkingSpaceCount *int              `json:"motorcycleParkingSpaceCount"`
	EVParkingSpaceCount         *int              `json:"evParkingSpaceCount"`
	WeeklyMenu                  *string           `json:"weeklyMenu"`
	Notes                       *string           `json:"notes"`
	Labels                      map[string]string `json:"labels"`
	Steward                     *string           `json:"steward"`
	Shape                       map[string]float64 `json:"shape"`
}

// NewAttributes returns the default attribute set: empty collections and a
// false girLimit, everything else null.
func NewAttributes() Attributes {
	girLimit := false
	return Attributes{
		Tags:        []string{},
		OpenHours:   OpenHours{},
		Thumbnails:  []string{},
		Images:      []string{},
		Departments: []string{},
		Synonyms:    []string{},
		GIRLimit:    &girLimit,
		Labels:      map[string]string{},
		Shape:       map[string]float64{},
	}
}

// String returns a pointer to s, or nil when s is empty. Upstream feeds
// frequently use the empty string to mean "absent".
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue always returns a pointer, including for the empty string.
func StringValue(s string) *string {
	return &s
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// NewGeoPoint builds a GeoPoint when both coordinates are present.
func NewGeoPoint(longitude, latitude *float64) *GeoPoint {
	if longitude == nil || latitude == nil {
		return nil
	}
	return &GeoPoint{Longitude: *longitude, Latitude: *latitude}
}

// NewGeometry builds a Geometry when both the type and coordinates are
// present.
func NewGeometry(coordinatesType string, coordinates any) *Geometry {
	if coordinatesType == "" || coordinates == nil {
		return nil
	}
	return &Geometry{Type: coordinatesType, Coordinates: coordinates}
}
