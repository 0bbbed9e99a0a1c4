// Package merge combines the normalized source records into the canonical
// location set. Joins are keyed lookups by building code or resource ID,
// never nested scans, and every join is optional: a missing counterpart
// leaves the corresponding attribute block at its null/zero default.
package merge

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/pkg/locations"
	"github.com/campusops/wayfind/pkg/sources"
)

// campusDisplayNames is a policy constant, not derived data. Raw campus
// codes outside the table map to "Other"; an empty code stays null.
var campusDisplayNames = map[string]string{
	"cascadescampus": "Cascades",
	"osucampus":      "Corvallis",
	"hmsc":           "HMSC",
}

// Inputs carries one run's normalized records. Map inputs are keyed by
// building code (facilities, restrooms, geometries), resource ID (campus
// map) or calendar ID (open hours).
type Inputs struct {
	Facilities     map[string]sources.FacilRecord
	Restrooms      map[string]sources.RestroomRecord
	Geometries     map[string]sources.GeometryRecord
	Extras         []sources.ExtraRecord
	Extensions     []sources.ExtensionRecord
	Parkings       []sources.ParkingRecord
	Fields         []sources.FieldRecord
	Places         []sources.PlaceRecord
	Dining         []sources.ServiceRecord
	ExtraCalendars []sources.ServiceRecord

	CampusMap map[string]sources.CampusMapRecord

	// OpenHours is the calendar fetcher's output, keyed by calendar ID.
	// It must be complete before Merge is called.
	OpenHours map[string]locations.OpenHours

	// LibraryHours, when present, replaces the open-hours table of the
	// building identified by LibraryBuildingID.
	LibraryHours      locations.OpenHours
	LibraryBuildingID string
}

// Engine merges normalized records into emitted locations and services.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine creates a merge engine.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Merge builds the canonical location set. The first return value is the
// standalone locations ready for resource building; the second is the
// services locations, which are emitted to their own collection and
// attached to their parent buildings as relationship edges.
func (e *Engine) Merge(in Inputs) ([]*locations.Location, []*locations.Location) {
	combined := make([]*locations.Location, 0, len(in.Facilities))

	// Buildings first. Facility keys are iterated in sorted order so the
	// output is deterministic run to run.
	facilKeys := make([]string, 0, len(in.Facilities))
	for key := range in.Facilities {
		facilKeys = append(facilKeys, key)
	}
	sort.Strings(facilKeys)

	for _, key := range facilKeys {
		facil := in.Facilities[key]
		restroom, hasRestroom := in.Restrooms[key]
		geometry, hasGeometry := in.Geometries[key]
		combined = append(combined, newFacilLocation(facil, restroom, hasRestroom, geometry, hasGeometry))
	}

	for _, extra := range in.Extras {
		combined = append(combined, newExtraLocation(extra))
	}
	for _, extension := range in.Extensions {
		combined = append(combined, newExtensionLocation(extension))
	}
	for _, parking := range in.Parkings {
		combined = append(combined, newParkingLocation(parking))
	}
	for _, field := range in.Fields {
		combined = append(combined, newFieldLocation(field))
	}
	for _, place := range in.Places {
		combined = append(combined, newPlaceLocation(place))
	}
	for _, diner := range in.Dining {
		combined = append(combined, newServiceLocation(diner, in.OpenHours))
	}

	var services []*locations.Location
	for _, record := range in.ExtraCalendars {
		loc := newServiceLocation(record, in.OpenHours)
		if loc.Type == locations.TypeServices {
			services = append(services, loc)
		} else {
			combined = append(combined, loc)
		}
	}

	// Enrichment always wins over prior values, but only for its own
	// field set. Everything else keeps whatever the sources provided.
	for _, loc := range combined {
		if enrichment, ok := in.CampusMap[loc.ID()]; ok {
			applyEnrichment(loc, enrichment)
		}
	}

	// Merge-flagged entries fold into their target building and are never
	// themselves emitted. A missing target drops the entry's data.
	emitted := combined[:0]
	var folds []*locations.Location
	for _, loc := range combined {
		if loc.Merge {
			folds = append(folds, loc)
		} else {
			emitted = append(emitted, loc)
		}
	}

	byBldgID := make(map[string]*locations.Location)
	for _, loc := range emitted {
		if loc.BldgID != "" {
			byBldgID[loc.BldgID] = loc
		}
	}

	for _, fold := range folds {
		target, ok := byBldgID[fold.FoldTarget]
		if !ok {
			continue
		}
		target.Attributes.OpenHours.Combine(fold.Attributes.OpenHours)
		// List append, not set union: duplicate tags are preserved.
		target.Attributes.Tags = append(target.Attributes.Tags, fold.Attributes.Tags...)
	}

	for _, service := range services {
		if service.Merge {
			continue
		}
		target, ok := byBldgID[service.Parent]
		if !ok {
			e.logger.Warn().
				Str("service", service.PrimaryKey).
				Str("parent", service.Parent).
				Msg("service parent building not found")
			continue
		}
		target.Relationships.Attach("services", locations.RelRef{
			ID:   service.ID(),
			Type: string(service.Type),
		})
	}

	// The main library's hours come from the kiosk service, not the
	// calendar engine.
	if in.LibraryBuildingID != "" && len(in.LibraryHours) > 0 {
		for _, loc := range emitted {
			if loc.Type == locations.TypeBuilding && loc.BldgID == in.LibraryBuildingID {
				loc.Attributes.OpenHours = in.LibraryHours
			}
		}
	}

	return emitted, services
}

// campusDisplay normalizes a raw campus code to its display name.
func campusDisplay(raw string) *string {
	if raw == "" {
		return nil
	}
	if name, ok := campusDisplayNames[strings.ToLower(raw)]; ok {
		return &name
	}
	other := "Other"
	return &other
}

// joinAddress combines the two facility address lines.
func joinAddress(address1, address2 string) *string {
	if address1 == "" && address2 == "" {
		return nil
	}
	if address2 == "" {
		return locations.String(address1)
	}
	return locations.StringValue(address1 + "\n" + address2)
}

func newFacilLocation(facil sources.FacilRecord, restroom sources.RestroomRecord, hasRestroom bool, geometry sources.GeometryRecord, hasGeometry bool) *locations.Location {
	attrs := locations.NewAttributes()
	attrs.Name = locations.String(facil.Name)
	attrs.Type = string(locations.TypeBuilding)
	attrs.BannerAbbreviation = locations.String(facil.Abbreviation)
	attrs.Campus = campusDisplay(facil.Campus)
	attrs.Address = joinAddress(facil.Address1, facil.Address2)
	attrs.City = locations.String(facil.City)
	attrs.State = locations.String(facil.State)
	attrs.Zip = locations.String(facil.Zip)
	attrs.BldgID = locations.String(facil.BldgID)

	if hasRestroom {
		attrs.GIRCount = locations.Int(restroom.Count)
		attrs.GIRLimit = locations.Bool(strings.TrimSpace(restroom.Limit) != "")
		attrs.GIRLocations = locations.String(strings.TrimSpace(restroom.Locations))
	} else {
		attrs.GIRCount = locations.Int(0)
		attrs.GIRLimit = nil
	}

	if hasGeometry {
		attrs.GeoLocation = locations.NewGeoPoint(geometry.Longitude, geometry.Latitude)
		attrs.Geometry = locations.NewGeometry(geometry.CoordinatesType, geometry.Coordinates)
	}

	arcgisAbbreviation := geometry.Abbreviation
	if arcgisAbbreviation == "" {
		arcgisAbbreviation = restroom.Abbreviation
	}
	attrs.ArcGISAbbreviation = locations.String(arcgisAbbreviation)

	return &locations.Location{
		Source:        "facil-location",
		Type:          locations.TypeBuilding,
		PrimaryKey:    facil.BldgID,
		BldgID:        facil.BldgID,
		Attributes:    attrs,
		Relationships: locations.NewRelationships(),
	}
}

func newExtraLocation(extra sources.ExtraRecord) *locations.Location {
	primaryKey := extra.BldgID
	if primaryKey == "" {
		primaryKey = extra.Name
	}

	attrs := locations.NewAttributes()
	attrs.Name = locations.String(extra.Name)
	attrs.Type = extra.Type
	attrs.Campus = locations.String(extra.Campus)
	attrs.BldgID = locations.String(extra.BldgID)
	attrs.GeoLocation = locations.NewGeoPoint(extra.Longitude, extra.Latitude)

	return &locations.Location{
		Source:        "extra-location",
		Type:          locations.Type(extra.Type),
		PrimaryKey:    primaryKey,
		BldgID:        extra.BldgID,
		Attributes:    attrs,
		Relationships: locations.NewRelationships(),
	}
}

func newExtensionLocation(extension sources.ExtensionRecord) *locations.Location {
	campus := "Extension"

	attrs := locations.NewAttributes()
	attrs.Name = locations.String(extension.GroupName)
	attrs.Type = string(locations.TypeOther)
	attrs.Campus = &campus
	attrs.GeoLocation = extension.GeoLocation
	attrs.Address = locations.String(extension.StreetAddress)
	attrs.City = locations.String(extension.City)
	attrs.State = locations.String(extension.State)
	attrs.Zip = locations.String(extension.Zip)
	attrs.Telephone = locations.String(extension.Telephone)
	attrs.Fax = locations.String(extension.Fax)
	attrs.County = locations.String(extension.County)
	attrs.Website = locations.String(extension.LocationURL)

	return &locations.Location{
		Source:        "extension-location",
		Type:          locations.TypeOther,
		PrimaryKey:    extension.GUID,
		Attributes:    attrs,
		Relationships: locations.NewRelationships(),
	}
}

func newParkingLocation(parking sources.ParkingRecord) *locations.Location {
	campus := "Corvallis"

	attrs := locations.NewAttributes()
	attrs.Name = locations.String(parking.Description)
	attrs.Type = string(locations.TypeParking)
	attrs.Campus = &campus
	attrs.ParkingZoneGroup = locations.String(parking.ZoneGroup)
	attrs.PropID = locations.String(parking.PropID)
	attrs.ADAParkingSpaceCount = parking.ADASpaces
	attrs.MotorcycleParkingSpaceCount = parking.MotorcycleSpaces
	attrs.EVParkingSpaceCount = parking.EVSpaces
	attrs.GeoLocation = locations.NewGeoPoint(parking.Longitude, parking.Latitude)
	attrs.Geometry = locations.NewGeometry(parking.CoordinatesType, parking.Coordinates)

	return &locations.Location{
		Source:        "parking-location",
		Type:          locations.TypeParking,
		PrimaryKey:    parking.PropID + parking.ZoneGroup,
		Attributes:    attrs,
		Relationships: locations.NewRelationships(),
	}
}

func newFieldLocation(field sources.FieldRecord) *locations.Location {
	attrs := locations.NewAttributes()
	attrs.Name = locations.String(field.Name)
	attrs.Type = string(locations.TypeField)
	attrs.Description = locations.String(field.Description)
	attrs.Notes = locations.String(field.Notes)
	attrs.Steward = locations.String(field.Steward)
	attrs.PropID = locations.String(field.PropID)
	attrs.Geometry = locations.NewGeometry(field.CoordinatesType, field.Coordinates)

	if field.Label1 != "" {
		attrs.Labels["1"] = field.Label1
	}
	if field.Label2 != "" {
		attrs.Labels["2"] = field.Label2
	}
	if field.Image != "" {
		attrs.Images = []string{field.Image}
	}
	if field.ShapeArea != nil {
		attrs.Shape["area"] = *field.ShapeArea
	}
	if field.ShapeLength != nil {
		attrs.Shape["length"] = *field.ShapeLength
	}
	if field.ShapeAcres != nil {
		attrs.Shape["acres"] = *field.ShapeAcres
	}

	return &locations.Location{
		Source:        "field-location",
		Type:          locations.TypeField,
		PrimaryKey:    field.PropID,
		Attributes:    attrs,
		Relationships: locations.NewRelationships(),
	}
}

func newPlaceLocation(place sources.PlaceRecord) *locations.Location {
	attrs := locations.NewAttributes()
	attrs.Name = locations.String(place.Name)
	attrs.Type = string(locations.TypePlace)
	attrs.Description = locations.String(place.Description)
	attrs.Address = locations.String(place.Address)
	attrs.Website = locations.String(place.Website)
	attrs.PropID = locations.String(place.PropID)
	attrs.GeoLocation = locations.NewGeoPoint(place.Longitude, place.Latitude)

	return &locations.Location{
		Source:        "place-location",
		Type:          locations.TypePlace,
		PrimaryKey:    place.PropID + place.UID,
		Attributes:    attrs,
		Relationships: locations.NewRelationships(),
	}
}

func newServiceLocation(record sources.ServiceRecord, openHours map[string]locations.OpenHours) *locations.Location {
	campus := "Corvallis"

	attrs := locations.NewAttributes()
	attrs.Name = locations.String(record.ConceptTitle)
	attrs.Type = string(record.Type)
	attrs.Campus = &campus
	attrs.Parent = locations.String(record.Parent)
	attrs.WeeklyMenu = locations.String(record.WeeklyMenu)
	attrs.GeoLocation = locations.NewGeoPoint(record.Longitude, record.Latitude)
	if record.Zone != "" {
		attrs.Summary = locations.StringValue("Zone: " + record.Zone)
	}
	if record.Tags != nil {
		attrs.Tags = record.Tags
	}
	if hours, ok := openHours[record.CalendarID]; ok {
		attrs.OpenHours = hours
	}

	return &locations.Location{
		Source:        "service-location",
		Type:          record.Type,
		PrimaryKey:    record.CalendarID,
		Parent:        record.Parent,
		FoldTarget:    record.ConceptTitle,
		Merge:         record.Merge,
		Attributes:    attrs,
		Relationships: locations.NewRelationships(),
	}
}

// applyEnrichment overwrites the campus-map owned fields.
func applyEnrichment(loc *locations.Location, enrichment sources.CampusMapRecord) {
	loc.Attributes.Address = locations.String(enrichment.Address)
	loc.Attributes.Description = locations.String(enrichment.Description)
	loc.Attributes.DescriptionHTML = locations.String(enrichment.DescriptionHTML)
	loc.Attributes.Website = locations.String(enrichment.MapURL)

	loc.Attributes.Images = enrichment.Images
	if loc.Attributes.Images == nil {
		loc.Attributes.Images = []string{}
	}
	loc.Attributes.Thumbnails = enrichment.Thumbnail
	if loc.Attributes.Thumbnails == nil {
		loc.Attributes.Thumbnails = []string{}
	}
	loc.Attributes.Synonyms = enrichment.Synonyms
	if loc.Attributes.Synonyms == nil {
		loc.Attributes.Synonyms = []string{}
	}
}
