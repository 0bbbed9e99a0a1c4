package sources

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/internal/config"
	"github.com/campusops/wayfind/internal/geo"
	"github.com/campusops/wayfind/internal/transport"
)

// featureCollection is the wire shape of a feature-service response. The
// service answers in two dialects: attribute features ("attributes",
// optionally esri "rings" geometry) and GeoJSON features ("properties",
// "geometry.coordinates").
type featureCollection struct {
	Features []feature `json:"features"`
}

type feature struct {
	ID         any            `json:"id"`
	Attributes map[string]any `json:"attributes"`
	Properties map[string]any `json:"properties"`
	Geometry   *rawGeometry   `json:"geometry"`
}

type rawGeometry struct {
	Type        string `json:"type"`
	Coordinates []any  `json:"coordinates"`
	Rings       []any  `json:"rings"`
}

// ArcGISSource wraps the geospatial feature service: restrooms, building
// footprints, parking lots, fields, and places.
type ArcGISSource struct {
	client *transport.Client
	cfg    *config.Config
	logger zerolog.Logger

	statePlane  geo.Projection
	webMercator geo.Projection
}

// NewArcGISSource creates a feature-service wrapper.
func NewArcGISSource(client *transport.Client, cfg *config.Config, logger zerolog.Logger) *ArcGISSource {
	return &ArcGISSource{
		client:      client,
		cfg:         cfg,
		logger:      logger,
		statePlane:  geo.StatePlaneOregonNorth(),
		webMercator: geo.WebMercatorFeet(),
	}
}

func (s *ArcGISSource) fetch(ctx context.Context, endpoint config.Endpoint) (*featureCollection, error) {
	var fc featureCollection
	url := s.cfg.ArcGIS.URL + endpoint.Endpoint
	if err := s.client.GetJSON(ctx, url, endpoint.Params, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// GenderInclusiveRestrooms returns restroom summaries keyed by building ID.
func (s *ArcGISSource) GenderInclusiveRestrooms(ctx context.Context) (map[string]RestroomRecord, error) {
	fc, err := s.fetch(ctx, s.cfg.ArcGIS.GenderInclusiveRR)
	if err != nil {
		return nil, err
	}

	records := make(map[string]RestroomRecord, len(fc.Features))
	for _, f := range fc.Features {
		attrs := f.Attributes
		if attrs == nil {
			continue
		}
		bldgID := getString(attrs, "BldID")
		if bldgID == "" {
			continue
		}
		count := 0
		if c := getInt(attrs, "CntAll"); c != nil {
			count = *c
		}
		records[bldgID] = RestroomRecord{
			BldgID:       bldgID,
			Abbreviation: getString(attrs, "BldNamAbr"),
			Count:        count,
			Limit:        getString(attrs, "Limits"),
			Locations:    getString(attrs, "LocaAll"),
		}
	}
	return records, nil
}

// BuildingGeometries returns footprints and centroids keyed by building
// ID, with coordinates converted out of the state-plane grid.
func (s *ArcGISSource) BuildingGeometries(ctx context.Context) (map[string]GeometryRecord, error) {
	fc, err := s.fetch(ctx, s.cfg.ArcGIS.BuildingGeometries)
	if err != nil {
		return nil, err
	}

	records := make(map[string]GeometryRecord, len(fc.Features))
	for _, f := range fc.Features {
		props := f.Properties
		if props == nil {
			continue
		}
		bldgID := getString(props, "BldID")
		if bldgID == "" {
			continue
		}

		coordType, coords := s.convertGeometry(f.Geometry, f.ID, s.statePlane)
		lon, lat := s.convertCentroid(getFloat(props, "Cent_Lon"), getFloat(props, "Cent_Lat"), s.statePlane)

		records[bldgID] = GeometryRecord{
			BldgID:          bldgID,
			Abbreviation:    getString(props, "BldNamAbr"),
			Longitude:       lon,
			Latitude:        lat,
			CoordinatesType: coordType,
			Coordinates:     coords,
		}
	}
	return records, nil
}

// ParkingLots returns the parking features with both Prop_ID and ZoneGroup
// populated. Features failing the filter are skipped and their OBJECTIDs
// reported in one aggregated warning.
func (s *ArcGISSource) ParkingLots(ctx context.Context) ([]ParkingRecord, error) {
	fc, err := s.fetch(ctx, s.cfg.ArcGIS.ParkingGeometries)
	if err != nil {
		return nil, err
	}

	var records []ParkingRecord
	var ignored []string
	for _, f := range fc.Features {
		props := f.Properties
		if props == nil {
			continue
		}
		propID := getString(props, "Prop_ID")
		zoneGroup := getString(props, "ZoneGroup")
		if !isValidField(propID) || !isValidField(zoneGroup) {
			ignored = append(ignored, getString(props, "OBJECTID"))
			continue
		}

		coordType, coords := s.convertGeometry(f.Geometry, f.ID, s.statePlane)

		records = append(records, ParkingRecord{
			PropID:           propID,
			ZoneGroup:        zoneGroup,
			Description:      getString(props, "AiM_Desc"),
			ADASpaces:        getInt(props, "ADA_Spc"),
			MotorcycleSpaces: getInt(props, "MCycle_Spc"),
			EVSpaces:         getInt(props, "EV_Spc"),
			Longitude:        getFloat(props, "Cent_Lon"),
			Latitude:         getFloat(props, "Cent_Lat"),
			CoordinatesType:  coordType,
			Coordinates:      coords,
		})
	}

	if len(ignored) > 0 {
		s.logger.Warn().
			Strs("objectids", ignored).
			Msg("ignored parking lots without a valid Prop_ID or ZoneGroup")
	}
	return records, nil
}

// Fields returns field features with a valid Prop_ID and Expose set to Y.
// Skipped features are reported in one aggregated warning.
func (s *ArcGISSource) Fields(ctx context.Context) ([]FieldRecord, error) {
	fc, err := s.fetch(ctx, s.cfg.ArcGIS.Fields)
	if err != nil {
		return nil, err
	}

	var records []FieldRecord
	var ignored []string
	for _, f := range fc.Features {
		attrs := f.Attributes
		if attrs == nil {
			continue
		}
		propID := getString(attrs, "Prop_ID")
		if !isValidField(propID) || getString(attrs, "Expose") != "Y" {
			ignored = append(ignored, getString(attrs, "OBJECTID"))
			continue
		}

		coordType, coords := s.convertGeometry(f.Geometry, f.ID, s.webMercator)

		records = append(records, FieldRecord{
			PropID:          propID,
			Name:            getString(attrs, "Field_Nam"),
			Description:     getString(attrs, "Description"),
			Notes:           getString(attrs, "Notes"),
			Label1:          getString(attrs, "Label_1"),
			Label2:          getString(attrs, "Label_2"),
			Steward:         getString(attrs, "Steward"),
			Image:           getString(attrs, "Image"),
			ShapeArea:       getFloat(attrs, "Shape__Area"),
			ShapeLength:     getFloat(attrs, "Shape__Length"),
			ShapeAcres:      getFloat(attrs, "Shape_Acres"),
			CoordinatesType: coordType,
			Coordinates:     coords,
		})
	}

	if len(ignored) > 0 {
		s.logger.Warn().
			Strs("objectids", ignored).
			Msg("ignored fields without a valid Prop_ID or not exposed")
	}
	return records, nil
}

// Places returns place features whose Prop_ID and uID are both valid.
// Skipped features are reported in one aggregated warning.
func (s *ArcGISSource) Places(ctx context.Context) ([]PlaceRecord, error) {
	fc, err := s.fetch(ctx, s.cfg.ArcGIS.Places)
	if err != nil {
		return nil, err
	}

	var records []PlaceRecord
	var ignored []string
	for _, f := range fc.Features {
		attrs := f.Attributes
		if attrs == nil {
			continue
		}
		propID := getString(attrs, "Prop_ID")
		uid := getString(attrs, "uID")
		if !isValidField(propID) || !isValidField(uid) {
			ignored = append(ignored, getString(attrs, "OBJECTID"))
			continue
		}

		records = append(records, PlaceRecord{
			PropID:      propID,
			UID:         uid,
			Name:        getString(attrs, "Name"),
			Address:     getString(attrs, "Loca"),
			Description: getString(attrs, "Desc_"),
			Website:     getString(attrs, "URL_Home"),
			Longitude:   getFloat(attrs, "Cent_Lon"),
			Latitude:    getFloat(attrs, "Cent_Lat"),
		})
	}

	if len(ignored) > 0 {
		s.logger.Warn().
			Strs("objectids", ignored).
			Msg("ignored places without a valid Prop_ID or uID")
	}
	return records, nil
}

// convertCentroid inverts a projected centroid. Pairs already in decimal
// degrees pass through untouched.
func (s *ArcGISSource) convertCentroid(lon, lat *float64, p geo.Projection) (*float64, *float64) {
	if lon == nil || lat == nil {
		return lon, lat
	}
	if geo.InDecimalRange(*lon, *lat) {
		return lon, lat
	}
	clon, clat := p.Inverse(*lon, *lat)
	return &clon, &clat
}

// convertGeometry converts the coordinate arrays of one feature geometry.
// Esri "rings" geometries keep the type tag "rings". Unknown geometry
// types are logged and yield no coordinates.
func (s *ArcGISSource) convertGeometry(g *rawGeometry, featureID any, p geo.Projection) (string, any) {
	if g == nil {
		return "", nil
	}

	switch {
	case g.Type == "Polygon":
		return g.Type, convertPolygon(g.Coordinates, p)
	case g.Type == "MultiPolygon":
		polygons := make([]any, 0, len(g.Coordinates))
		for _, polygon := range g.Coordinates {
			if rings, ok := polygon.([]any); ok {
				polygons = append(polygons, convertPolygon(rings, p))
			}
		}
		return g.Type, polygons
	case g.Type == "" && len(g.Rings) > 0:
		return "rings", convertPolygon(g.Rings, p)
	case g.Type != "":
		s.logger.Warn().
			Str("geometry_type", g.Type).
			Interface("id", featureID).
			Msg("ignoring unknown geometry type")
	}
	return g.Type, nil
}

// convertPolygon converts each ring of coordinate pairs, leaving pairs
// already in decimal degrees as-is. Extra dimensions past the pair are
// preserved.
func convertPolygon(rings []any, p geo.Projection) []any {
	out := make([]any, 0, len(rings))
	for _, r := range rings {
		ring, ok := r.([]any)
		if !ok {
			continue
		}
		pairs := make([]any, 0, len(ring))
		for _, el := range ring {
			pair, ok := el.([]any)
			if !ok || len(pair) < 2 {
				pairs = append(pairs, el)
				continue
			}
			lon, okLon := pair[0].(float64)
			lat, okLat := pair[1].(float64)
			if !okLon || !okLat || geo.InDecimalRange(lon, lat) {
				pairs = append(pairs, pair)
				continue
			}
			clon, clat := p.Inverse(lon, lat)
			converted := append([]any{clon, clat}, pair[2:]...)
			pairs = append(pairs, converted)
		}
		out = append(out, pairs)
	}
	return out
}
