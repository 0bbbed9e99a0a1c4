package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/internal/transport"
	"github.com/campusops/wayfind/pkg/errors"
	"github.com/campusops/wayfind/pkg/locations"
)

// decimalPattern matches one signed decimal number inside the feed's
// combined GeoLocation string.
var decimalPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// xmlDocument decodes the extension feed generically: each child of the
// root is an item, and each of the item's sub-elements becomes one flat
// key/value pair.
type xmlDocument struct {
	Items []xmlItem `xml:",any"`
}

type xmlItem struct {
	Fields []xmlField `xml:",any"`
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// ExtensionSource reads the extension-office XML feed.
type ExtensionSource struct {
	client *transport.Client
	url    string
	logger zerolog.Logger
}

// NewExtensionSource creates an extension feed wrapper.
func NewExtensionSource(client *transport.Client, url string, logger zerolog.Logger) *ExtensionSource {
	return &ExtensionSource{client: client, url: url, logger: logger}
}

// Fetch returns all extension-office entries. Entries without a GUID are
// unusable (no primary key) and skipped.
func (s *ExtensionSource) Fetch(ctx context.Context) ([]ExtensionRecord, error) {
	body, err := s.client.GetBytes(ctx, s.url, nil)
	if err != nil {
		return nil, err
	}

	var doc xmlDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("extension feed: %v: %w", err, errors.ErrMalformedPayload)
	}

	var records []ExtensionRecord
	for _, item := range doc.Items {
		raw := make(map[string]string, len(item.Fields))
		for _, f := range item.Fields {
			raw[f.XMLName.Local] = f.Value
		}
		if raw["GUID"] == "" {
			continue
		}

		records = append(records, ExtensionRecord{
			GUID:          raw["GUID"],
			GroupName:     raw["GroupName"],
			StreetAddress: raw["StreetAddress"],
			City:          raw["City"],
			State:         raw["State"],
			Zip:           raw["ZIPCode"],
			Fax:           raw["fax"],
			Telephone:     raw["tel"],
			County:        raw["county"],
			LocationURL:   raw["location_url"],
			GeoLocation:   parseGeoLocation(raw["GeoLocation"]),
		})
	}

	s.logger.Debug().Int("records", len(records)).Msg("fetched extension locations")
	return records, nil
}

// parseGeoLocation pulls a latitude,longitude pair out of the feed's
// combined coordinate string.
func parseGeoLocation(raw string) *locations.GeoPoint {
	matches := decimalPattern.FindAllString(raw, 2)
	if len(matches) < 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(matches[0], 64)
	lon, err2 := strconv.ParseFloat(matches[1], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &locations.GeoPoint{Longitude: lon, Latitude: lat}
}
