package sources

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/internal/transport"
)

// CampusMapSource reads the campus-map JSON feed: enrichment entries keyed
// by the resource ID they decorate.
type CampusMapSource struct {
	client *transport.Client
	url    string
	logger zerolog.Logger
}

// NewCampusMapSource creates a campus-map feed wrapper.
func NewCampusMapSource(client *transport.Client, url string, logger zerolog.Logger) *CampusMapSource {
	return &CampusMapSource{client: client, url: url, logger: logger}
}

// Fetch returns enrichment records keyed by resource ID.
func (s *CampusMapSource) Fetch(ctx context.Context) (map[string]CampusMapRecord, error) {
	var entries []CampusMapRecord
	if err := s.client.GetJSON(ctx, s.url, nil, &entries); err != nil {
		return nil, err
	}

	records := make(map[string]CampusMapRecord, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		records[entry.ID] = entry
	}

	s.logger.Debug().Int("records", len(records)).Msg("fetched campus map data")
	return records, nil
}
