package sources

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"github.com/rs/zerolog"

	"github.com/campusops/wayfind/pkg/errors"
)

// FacilSource reads authoritative building rows from the facilities
// database. Unlike every other source this one is fatal on failure: the
// whole record set is anchored on facility rows.
type FacilSource struct {
	db     *sqlx.DB
	query  string
	logger zerolog.Logger
}

// NewFacilSource opens the facilities database and verifies connectivity.
func NewFacilSource(dsn, query string, logger zerolog.Logger) (*FacilSource, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to facilities database: %w", err)
	}
	return &FacilSource{db: db, query: query, logger: logger}, nil
}

// Close releases the database handle.
func (s *FacilSource) Close() error {
	return s.db.Close()
}

// Fetch runs the facilities query and returns rows keyed by building ID.
// The first column of the result set is the unique row identifier.
func (s *FacilSource) Fetch(ctx context.Context) (map[string]FacilRecord, error) {
	rows, err := s.db.QueryxContext(ctx, s.query)
	if err != nil {
		return nil, errors.NewSourceError("facilities", "database", 0, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.NewSourceError("facilities", "database", 0, err)
	}
	if len(cols) == 0 {
		return nil, errors.NewSourceError("facilities", "database", 0,
			errors.New("facilities query returned no columns"))
	}
	keyColumn := cols[0]

	records := make(map[string]FacilRecord)
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, errors.NewSourceError("facilities", "database", 0, err)
		}

		get := func(col string) string { return columnString(row[col]) }

		record := FacilRecord{
			BldgID:       get(keyColumn),
			Name:         get("name"),
			Abbreviation: get("abbreviation"),
			Campus:       get("campus"),
			Address1:     get("address1"),
			Address2:     get("address2"),
			City:         get("city"),
			State:        get("state"),
			Zip:          get("zip"),
		}
		if record.BldgID == "" {
			continue
		}
		records[record.BldgID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewSourceError("facilities", "database", 0, err)
	}

	s.logger.Debug().Int("rows", len(records)).Msg("fetched facility locations")
	return records, nil
}

// columnString renders a scanned column value as a string. lib/pq hands
// text columns back as []byte.
func columnString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
