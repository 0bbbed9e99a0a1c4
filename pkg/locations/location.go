// Package locations defines the canonical Location entity that every
// upstream source record is folded into, and the Resource document shape
// emitted to the search index and downstream API.
package locations

import (
	"fmt"

	"github.com/campusops/wayfind/pkg/identity"
)

// Type classifies a canonical location.
type Type string

// Canonical location types.
const (
	TypeBuilding Type = "building"
	TypeParking  Type = "parking"
	TypeField    Type = "field"
	TypePlace    Type = "place"
	TypeDining   Type = "dining"
	TypeServices Type = "services"
	TypeOther    Type = "other"
)

// Location is the canonical in-memory entity produced by the merge engine.
// It is keyed by a content-derived identity: the hash of (type, primary key).
type Location struct {
	// Source tags provenance, e.g. "facil-location" or "parking-location".
	Source string

	// Type is the canonical location type. Never empty on an emitted location.
	Type Type

	// PrimaryKey is the source-specific natural key. Unique only within the
	// location's own (type, key) namespace.
	PrimaryKey string

	// BldgID is the building join key, empty for locations that are not
	// buildings. Services and merge-flagged entries address buildings
	// through Parent and FoldTarget respectively.
	BldgID string

	// Parent is the building key a services entry attaches to.
	Parent string

	// FoldTarget is the building key a merge-flagged entry folds into.
	FoldTarget string

	// Merge marks an entry whose attributes are absorbed into another
	// location instead of being emitted standalone.
	Merge bool

	Attributes    Attributes
	Relationships Relationships
}

// ID returns the stable document identity for this location.
func (l *Location) ID() string {
	return identity.Resolve(string(l.Type), l.PrimaryKey)
}

// RelRef is a typed reference to a related resource.
type RelRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// RelData wraps relationship references in the documented envelope.
type RelData struct {
	Data []RelRef `json:"data"`
}

// Relationships maps a relationship name to its references. Relationships
// are accumulative: multiple services may attach to one building.
type Relationships map[string]*RelData

// NewRelationships returns the default relationship set for a location.
func NewRelationships() Relationships {
	return Relationships{"services": {Data: []RelRef{}}}
}

// Attach appends a reference under the named relationship.
func (r Relationships) Attach(name string, ref RelRef) {
	rel, ok := r[name]
	if !ok {
		rel = &RelData{Data: []RelRef{}}
		r[name] = rel
	}
	rel.Data = append(rel.Data, ref)
}

// Links holds the resource's link set.
type Links struct {
	Self string `json:"self"`
}

// Resource is the canonical output document shape.
type Resource struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	Attributes    any           `json:"attributes"`
	Links         Links         `json:"links"`
	Relationships Relationships `json:"relationships"`
}

// serviceAttributes is the reduced attribute set emitted for services.
type serviceAttributes struct {
	Name      *string   `json:"name"`
	Type      string    `json:"type"`
	OpenHours OpenHours `json:"openHours"`
	Tags      []string  `json:"tags"`
	Parent    *string   `json:"parent"`
}

// Resource renders the location into its output document. Services collapse
// to a reduced attribute set and reference their building; everything else
// carries the full attribute key set with absent values kept as null.
func (l *Location) Resource(apiBaseURL string) Resource {
	id := l.ID()

	resourceType := "locations"
	attrs := any(&l.Attributes)
	relationships := l.Relationships

	if l.Type == TypeServices {
		resourceType = "services"
		attrs = &serviceAttributes{
			Name:      l.Attributes.Name,
			Type:      string(l.Type),
			OpenHours: l.Attributes.OpenHours,
			Tags:      l.Attributes.Tags,
			Parent:    l.Attributes.Parent,
		}
		relationships = Relationships{
			"location": {Data: []RelRef{{
				ID:   identity.Resolve(string(TypeBuilding), l.Parent),
				Type: "locations",
			}}},
		}
	}

	if relationships == nil {
		relationships = NewRelationships()
	}

	return Resource{
		ID:            id,
		Type:          resourceType,
		Attributes:    attrs,
		Links:         Links{Self: fmt.Sprintf("%s/locations/%s", apiBaseURL, id)},
		Relationships: relationships,
	}
}
