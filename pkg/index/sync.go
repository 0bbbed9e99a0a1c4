// Package index synchronizes the freshly built document set into the
// search index. A run computes one Plan per collection by three-way diff
// against the IDs the index currently holds, then executes it as a single
// bulk request with creates and updates enqueued before deletes.
package index

import (
	"sort"

	"github.com/campusops/wayfind/pkg/locations"
)

// Plan classifies every document ID touched by one sync.
type Plan struct {
	// Create holds IDs present in the new document set but not the index.
	Create []string

	// Update holds IDs present in both. Updates are full document
	// replacements, not partial patches.
	Update []string

	// Delete holds IDs the index holds but the new set no longer does.
	Delete []string
}

// Total returns the number of operations the plan will issue.
func (p Plan) Total() int {
	return len(p.Create) + len(p.Update) + len(p.Delete)
}

// BuildPlan diffs the index's current ID set against the new documents.
// Each bucket is sorted so the plan, and the bulk body built from it, is
// deterministic. Running sync twice with identical inputs yields an empty
// Create and Delete and an Update covering every document.
func BuildPlan(currentIDs map[string]struct{}, docs []locations.Resource) Plan {
	var plan Plan

	incoming := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		incoming[doc.ID] = struct{}{}
		if _, ok := currentIDs[doc.ID]; ok {
			plan.Update = append(plan.Update, doc.ID)
		} else {
			plan.Create = append(plan.Create, doc.ID)
		}
	}

	for id := range currentIDs {
		if _, ok := incoming[id]; !ok {
			plan.Delete = append(plan.Delete, id)
		}
	}

	sort.Strings(plan.Create)
	sort.Strings(plan.Update)
	sort.Strings(plan.Delete)
	return plan
}
