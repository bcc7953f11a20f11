// Package reconcile diffs two tree snapshots into an ordered plan.
package reconcile

import (
	"sort"

	"github.com/bamsammich/linksync/internal/tree"
)

// Plan is the ordered set of actions that turns a current tree into a
// desired one. Deletions run first, children before parents. Creations run
// second, parents before children.
type Plan struct {
	Deletions []tree.Entry
	Creations []tree.Entry
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool { return len(p.Deletions) == 0 && len(p.Creations) == 0 }

// Len returns the total number of actions.
func (p Plan) Len() int { return len(p.Deletions) + len(p.Creations) }

// Reconcile computes current minus desired as deletions and desired minus
// current as creations. Entries match on RelPath and Kind, so a path whose
// kind changed is deleted and then recreated. Either snapshot may be nil,
// which is treated as empty.
func Reconcile(desired, current *tree.Snapshot) Plan {
	desired, current = orEmpty(desired), orEmpty(current)

	var plan Plan
	for _, e := range current.Entries() {
		if !desired.Has(e) {
			plan.Deletions = append(plan.Deletions, e)
		}
	}
	for _, e := range desired.Entries() {
		if !current.Has(e) {
			plan.Creations = append(plan.Creations, e)
		}
	}

	SortDeletions(plan.Deletions)
	SortCreations(plan.Creations)
	return plan
}

func orEmpty(s *tree.Snapshot) *tree.Snapshot {
	if s == nil {
		return tree.NewSnapshot("", nil)
	}
	return s
}

// SortDeletions orders entries deepest first, then longest first, then
// lexically. A descendant therefore always precedes its ancestor.
func SortDeletions(es []tree.Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if da, db := a.Depth(), b.Depth(); da != db {
			return da > db
		}
		if len(a.RelPath) != len(b.RelPath) {
			return len(a.RelPath) > len(b.RelPath)
		}
		return a.RelPath < b.RelPath
	})
}

// SortCreations orders entries shallowest first, then shortest first, then
// lexically. An ancestor therefore always precedes its descendants.
func SortCreations(es []tree.Entry) {
	sort.SliceStable(es, func(i, j int) bool {
		a, b := es[i], es[j]
		if da, db := a.Depth(), b.Depth(); da != db {
			return da < db
		}
		if len(a.RelPath) != len(b.RelPath) {
			return len(a.RelPath) < len(b.RelPath)
		}
		return a.RelPath < b.RelPath
	})
}
