package listdiff

import (
	"reflect"

	"github.com/pathbind-dev/pathbind/pkg/pathbind"
)

// IndexSet is a set of list-slot identities.
type IndexSet map[*pathbind.ListIndex]struct{}

// Has reports membership.
func (s IndexSet) Has(li *pathbind.ListIndex) bool {
	_, ok := s[li]
	return ok
}

// Add inserts li.
func (s IndexSet) Add(li *pathbind.ListIndex) {
	s[li] = struct{}{}
}

// Diff is the result of comparing two list materializations.
//
// Every ListIndex in NewIndexes is either freshly minted (member of Adds)
// or was present in the previous NewIndexes, reused with its identity
// preserved. Removes is the subset of the previous indexes with no match
// in the new list.
type Diff struct {
	OldValues []any
	NewValues []any

	// NewIndexes holds one identity per new element, in list order.
	NewIndexes []*pathbind.ListIndex

	// Adds are the freshly minted identities.
	Adds IndexSet

	// Removes are the old identities with no surviving element.
	Removes IndexSet

	// Changes are reused identities whose position changed.
	Changes IndexSet

	// Overwrites are slots explicitly marked dirty without an index
	// change; the reconciler re-renders them in place.
	Overwrites IndexSet
}

// IsAllNew reports that no existing identity was reused.
func (d *Diff) IsAllNew() bool {
	return len(d.NewIndexes) > 0 && len(d.Adds) == len(d.NewIndexes)
}

// WillRemoveAll reports that every previously mounted identity is being
// removed and nothing new is added.
func (d *Diff) WillRemoveAll() bool {
	return len(d.NewIndexes) == 0 && len(d.Removes) > 0
}

// MarkOverwrite flags a reused slot as dirty in place.
func (d *Diff) MarkOverwrite(li *pathbind.ListIndex) {
	if d.Overwrites == nil {
		d.Overwrites = make(IndexSet)
	}
	d.Overwrites.Add(li)
}

// Compare diffs the previous list materialization (oldValues paired with
// oldIndexes) against newValues. parent is the enclosing list slot for
// nested loops, nil at the top level.
//
// Matching rule: value equality with positional preference. An element
// first keeps its previous identity when the old value at the same
// position is equal; remaining new elements reuse the first unconsumed
// equal old value (these land in Changes since their position moved);
// everything else mints a fresh identity. Any rule preserving identity
// invariants would do; this one keeps stable lists cheap and makes
// single-element splices reuse everything they can.
//
// Returns nil when the prerequisite state is inconsistent (the previous
// values and identity set disagree in length); callers treat a nil diff
// as a fatal internal error.
func Compare(oldValues []any, oldIndexes []*pathbind.ListIndex, newValues []any, parent *pathbind.ListIndex) *Diff {
	if len(oldValues) != len(oldIndexes) {
		return nil
	}

	d := &Diff{
		OldValues:  oldValues,
		NewValues:  newValues,
		NewIndexes: make([]*pathbind.ListIndex, len(newValues)),
		Adds:       make(IndexSet),
		Removes:    make(IndexSet),
		Changes:    make(IndexSet),
	}

	used := make([]bool, len(oldValues))

	// Positional pass: same slot, same value.
	for i, nv := range newValues {
		if i < len(oldValues) && !used[i] && valuesEqual(oldValues[i], nv) {
			used[i] = true
			d.NewIndexes[i] = oldIndexes[i]
		}
	}

	// Relocation pass: first unconsumed equal value, then mint.
	for i, nv := range newValues {
		if d.NewIndexes[i] != nil {
			continue
		}
		matched := false
		for j := range oldValues {
			if used[j] || !valuesEqual(oldValues[j], nv) {
				continue
			}
			used[j] = true
			li := oldIndexes[j]
			li.SetPosition(i)
			d.NewIndexes[i] = li
			d.Changes.Add(li)
			matched = true
			break
		}
		if !matched {
			d.NewIndexes[i] = pathbind.NewListIndex(parent, i)
			d.Adds.Add(d.NewIndexes[i])
		}
	}

	for j, consumed := range used {
		if !consumed {
			d.Removes.Add(oldIndexes[j])
		}
	}

	return d
}

// valuesEqual compares two list elements.
// Fast paths for common scalar types, reflect.DeepEqual otherwise.
func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}
