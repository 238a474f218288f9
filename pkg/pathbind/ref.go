package pathbind

import (
	"sync"

	"github.com/pathbind-dev/pathbind/internal/errors"
	"github.com/pathbind-dev/pathbind/pkg/statepath"
)

// StatePropertyRef identifies one logical state property: a structural
// path plus, for wildcarded paths, the concrete list slot. Two refs are the
// same identity iff their pattern and list-index object are the same, so
// interned refs compare equal by pointer.
type StatePropertyRef struct {
	// Info is the memoized structural path.
	Info *statepath.PathInfo

	// ListIndex is nil for non-wildcarded paths and required otherwise.
	ListIndex *ListIndex
}

// Pattern returns the ref's path pattern.
func (r *StatePropertyRef) Pattern() string {
	return r.Info.Pattern
}

// RequireListIndex returns the ref's list index, panicking with PB103 when
// a wildcarded ref carries none. A nil index on a wildcarded ref means the
// ref-identity system disagrees with the path layer; it is never defaulted.
func (r *StatePropertyRef) RequireListIndex() *ListIndex {
	if r.Info.WildcardCount > 0 && r.ListIndex == nil {
		panic(errors.New("PB103").With("pattern", r.Info.Pattern))
	}
	return r.ListIndex
}

// refKey is the interning key for a ref.
type refKey struct {
	info      *statepath.PathInfo
	listIndex *ListIndex
}

// RefStore interns StatePropertyRefs so that identical logical references
// are pointer-equal across the whole update cycle. This identity underlies
// the dependency-graph cache and the reconciler's arena lookups.
type RefStore struct {
	mu   sync.Mutex
	refs map[refKey]*StatePropertyRef
}

// NewRefStore creates an empty ref store.
func NewRefStore() *RefStore {
	return &RefStore{refs: make(map[refKey]*StatePropertyRef)}
}

// GetRef returns the canonical ref for (info, listIndex), creating it on
// first use. Panics with PB103 when info is wildcarded and listIndex is nil.
func (s *RefStore) GetRef(info *statepath.PathInfo, listIndex *ListIndex) *StatePropertyRef {
	if info.WildcardCount > 0 && listIndex == nil {
		panic(errors.New("PB103").With("pattern", info.Pattern))
	}

	key := refKey{info: info, listIndex: listIndex}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ref, ok := s.refs[key]; ok {
		return ref
	}
	ref := &StatePropertyRef{Info: info, ListIndex: listIndex}
	s.refs[key] = ref
	return ref
}

// GetRefByPattern is a convenience wrapper resolving the pattern first.
func (s *RefStore) GetRefByPattern(pattern string, listIndex *ListIndex) *StatePropertyRef {
	return s.GetRef(statepath.Get(pattern), listIndex)
}
