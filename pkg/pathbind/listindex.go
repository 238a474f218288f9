package pathbind

// ListIndex is the stable identity of one logical list slot. One instance
// is created when the slot first appears and is reused for as long as the
// slot's element survives; when the element moves, Position is mutated in
// place rather than minting a new identity.
//
// Wildcarded paths nest: an element of "users.*.tags.*" carries a parent
// ListIndex for the "users.*" level. The parent chain depth always equals
// the pattern's wildcard count.
//
// The arena handle (slot, generation) is written by the loop reconciler's
// side-table; it addresses the mounted content for this identity without
// extending the identity's lifetime.
type ListIndex struct {
	id uint64

	// parent is the identity of the enclosing list slot, nil at the
	// outermost wildcard level.
	parent *ListIndex

	// position is the element's current index within its list.
	position int

	// depth is the wildcard level of this identity (parent chain length).
	depth int

	// arenaSlot and arenaGen address this identity's mounted content in
	// the reconciler's content arena. arenaGen 0 means "no content".
	arenaSlot int
	arenaGen  uint32
}

// NewListIndex mints a fresh identity for a list slot at the given position.
func NewListIndex(parent *ListIndex, position int) *ListIndex {
	depth := 1
	if parent != nil {
		depth = parent.depth + 1
	}
	return &ListIndex{
		id:       nextID(),
		parent:   parent,
		position: position,
		depth:    depth,
	}
}

// ID returns the unique identifier of this identity.
func (li *ListIndex) ID() uint64 {
	return li.id
}

// Parent returns the enclosing list slot identity, or nil.
func (li *ListIndex) Parent() *ListIndex {
	return li.parent
}

// Position returns the element's current index within its list.
func (li *ListIndex) Position() int {
	return li.position
}

// SetPosition mutates the slot's position in place. The identity itself
// is preserved.
func (li *ListIndex) SetPosition(pos int) {
	li.position = pos
}

// Depth returns the wildcard level of this identity.
func (li *ListIndex) Depth() int {
	return li.depth
}

// Indexes returns the positions along the parent chain, outermost first.
func (li *ListIndex) Indexes() []int {
	idx := make([]int, li.depth)
	for cur := li; cur != nil; cur = cur.parent {
		idx[cur.depth-1] = cur.position
	}
	return idx
}

// AtDepth returns the ancestor identity at the given wildcard level
// (1-based). Returns nil when depth is 0 or exceeds this identity's depth.
func (li *ListIndex) AtDepth(depth int) *ListIndex {
	if depth <= 0 || depth > li.depth {
		return nil
	}
	cur := li
	for cur.depth > depth {
		cur = cur.parent
	}
	return cur
}

// Within reports whether this identity is scope itself or is nested
// inside scope's slot, walking the parent chain.
func (li *ListIndex) Within(scope *ListIndex) bool {
	for cur := li; cur != nil; cur = cur.parent {
		if cur == scope {
			return true
		}
	}
	return false
}

// SetArenaHandle records the content-arena address for this identity.
func (li *ListIndex) SetArenaHandle(slot int, gen uint32) {
	li.arenaSlot = slot
	li.arenaGen = gen
}

// ClearArenaHandle detaches this identity from any arena content.
func (li *ListIndex) ClearArenaHandle() {
	li.arenaSlot = 0
	li.arenaGen = 0
}

// ArenaHandle returns the content-arena address for this identity.
// ok is false when no content has been recorded.
func (li *ListIndex) ArenaHandle() (slot int, gen uint32, ok bool) {
	return li.arenaSlot, li.arenaGen, li.arenaGen != 0
}
