package binding

import "github.com/pathbind-dev/pathbind/pkg/pathbind"

// contentArena maps list-slot identities to their mounted content through
// a generation-checked integer handle stored on the identity object. The
// arena owns slot reuse; a stale handle (removed or re-assigned slot)
// simply fails the generation check instead of resurrecting old content.
type contentArena struct {
	slots []arenaSlot
	free  []int
}

type arenaSlot struct {
	content Content
	gen     uint32
}

// store records c as the mounted content for li.
func (a *contentArena) store(li *pathbind.ListIndex, c Content) {
	var slot int
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, arenaSlot{})
		slot = len(a.slots) - 1
	}
	a.slots[slot].gen++
	a.slots[slot].content = c
	li.SetArenaHandle(slot, a.slots[slot].gen)
}

// lookup returns the mounted content for li, if its handle is current.
func (a *contentArena) lookup(li *pathbind.ListIndex) (Content, bool) {
	slot, gen, ok := li.ArenaHandle()
	if !ok || slot >= len(a.slots) {
		return nil, false
	}
	s := a.slots[slot]
	if s.gen != gen || s.content == nil {
		return nil, false
	}
	return s.content, true
}

// remove detaches li's content from the arena and frees the slot.
func (a *contentArena) remove(li *pathbind.ListIndex) (Content, bool) {
	c, ok := a.lookup(li)
	if !ok {
		return nil, false
	}
	slot, _, _ := li.ArenaHandle()
	a.slots[slot].content = nil
	a.slots[slot].gen++
	a.free = append(a.free, slot)
	li.ClearArenaHandle()
	return c, true
}
