package pathbind

import (
	"context"
	"sync"
)

// UpdateActivityTracker tracks whether any update cycle is in flight.
// Callers that must know when the system has quiesced (for example to
// release external resources) wait on it.
type UpdateActivityTracker struct {
	mu      sync.Mutex
	count   int
	waiters []chan struct{}
}

// NewUpdateActivityTracker creates an idle tracker.
func NewUpdateActivityTracker() *UpdateActivityTracker {
	return &UpdateActivityTracker{}
}

// Begin marks an update cycle as started.
func (t *UpdateActivityTracker) Begin() {
	t.mu.Lock()
	t.count++
	t.mu.Unlock()
}

// End marks an update cycle as finished. When the last in-flight cycle
// ends, all waiters are released.
func (t *UpdateActivityTracker) End() {
	t.mu.Lock()
	t.count--
	var release []chan struct{}
	if t.count == 0 {
		release = t.waiters
		t.waiters = nil
	}
	t.mu.Unlock()

	for _, ch := range release {
		close(ch)
	}
}

// IsUpdating reports whether any update cycle is in flight.
func (t *UpdateActivityTracker) IsUpdating() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count > 0
}

// Wait blocks until the system quiesces or ctx is cancelled. Returns
// immediately when nothing is in flight.
func (t *UpdateActivityTracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	if t.count == 0 {
		t.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	t.waiters = append(t.waiters, ch)
	t.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
