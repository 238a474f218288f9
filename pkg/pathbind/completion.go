package pathbind

import (
	"context"
	"sync"

	"github.com/pathbind-dev/pathbind/internal/errors"
)

// Completion is the completion signal of one render batch. The scheduler
// resolves it in a deferred call so the batch terminates deterministically
// even when rendering fails.
type Completion struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewCompletion creates an unresolved completion signal.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Resolve marks the batch finished. Only the first call wins. Resolving a
// signal that was never armed means the scheduler's bookkeeping is
// inconsistent and panics with PB106.
func (c *Completion) Resolve(err error) {
	if c == nil || c.done == nil {
		panic(errors.New("PB106"))
	}
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Done returns a channel closed when the batch finishes.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Err returns the batch error after Done is closed.
func (c *Completion) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Wait blocks until the batch finishes or ctx is cancelled.
func (c *Completion) Wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
