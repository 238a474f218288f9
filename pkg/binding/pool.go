package binding

// bulkConcatThreshold is the reclaim size at which the pool grows with a
// single concat instead of element pushes, avoiding pathological repeated
// array growth on mass unmounts. Tunable; not correctness-affecting.
const bulkConcatThreshold = 1000

// ContentPool is an array-backed free list of previously unmounted
// contents. Its logical size only ever grows; content objects are reused
// indefinitely.
type ContentPool struct {
	free      []Content
	highWater int
}

// Acquire returns a pooled content, or nil when the pool is empty.
func (p *ContentPool) Acquire() Content {
	n := len(p.free)
	if n == 0 {
		return nil
	}
	c := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	return c
}

// Release returns a batch of unmounted contents to the pool. An unused
// pool takes ownership of the batch outright; otherwise small batches are
// pushed one by one and large batches are merged with a single concat.
func (p *ContentPool) Release(batch []Content) {
	switch {
	case len(batch) == 0:
		return
	case p.free == nil && p.highWater == 0:
		p.free = batch
	case len(batch) >= bulkConcatThreshold:
		merged := make([]Content, len(p.free)+len(batch))
		copy(merged, p.free)
		copy(merged[len(p.free):], batch)
		p.free = merged
	default:
		for _, c := range batch {
			p.free = append(p.free, c)
		}
	}
	if len(p.free) > p.highWater {
		p.highWater = len(p.free)
	}
}

// Size returns the number of contents currently pooled.
func (p *ContentPool) Size() int {
	return len(p.free)
}

// HighWater returns the largest pooled count ever reached.
func (p *ContentPool) HighWater() int {
	return p.highWater
}
