package binding

import (
	"sync/atomic"
	"time"
)

// ReconcilerStats counts reconciler work. Counters are atomic so snapshots
// may be read from other goroutines (the inspector polls them) while the
// reconciler runs on the engine's task loop.
type ReconcilerStats struct {
	poolHits  atomic.Int64
	minted    atomic.Int64
	reclaimed atomic.Int64

	fastClears      atomic.Int64
	fastBulkAppends atomic.Int64
	generalPasses   atomic.Int64
	reorders        atomic.Int64
	overwrites      atomic.Int64
}

// ReconcilerSnapshot is a point-in-time copy of the counters.
type ReconcilerSnapshot struct {
	PoolHits  int64 `json:"poolHits" yaml:"poolHits"`
	Minted    int64 `json:"minted" yaml:"minted"`
	Reclaimed int64 `json:"reclaimed" yaml:"reclaimed"`

	FastClears      int64 `json:"fastClears" yaml:"fastClears"`
	FastBulkAppends int64 `json:"fastBulkAppends" yaml:"fastBulkAppends"`
	GeneralPasses   int64 `json:"generalPasses" yaml:"generalPasses"`
	Reorders        int64 `json:"reorders" yaml:"reorders"`
	Overwrites      int64 `json:"overwrites" yaml:"overwrites"`

	CollectedAt time.Time `json:"collectedAt" yaml:"collectedAt"`
}

// Snapshot copies the counters.
func (s *ReconcilerStats) Snapshot() ReconcilerSnapshot {
	return ReconcilerSnapshot{
		PoolHits:        s.poolHits.Load(),
		Minted:          s.minted.Load(),
		Reclaimed:       s.reclaimed.Load(),
		FastClears:      s.fastClears.Load(),
		FastBulkAppends: s.fastBulkAppends.Load(),
		GeneralPasses:   s.generalPasses.Load(),
		Reorders:        s.reorders.Load(),
		Overwrites:      s.overwrites.Load(),
		CollectedAt:     time.Now(),
	}
}

func (s *ReconcilerStats) addPoolHits(n int64) {
	if s != nil {
		s.poolHits.Add(n)
	}
}

func (s *ReconcilerStats) addMinted(n int64) {
	if s != nil {
		s.minted.Add(n)
	}
}

func (s *ReconcilerStats) addReclaimed(n int64) {
	if s != nil {
		s.reclaimed.Add(n)
	}
}

func (s *ReconcilerStats) incFastClears() {
	if s != nil {
		s.fastClears.Add(1)
	}
}

func (s *ReconcilerStats) incFastBulkAppends() {
	if s != nil {
		s.fastBulkAppends.Add(1)
	}
}

func (s *ReconcilerStats) incGeneralPasses() {
	if s != nil {
		s.generalPasses.Add(1)
	}
}

func (s *ReconcilerStats) addReorders(n int64) {
	if s != nil {
		s.reorders.Add(n)
	}
}

func (s *ReconcilerStats) addOverwrites(n int64) {
	if s != nil {
		s.overwrites.Add(n)
	}
}
