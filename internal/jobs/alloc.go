package jobs

import (
	"sync"
)

// hlsIDBase splits the job id space: ids below it are direct file
// transfers, ids at or above it are HLS transfers. External cancel
// handlers route on this threshold alone, so it must not change.
const hlsIDBase = 1000

// Allocator hands out process-unique job ids from two disjoint
// numeric ranges, one per job kind.
type Allocator struct {
	mu       sync.Mutex
	nextFile int64
	nextHLS  int64
}

// NewAllocator creates an allocator with both ranges at their start.
func NewAllocator() *Allocator {
	return &Allocator{nextFile: 1, nextHLS: hlsIDBase}
}

// Next returns the next id for the given kind.
// The file range holds hlsIDBase-1 ids per process; exhausting it
// returns ErrIDExhausted rather than bleeding into the HLS range.
func (a *Allocator) Next(kind Kind) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if kind == KindHLS {
		id := a.nextHLS
		a.nextHLS++
		return id, nil
	}

	if a.nextFile >= hlsIDBase {
		return 0, ErrIDExhausted
	}
	id := a.nextFile
	a.nextFile++
	return id, nil
}

// KindForID routes a bare job id to its kind by numeric range. This is
// the contract the external cancel surface depends on; internal code
// uses the explicit Kind tag on the job record instead.
func KindForID(id int64) Kind {
	if id >= hlsIDBase {
		return KindHLS
	}
	return KindFile
}
