package watch

import (
	"os"
	"time"
)

// Detector reports whether a file has stopped growing. Two size reads
// separated by the probe interval stand in for "download finished" -
// a heuristic, not a lock: a download that pauses between writes can
// pass, which we accept in exchange for never locking files against
// other processes.
type Detector struct {
	probe time.Duration
	clock Clock
}

// NewDetector builds a Detector probing on the wall clock
func NewDetector(probe time.Duration) *Detector {
	return NewDetectorWithClock(probe, systemClock{})
}

// NewDetectorWithClock builds a Detector on an explicit clock
func NewDetectorWithClock(probe time.Duration, clock Clock) *Detector {
	return &Detector{probe: probe, clock: clock}
}

// Stable returns true iff path's size is unchanged across two reads
// separated by the probe interval. A file that cannot be read on either
// side of the wait counts as not stable; vanishing mid-probe is the
// normal fate of a file still being finalized by the browser. Closing
// cancel aborts the wait and reports false.
func (d *Detector) Stable(path string, cancel <-chan struct{}) bool {
	first, err := os.Stat(path)
	if err != nil {
		return false
	}

	select {
	case <-d.clock.After(d.probe):
	case <-cancel:
		return false
	}

	second, err := os.Stat(path)
	if err != nil {
		return false
	}

	return first.Size() == second.Size()
}
