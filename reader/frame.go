package reader

import (
	"time"

	"github.com/ctessum/sparse"
)

// Frame is one bracket snapshot of the time-varying ocean-model fields
// (spec.md §3 "Time-varying fields"). All element-indexed arrays are
// [NSiglay][NElems]; all node-indexed arrays are [NSiglev or
// NSiglay][NNodes].
type Frame struct {
	Zeta []float64 // [NNodes] free-surface elevation

	U, V, W *sparse.DenseArray // [NSiglay, NElems], w in geometric m/s (not sigma-velocity)
	Kh      *sparse.DenseArray // [NSiglev, NNodes]
	Viscofh *sparse.DenseArray // [NSiglay, NNodes]

	// WetCells is optional (nil when OCEAN_CIRCULATION_MODEL.has_is_wet is
	// false); 0/1 per element.
	WetCells []int

	// Tracers holds optional nodal, sigma-layer fields keyed by name
	// (e.g. "thetao", "so"), each shaped [NSiglay, NNodes] like Viscofh.
	Tracers map[string]*sparse.DenseArray
}

// FrameSource is the external mediator boundary (spec.md §1): the sole
// collaborator responsible for buffering the two consecutive input frames
// that bracket the current simulation time. The core never performs file
// I/O itself; it only calls this interface.
type FrameSource interface {
	// LoadBracket returns the two frames that bracket t, along with their
	// timestamps, refilling from disk/network as needed.
	LoadBracket(t time.Time) (last, next Frame, tLast, tNext time.Time, err error)
}
