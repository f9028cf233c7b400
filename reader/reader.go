// Package reader implements the mesh-based data reader (component C): it
// holds the immutable grid and the two time-bracket frames, and serves
// velocity, diffusivities, bathymetry, free surface and tracers at (t, x,
// y, z) by interpolation.
package reader

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"
	"github.com/jimc101/pylag-go/interp"
	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
)

// Time-direction conventions (spec.md §3 invariants).
const (
	Forward  = 1
	Backward = -1
)

// ErrVerticalGrid reports that no sigma-layer bracket can be found for a
// particle's depth — a mesh-inconsistency, fatal-for-the-step error per
// spec.md §7. SetVerticalGridVars signals this case with mesh.BdyError;
// engine.Config.Step wraps ErrVerticalGrid in the error it returns for it.
var ErrVerticalGrid = fmt.Errorf("reader: no sigma-layer bracket found for particle depth")

// Reader holds a reference to the immutable grid and to the two bracket
// frames (spec.md §4.C). It is read-only during a step and may be shared
// across worker goroutines.
type Reader struct {
	Grid   *mesh.Grid
	Source FrameSource

	// TimeDirection is Forward (+1) or Backward (-1); see spec.md §3.
	TimeDirection int

	TLast, TNext time.Time
	Last, Next   Frame
}

// NewReader constructs a Reader. direction must be Forward or Backward.
func NewReader(grid *mesh.Grid, source FrameSource, direction int) (*Reader, error) {
	if direction != Forward && direction != Backward {
		return nil, fmt.Errorf("reader: time direction must be Forward or Backward, got %d", direction)
	}
	return &Reader{Grid: grid, Source: source, TimeDirection: direction}, nil
}

// SetupDataAccess primes the reader with the bracket frames covering
// tStart. tEnd is accepted for parity with the external mediator's
// setup_data_access contract (spec.md §4.C) but is not otherwise consulted
// here — deciding how far ahead to pre-stage data is the mediator's job.
func (r *Reader) SetupDataAccess(tStart, tEnd time.Time) error {
	return r.refill(tStart)
}

func (r *Reader) refill(t time.Time) error {
	last, next, tLast, tNext, err := r.Source.LoadBracket(t)
	if err != nil {
		return fmt.Errorf("reader: loading bracket frames: %w", err)
	}
	r.Last, r.Next, r.TLast, r.TNext = last, next, tLast, tNext
	return nil
}

// tau returns the unclamped linear fraction of t between TLast and TNext.
// Used only for the bracket-membership test in inBracket, which must see
// values outside [0,1] to know a frame advance is due; every site that
// feeds a fraction into a field interpolation uses fieldTau instead.
func (r *Reader) tau(t time.Time) float64 {
	return interp.LinearFraction(
		float64(t.UnixNano()), float64(r.TLast.UnixNano()), float64(r.TNext.UnixNano()))
}

// fieldTau is tau clamped to [0,1] (spec.md §3: "every interpolation
// clamps the linear fraction... safely"), for the time-interpolation
// weight passed to LinearInterp/BarycentricInElement et al.
func (r *Reader) fieldTau(t time.Time) float64 {
	return interp.SafeLinearFraction(
		float64(t.UnixNano()), float64(r.TLast.UnixNano()), float64(r.TNext.UnixNano()))
}

// inBracket reports whether tau(t) is covered by the current bracket,
// honouring spec.md §9's "coded the same way regardless of time direction"
// design note: forward runs require tau in [0,1), backward runs (0,1].
func (r *Reader) inBracket(t time.Time) bool {
	tau := r.tau(t)
	if r.TimeDirection == Forward {
		return tau >= 0 && tau < 1
	}
	return tau > 0 && tau <= 1
}

// ReadData is the sole suspension point vis-à-vis the external mediator
// (spec.md §4.C, §5): if t falls outside the current bracket it requests a
// frame advance and re-reads all fields before returning.
func (r *Reader) ReadData(t time.Time) error {
	if r.TLast.IsZero() && r.TNext.IsZero() {
		return r.refill(t)
	}
	if r.inBracket(t) {
		return nil
	}
	return r.refill(t)
}

// FindHost implements the two-phase host search (spec.md §4.C): the O(1)
// barycentric walk first, falling back to particle tracing only when the
// walk reports an apparent exit, to distinguish a true boundary crossing
// from a walk failure through a concave neighbourhood.
func (r *Reader) FindHost(old, new *particle.Particle) int {
	flag, host := r.Grid.FindHostUsingBarycentricWalk(new, old.HostHorizontalElem)
	if flag == mesh.InDomain {
		new.HostHorizontalElem = host
		return mesh.InDomain
	}
	return r.Grid.FindHostUsingParticleTracing(old, new)
}

func (r *Reader) nodalBarycentric(field []float64, host int, phi [3]float64) float64 {
	n := r.Grid.NodesOf(host)
	vals := [3]float64{field[n[0]], field[n[1]], field[n[2]]}
	return interp.BarycentricInElement(vals, phi)
}

func (r *Reader) nodalBarycentricLayer(arr *sparse.DenseArray, layer, host int, phi [3]float64) float64 {
	n := r.Grid.NodesOf(host)
	vals := [3]float64{arr.Get(layer, n[0]), arr.Get(layer, n[1]), arr.Get(layer, n[2])}
	return interp.BarycentricInElement(vals, phi)
}

func (r *Reader) elemCentroidValues(arr *sparse.DenseArray, layer, host int) (xs, ys, vals [4]float64, n int) {
	xs[0], ys[0] = r.Grid.Xc[host], r.Grid.Yc[host]
	vals[0] = arr.Get(layer, host)
	n = 1
	for edge := 0; edge < 3; edge++ {
		nb := r.Grid.NeighbourAcross(host, edge)
		if nb < 0 {
			continue
		}
		xs[n], ys[n] = r.Grid.Xc[nb], r.Grid.Yc[nb]
		vals[n] = arr.Get(layer, nb)
		n++
	}
	return
}

// GetZmin returns the (pure-spatial) interpolated bathymetry -h(x,y) at
// the particle's host element.
func (r *Reader) GetZmin(p *particle.Particle) float64 {
	return interp.ZMinFromDepth(r.nodalBarycentric(r.Grid.H, p.HostHorizontalElem, p.Phi))
}

// GetZmax returns the free-surface elevation zeta(t,x,y): linear-in-time
// between the bracket frames, then barycentric-in-space.
func (r *Reader) GetZmax(t time.Time, p *particle.Particle) float64 {
	tau := r.fieldTau(t)
	last := r.nodalBarycentric(r.Last.Zeta, p.HostHorizontalElem, p.Phi)
	next := r.nodalBarycentric(r.Next.Zeta, p.HostHorizontalElem, p.Phi)
	return interp.LinearInterp(tau, last, next)
}
