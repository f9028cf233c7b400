// Package integrate implements the numerical integration schemes that turn
// a velocity (and, via the caller, a random-walk displacement) into a
// position increment over one time step (component E).
package integrate

import (
	"time"

	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/reader"
)

// Delta accumulates the (x1, x2, x3) displacement produced by a scheme over
// one time step.
type Delta struct {
	DX, DY, DZ float64
}

// Scheme advects a particle over [t, t+dt), writing the displacement into
// delta without mutating p. It returns mesh.InDomain on success, or the
// mesh exit flag (mesh.LandBdyCrossed, mesh.OpenBdyCrossed, mesh.BdyError)
// of whichever intermediate host lookup first failed, mirroring
// framework.go's CFL-bounded sub-stepping convention of reporting a failure
// code rather than panicking mid-integration.
type Scheme interface {
	Advect(r *reader.Reader, t time.Time, dt float64, p *particle.Particle, delta *Delta) int
}

// trial returns a copy of p displaced by (dx, dy, dz) with its host element,
// local coordinates and vertical grid variables refreshed against t, for use
// by multi-stage schemes that need an intermediate velocity sample. It does
// not mutate p.
func trial(r *reader.Reader, t time.Time, p *particle.Particle, dx, dy, dz float64) (*particle.Particle, int) {
	q := p.Copy()
	q.X1 += dx
	q.X2 += dy
	q.X3 += dz
	flag := r.FindHost(p, q)
	if flag != mesh.InDomain {
		return q, flag
	}
	r.Grid.SetLocalCoordinates(q)
	if flag := r.SetVerticalGridVars(t, q); flag != mesh.InDomain {
		return q, flag
	}
	return q, mesh.InDomain
}
