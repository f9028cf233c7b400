package boundary

import (
	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
)

// Reflecting mirrors a particle's trial position across the land boundary
// edge it crossed, preserving the component of its displacement parallel
// to the edge and inverting the perpendicular component (spec.md §8
// invariant 8). Applying it twice to an already-reflected, in-domain
// particle is a no-op (invariant 7), since a particle that no longer
// crosses the boundary is simply returned unchanged by the caller's exit
// check before Handle is ever invoked again.
//
// A single Handle call is one reflect-then-reclassify attempt, not the
// full resolution: a reflected point can itself cross another land edge
// (a concave corner) or escape through an open boundary, so Handle
// reports whatever mesh.FindHostUsingParticleTracing finds —
// InDomain, LandBdyCrossed or OpenBdyCrossed — instead of forcing
// success. Iterating Handle up to a bounded cap, and only then falling
// back to a centroid snap, is the caller's job (spec.md §4.G, §4.H step
// 8, §7's "land-reflection cap exceeded" case).
type Reflecting struct{}

// Handle implements Horizontal. It is only ever called with
// exitFlag == mesh.LandBdyCrossed.
func (Reflecting) Handle(g *mesh.Grid, exitFlag int, old, new *particle.Particle) int {
	x1, y1, x2, y2, xi, yi := g.GetBoundaryIntersection(old, new)
	rx, ry := reflectPoint(new.X1, new.X2, x1, y1, x2, y2, xi, yi)
	new.X1, new.X2 = rx, ry

	host := g.FindHostUsingParticleTracing(old, new)
	if host == mesh.InDomain {
		g.SetLocalCoordinates(new)
	}
	return host
}

// reflectPoint mirrors (px, py) across the line through (x1,y1)-(x2,y2),
// using the intersection point (xi, yi) as the reflection's anchor so that
// floating point error in the edge direction doesn't translate the point
// off the boundary line.
func reflectPoint(px, py, x1, y1, x2, y2, xi, yi float64) (float64, float64) {
	ex, ey := x2-x1, y2-y1
	norm := ex*ex + ey*ey
	if norm == 0 {
		return px, py
	}
	// Vector from the intersection point to the trial position.
	vx, vy := px-xi, py-yi
	// Projection of v onto the edge direction.
	t := (vx*ex + vy*ey) / norm
	projX, projY := t*ex, t*ey
	// Perpendicular component is v minus its projection; reflecting
	// inverts that component and keeps the parallel one.
	perpX, perpY := vx-projX, vy-projY
	return xi + projX - perpX, yi + projY - perpY
}

// Restoring nudges an escaping particle back towards the domain interior
// by a fixed fraction of its escape distance rather than a true reflection.
// This is a documented partial implementation: PyLag's restoring boundary
// condition is tuned per-application by a restoration timescale that this
// port does not attempt to reproduce. It is provided so a configuration
// that names "restoring" does not silently fall back to reflection.
type Restoring struct {
	// Fraction is applied to the escape vector (from the crossed edge's
	// intersection point to the trial position), and the corrected position
	// is the intersection point minus that scaled vector. With 1.0 the trial
	// position is mirrored through the intersection point, which matches
	// Reflecting's endpoint only when the escape vector is perpendicular to
	// the edge. Values outside (0, 1] are treated as 1.0.
	Fraction float64
}

// Handle implements Horizontal. Like Reflecting, one call is one
// restore-then-reclassify attempt: it reports InDomain, LandBdyCrossed or
// OpenBdyCrossed rather than forcing success, leaving the bounded-retry
// and centroid-snap fallback to the caller.
func (r Restoring) Handle(g *mesh.Grid, exitFlag int, old, new *particle.Particle) int {
	_, _, _, _, xi, yi := g.GetBoundaryIntersection(old, new)
	frac := r.Fraction
	if frac <= 0 || frac > 1 {
		frac = 1
	}
	new.X1 = xi + frac*(xi-new.X1)
	new.X2 = yi + frac*(yi-new.X2)
	host := g.FindHostUsingParticleTracing(old, new)
	if host == mesh.InDomain {
		g.SetLocalCoordinates(new)
	}
	return host
}

// None leaves an open-boundary-crossing particle exactly where the
// integrator left it, marking it as having escaped the domain. The caller
// (engine) is responsible for excluding escaped particles from further
// advection.
type None struct{}

// Handle implements Horizontal.
func (None) Handle(g *mesh.Grid, exitFlag int, old, new *particle.Particle) int {
	new.InDomain = false
	return mesh.OpenBdyCrossed
}
