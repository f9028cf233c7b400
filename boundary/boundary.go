// Package boundary implements the horizontal and vertical boundary
// condition handlers (component G): what happens to a particle's position
// when a step would carry it across a land or open boundary, or past the
// sea surface or seabed.
package boundary

import (
	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
)

// Horizontal resolves a particle whose trial move crossed a horizontal
// mesh boundary. old is the particle's last known-good state; new is the
// (out-of-domain) trial state produced by the integrator. Handle makes one
// attempt to resolve the crossing, updating new's position and host element,
// and returns the resulting host-search flag (mesh.InDomain,
// mesh.LandBdyCrossed, mesh.OpenBdyCrossed or mesh.BdyError). A flag other
// than mesh.InDomain is left for the caller to act on.
type Horizontal interface {
	Handle(g *mesh.Grid, exitFlag int, old, new *particle.Particle) int
}

// Vertical resolves a particle whose sigma coordinate has gone outside
// [-1, 0] over one step.
type Vertical interface {
	Handle(zmin, zmax float64, p *particle.Particle)
}
