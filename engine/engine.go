// Package engine wires the mesh, reader, integrator, random-walk and
// boundary-condition components into the per-particle, per-step pipeline,
// and dispatches that pipeline across a worker pool (component H).
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jimc101/pylag-go/boundary"
	"github.com/jimc101/pylag-go/integrate"
	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/randomwalk"
	"github.com/jimc101/pylag-go/reader"
)

// maxLandBoundaryIterations bounds the reflect/reclassify loop a land
// boundary crossing triggers, guarding against a corner-trap infinite loop
// (spec.md §4.G, §7).
const maxLandBoundaryIterations = 10

// Config bundles the one instance of each component needed to advance a
// particle through a single time step. All fields are read-only once a run
// starts and may be shared across worker goroutines; the Reader itself
// holds the only mutable, run-wide state (the current bracket frames), and
// is refreshed once per step before workers are dispatched.
type Config struct {
	Reader *reader.Reader

	Advection  integrate.Scheme
	Horizontal randomwalk.HorizontalModel // nil disables horizontal random walk
	Vertical   randomwalk.VerticalModel   // nil disables vertical random walk

	HorizontalBoundary boundary.Horizontal
	VerticalBoundary   boundary.Vertical
}

// Step advances one particle from t to t+dt in place. p must already carry
// a valid HostHorizontalElem, Phi and vertical grid state on entry (i.e.
// either just Initialized, or left in a consistent state by a prior Step).
// It does nothing to particles with InDomain == false or IsBeached != 0.
func (c *Config) Step(t time.Time, dt float64, p *particle.Particle, rng *rand.Rand) error {
	if !p.InDomain || p.IsBeached != 0 {
		return nil
	}

	var adv integrate.Delta
	if hostErr := c.Advection.Advect(c.Reader, t, dt, p, &adv); hostErr != mesh.InDomain {
		if hostErr == mesh.BdyError {
			return fmt.Errorf("engine: particle %d: host search failed during advection (mesh inconsistency)", p.ID)
		}
		// An intermediate stage of the integrator left the domain: the
		// particle is flagged out of domain and no displacement is
		// committed.
		p.InDomain = false
		return nil
	}

	dx, dy, dz := adv.DX, adv.DY, adv.DZ
	if c.Horizontal != nil {
		hx, hy := c.Horizontal.Displace(c.Reader, t, dt, p, rng)
		dx += hx
		dy += hy
	}
	if c.Vertical != nil {
		dz += c.Vertical.Displace(c.Reader, t, dt, p, rng)
	}

	trial := p.Copy()
	trial.X1 += dx
	trial.X2 += dy
	trial.X3 += dz

	hostFlag := c.Reader.FindHost(p, trial)
	switch hostFlag {
	case mesh.LandBdyCrossed:
		// spec.md §4.H step 8 / §4.G: "While flag == LAND: apply BC;
		// re-find_host. Loop cap applies." A single Handle call only
		// attempts one reflect-then-reclassify; the reflected point can
		// itself re-cross land (a concave corner), so keep applying the
		// boundary condition and reclassifying until it resolves to
		// InDomain or OpenBdyCrossed, up to a bounded cap.
		iterations := 0
		for hostFlag == mesh.LandBdyCrossed && iterations < maxLandBoundaryIterations {
			if c.HorizontalBoundary == nil {
				return fmt.Errorf("engine: particle %d crossed a land boundary with no horizontal boundary condition configured", p.ID)
			}
			hostFlag = c.HorizontalBoundary.Handle(c.Reader.Grid, hostFlag, p, trial)
			iterations++
		}
		switch hostFlag {
		case mesh.LandBdyCrossed:
			// Loop cap exceeded: rare corner trap (spec.md §7) — snap to
			// the last interior host's centroid (already left in
			// trial.HostHorizontalElem by the final failed Handle call)
			// rather than keep reflecting.
			c.Reader.Grid.SetDefaultLocation(trial)
		case mesh.OpenBdyCrossed:
			// A land reflection carried the particle out through an open
			// boundary instead of back onto land: a genuine escape.
			trial.InDomain = false
		case mesh.BdyError:
			return fmt.Errorf("engine: particle %d: host search failed (mesh inconsistency)", p.ID)
		}
	case mesh.OpenBdyCrossed:
		trial.InDomain = false
	case mesh.BdyError:
		return fmt.Errorf("engine: particle %d: host search failed (mesh inconsistency)", p.ID)
	default:
		c.Reader.Grid.SetLocalCoordinates(trial)
	}

	if trial.InDomain {
		tNext := t.Add(toDuration(dt))
		zmin := c.Reader.GetZmin(trial)
		zmax := c.Reader.GetZmax(tNext, trial)
		if (trial.X3 < zmin || trial.X3 > zmax) && c.VerticalBoundary != nil {
			c.VerticalBoundary.Handle(zmin, zmax, trial)
		}
		if flag := c.Reader.SetVerticalGridVars(tNext, trial); flag != mesh.InDomain {
			return fmt.Errorf("engine: particle %d: %w after step", p.ID, reader.ErrVerticalGrid)
		}
	}

	*p = *trial
	return nil
}

func toDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
