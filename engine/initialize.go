package engine

import (
	"fmt"
	"time"

	"github.com/jimc101/pylag-go/interp"
	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/reader"
)

// SeedingError reports a particle whose release position could not be
// placed on the mesh (spec.md §7's "Seeding error" fatal-for-the-particle
// case): out-of-domain coordinates, a depth outside the water column, or a
// mesh inconsistency during host search.
type SeedingError struct {
	GroupID, Index int
	Reason         string
}

func (e *SeedingError) Error() string {
	return fmt.Sprintf("engine: seeding error for group %d particle %d: %s", e.GroupID, e.Index, e.Reason)
}

// Initialize places the bare particles from seed.Particles() onto the
// mesh at time t: it resolves each particle's host element by global
// search, interprets its depth coordinate (Cartesian or sigma) against the
// mesh's bathymetry and the reader's current free surface, and populates
// its local coordinates and vertical grid state. Particles that cannot be
// placed are dropped and reported via errs, in release order; the
// returned slice holds only the particles that were placed successfully.
func Initialize(r *reader.Reader, seed *particle.Seed, t time.Time) (placed []particle.Particle, errs []error) {
	raw := seed.Particles()
	placed = make([]particle.Particle, 0, len(raw))
	for i := range raw {
		p := raw[i]
		host := r.Grid.FindHostUsingGlobalSearch(p.X1, p.X2)
		if host < 0 {
			errs = append(errs, &SeedingError{GroupID: p.GroupID, Index: i, Reason: "release position is outside the mesh domain"})
			continue
		}
		p.HostHorizontalElem = host
		p.Phi = r.Grid.Barycentric(host, p.X1, p.X2)
		r.Grid.SetLocalCoordinates(&p)

		zmin := r.GetZmin(&p)
		zmax := r.GetZmax(t, &p)
		if seed.DepthCoordinates == particle.DepthSigma {
			p.X3 = interp.SigmaToCartesian(p.X3, -zmin, zmax)
		} else {
			p.X3 += zmax
		}
		if p.X3 < zmin || p.X3 > zmax {
			errs = append(errs, &SeedingError{GroupID: p.GroupID, Index: i, Reason: fmt.Sprintf("release depth %.3f is outside the water column [%.3f, %.3f]", p.X3, zmin, zmax)})
			continue
		}

		if flag := r.SetVerticalGridVars(t, &p); flag != mesh.InDomain {
			errs = append(errs, &SeedingError{GroupID: p.GroupID, Index: i, Reason: "no sigma-layer bracket found for release depth"})
			continue
		}
		p.InDomain = true
		placed = append(placed, p)
	}
	return placed, errs
}
