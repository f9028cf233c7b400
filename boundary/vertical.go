package boundary

import "github.com/jimc101/pylag-go/particle"

// VerticalReflecting mirrors a particle that has crossed the sea surface (z >
// zmax) or the seabed (z < zmin) back into the water column. Applying it
// repeatedly to a particle already inside [zmin, zmax] is a no-op.
type VerticalReflecting struct{}

// Handle implements Vertical.
func (VerticalReflecting) Handle(zmin, zmax float64, p *particle.Particle) {
	for p.X3 > zmax || p.X3 < zmin {
		switch {
		case p.X3 > zmax:
			p.X3 = 2*zmax - p.X3
		case p.X3 < zmin:
			p.X3 = 2*zmin - p.X3
		}
	}
}

// VerticalAbsorbing marks a particle that has crossed the sea surface or seabed as
// beached/settled rather than reflecting it. IsBeached follows
// particle.StatusError's convention of a nonzero sentinel distinguishing
// the cause.
type VerticalAbsorbing struct{}

const (
	beachedAtSurface = 1
	beachedAtSeabed  = 2
)

// Handle implements Vertical.
func (VerticalAbsorbing) Handle(zmin, zmax float64, p *particle.Particle) {
	switch {
	case p.X3 > zmax:
		p.X3 = zmax
		p.IsBeached = beachedAtSurface
	case p.X3 < zmin:
		p.X3 = zmin
		p.IsBeached = beachedAtSeabed
	}
}
