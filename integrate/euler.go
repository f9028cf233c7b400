package integrate

import (
	"time"

	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/reader"
)

// Euler is the first-order forward-Euler advection scheme: a single
// velocity sample at the particle's current position, held fixed over dt.
type Euler struct{}

// Advect implements Scheme.
func (Euler) Advect(r *reader.Reader, t time.Time, dt float64, p *particle.Particle, delta *Delta) int {
	u, v, w := r.GetVelocity(t, p)
	delta.DX = u * dt
	delta.DY = v * dt
	delta.DZ = w * dt
	return mesh.InDomain
}
