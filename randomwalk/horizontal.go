package randomwalk

import (
	"math"
	"math/rand"
	"time"

	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/reader"
)

// NaiveHorizontal is the zeroth-order horizontal random walk: it treats Ah
// as locally constant and ignores its spatial gradient, drawing an
// independent Gaussian displacement in each of x and y.
type NaiveHorizontal struct{}

// Displace implements HorizontalModel.
func (NaiveHorizontal) Displace(r *reader.Reader, t time.Time, dt float64, p *particle.Particle, rng *rand.Rand) (dx, dy float64) {
	ah := r.GetHorizontalEddyViscosity(t, p)
	sigma := math.Sqrt(2 * ah * dt)
	return sigma * normalDraw(rng), sigma * normalDraw(rng)
}

// VisserHorizontal is the first-order-correct horizontal random walk: it
// adds the deterministic pseudo-velocity dAh/dx_i (the gradient of the
// diffusivity field) to the advective displacement before drawing the
// stochastic term, so that a uniformly seeded ensemble in a spatially
// varying Ah field relaxes to a uniform concentration rather than piling up
// where Ah is small.
type VisserHorizontal struct{}

// Displace implements HorizontalModel.
func (VisserHorizontal) Displace(r *reader.Reader, t time.Time, dt float64, p *particle.Particle, rng *rand.Rand) (dx, dy float64) {
	ah := r.GetHorizontalEddyViscosity(t, p)
	dAhDx, dAhDy := r.GetHorizontalEddyViscosityDerivative(t, p)
	sigma := math.Sqrt(2 * ah * dt)
	dx = dAhDx*dt + sigma*normalDraw(rng)
	dy = dAhDy*dt + sigma*normalDraw(rng)
	return
}
