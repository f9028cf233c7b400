package integrate

import (
	"time"

	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
	"github.com/jimc101/pylag-go/reader"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classic four-stage Runge-Kutta advection scheme (spec.md
// §4.E). Each intermediate stage resamples velocity at a trial position;
// if the host search for any trial position fails (the position lies
// outside the domain, or the mesh is inconsistent) the step is abandoned
// without writing delta, and that stage's host-search flag is returned.
type RK4 struct{}

// Advect implements Scheme.
func (RK4) Advect(r *reader.Reader, t time.Time, dt float64, p *particle.Particle, delta *Delta) int {
	k1u, k1v, k1w := r.GetVelocity(t, p)

	tMid := midTime(t, dt/2)
	q2, flag := trial(r, tMid, p, k1u*dt/2, k1v*dt/2, k1w*dt/2)
	if flag != mesh.InDomain {
		return flag
	}
	k2u, k2v, k2w := r.GetVelocity(tMid, q2)

	q3, flag := trial(r, tMid, p, k2u*dt/2, k2v*dt/2, k2w*dt/2)
	if flag != mesh.InDomain {
		return flag
	}
	k3u, k3v, k3w := r.GetVelocity(tMid, q3)

	tEnd := midTime(t, dt)
	q4, flag := trial(r, tEnd, p, k3u*dt, k3v*dt, k3w*dt)
	if flag != mesh.InDomain {
		return flag
	}
	k4u, k4v, k4w := r.GetVelocity(tEnd, q4)

	weights := []float64{1, 2, 2, 1}
	us := []float64{k1u, k2u, k3u, k4u}
	vs := []float64{k1v, k2v, k3v, k4v}
	ws := []float64{k1w, k2w, k3w, k4w}

	delta.DX = floats.Dot(weights, us) * dt / 6
	delta.DY = floats.Dot(weights, vs) * dt / 6
	delta.DZ = floats.Dot(weights, ws) * dt / 6
	return mesh.InDomain
}

// midTime advances t by offsetSeconds, expressed in whatever unit the
// caller's dt uses (simulations commonly run with dt in seconds).
func midTime(t time.Time, offsetSeconds float64) time.Time {
	return t.Add(time.Duration(offsetSeconds * float64(time.Second)))
}
