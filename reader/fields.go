package reader

import (
	"fmt"
	"time"

	"github.com/ctessum/sparse"
	"github.com/jimc101/pylag-go/interp"
	"github.com/jimc101/pylag-go/particle"
)

// velocityComponent time-interpolates one velocity component at layer
// across the host element and its valid neighbours (those with Nbe >= 0),
// then Shepard-interpolates (p=2) the result to the particle's (x1, x2).
func (r *Reader) velocityComponent(last, next *sparse.DenseArray, layer int, p *particle.Particle, tau float64) float64 {
	host := p.HostHorizontalElem
	xsLast, ysLast, valsLast, n := r.elemCentroidValues(last, layer, host)
	_, _, valsNext, _ := r.elemCentroidValues(next, layer, host)

	var blended [4]float64
	for i := 0; i < n; i++ {
		blended[i] = interp.LinearInterp(tau, valsLast[i], valsNext[i])
	}
	return interp.ShepardInterpolation(p.X1, p.X2, xsLast[:], ysLast[:], blended[:], n)
}

// GetVelocity returns the time- and space-interpolated (u, v, w) at the
// particle's position, blending the two bounding sigma layers by
// OmegaLayers unless the particle sits in a vertical boundary layer, in
// which case the boundary layer's value alone is used (spec.md §4.C).
func (r *Reader) GetVelocity(t time.Time, p *particle.Particle) (u, v, w float64) {
	tau := r.fieldTau(t)
	if p.InVerticalBoundaryLayer {
		return r.velocityComponent(r.Last.U, r.Next.U, p.KLayer, p, tau),
			r.velocityComponent(r.Last.V, r.Next.V, p.KLayer, p, tau),
			r.velocityComponent(r.Last.W, r.Next.W, p.KLayer, p, tau)
	}
	uLower := r.velocityComponent(r.Last.U, r.Next.U, p.KLowerLayer, p, tau)
	uUpper := r.velocityComponent(r.Last.U, r.Next.U, p.KUpperLayer, p, tau)
	vLower := r.velocityComponent(r.Last.V, r.Next.V, p.KLowerLayer, p, tau)
	vUpper := r.velocityComponent(r.Last.V, r.Next.V, p.KUpperLayer, p, tau)
	wLower := r.velocityComponent(r.Last.W, r.Next.W, p.KLowerLayer, p, tau)
	wUpper := r.velocityComponent(r.Last.W, r.Next.W, p.KUpperLayer, p, tau)
	u = interp.LinearInterp(p.OmegaLayers, uLower, uUpper)
	v = interp.LinearInterp(p.OmegaLayers, vLower, vUpper)
	w = interp.LinearInterp(p.OmegaLayers, wLower, wUpper)
	return
}

func (r *Reader) nodalLayerBlend(last, next *sparse.DenseArray, layer int, p *particle.Particle, tau float64) float64 {
	lastVal := r.nodalBarycentricLayer(last, layer, p.HostHorizontalElem, p.Phi)
	nextVal := r.nodalBarycentricLayer(next, layer, p.HostHorizontalElem, p.Phi)
	return interp.LinearInterp(tau, lastVal, nextVal)
}

// GetHorizontalEddyViscosity returns Ah at the particle, blended between
// its bounding layers exactly like GetVelocity (spec.md §4.C).
func (r *Reader) GetHorizontalEddyViscosity(t time.Time, p *particle.Particle) float64 {
	tau := r.fieldTau(t)
	if p.InVerticalBoundaryLayer {
		return r.nodalLayerBlend(r.Last.Viscofh, r.Next.Viscofh, p.KLayer, p, tau)
	}
	lower := r.nodalLayerBlend(r.Last.Viscofh, r.Next.Viscofh, p.KLowerLayer, p, tau)
	upper := r.nodalLayerBlend(r.Last.Viscofh, r.Next.Viscofh, p.KUpperLayer, p, tau)
	return interp.LinearInterp(p.OmegaLayers, lower, upper)
}

// GetHorizontalEddyViscosityDerivative returns (dAh/dx, dAh/dy) using the
// analytic barycentric-basis gradients from the grid, applied to the
// (time-interpolated) nodal Ah values on each bounding layer, blended by
// OmegaLayers (spec.md §4.C).
func (r *Reader) GetHorizontalEddyViscosityDerivative(t time.Time, p *particle.Particle) (dAhDx, dAhDy float64) {
	tau := r.fieldTau(t)
	grad := func(layer int) (float64, float64) {
		n := r.Grid.NodesOf(p.HostHorizontalElem)
		var vals [3]float64
		for i, node := range n {
			vals[i] = interp.LinearInterp(tau,
				r.Last.Viscofh.Get(layer, node), r.Next.Viscofh.Get(layer, node))
		}
		dPhiDx, dPhiDy := r.Grid.GradPhi(p.HostHorizontalElem)
		var gx, gy float64
		for i := 0; i < 3; i++ {
			gx += vals[i] * dPhiDx[i]
			gy += vals[i] * dPhiDy[i]
		}
		return gx, gy
	}
	if p.InVerticalBoundaryLayer {
		return grad(p.KLayer)
	}
	gxLower, gyLower := grad(p.KLowerLayer)
	gxUpper, gyUpper := grad(p.KUpperLayer)
	return interp.LinearInterp(p.OmegaLayers, gxLower, gxUpper),
		interp.LinearInterp(p.OmegaLayers, gyLower, gyUpper)
}

// GetVerticalEddyDiffusivity returns Kh at the particle, interpolated on
// sigma LEVELS (not layers): the two levels bracketing the particle are
// p.KLayer (upper) and p.KLayer+1 (lower), blended by OmegaInterfaces
// (spec.md §4.C).
func (r *Reader) GetVerticalEddyDiffusivity(t time.Time, p *particle.Particle) float64 {
	tau := r.fieldTau(t)
	lower := r.nodalLayerBlend(r.Last.Kh, r.Next.Kh, p.KLayer+1, p, tau)
	upper := r.nodalLayerBlend(r.Last.Kh, r.Next.Kh, p.KLayer, p, tau)
	return interp.LinearInterp(p.OmegaInterfaces, lower, upper)
}

// khAndZAtLevel returns the (time- and space-interpolated) diffusivity and
// geometric depth at sigma level k.
func (r *Reader) khAndZAtLevel(k int, p *particle.Particle, tau, zmin, zmax float64) (kh, z float64) {
	kh = r.nodalLayerBlend(r.Last.Kh, r.Next.Kh, k, p, tau)
	sigma := r.nodalBarycentric(r.Grid.Siglev[k], p.HostHorizontalElem, p.Phi)
	z = interp.SigmaToCartesian(sigma, -zmin, zmax)
	return
}

// GetVerticalEddyDiffusivityDerivative returns dKh/dz via central
// differences between bracketing sigma levels converted to geometric z,
// with one-sided differences at the top-most/bottom-most levels, blended
// between the "upper" and "lower" finite differences by OmegaInterfaces
// (spec.md §4.C) — this drift term is what Visser's random walk needs to
// preserve the well-mixed condition.
func (r *Reader) GetVerticalEddyDiffusivityDerivative(t time.Time, p *particle.Particle) float64 {
	tau := r.fieldTau(t)
	zmin := r.GetZmin(p)
	zmax := r.GetZmax(t, p)

	diffAt := func(k int) float64 {
		switch {
		case k == 0:
			kh0, z0 := r.khAndZAtLevel(0, p, tau, zmin, zmax)
			kh1, z1 := r.khAndZAtLevel(1, p, tau, zmin, zmax)
			return (kh0 - kh1) / (z0 - z1)
		case k == r.Grid.NSiglev-1:
			khN1, zN1 := r.khAndZAtLevel(r.Grid.NSiglev-2, p, tau, zmin, zmax)
			khN, zN := r.khAndZAtLevel(r.Grid.NSiglev-1, p, tau, zmin, zmax)
			return (khN1 - khN) / (zN1 - zN)
		default:
			khUp, zUp := r.khAndZAtLevel(k-1, p, tau, zmin, zmax)
			khDown, zDown := r.khAndZAtLevel(k+1, p, tau, zmin, zmax)
			return (khUp - khDown) / (zUp - zDown)
		}
	}

	upper := diffAt(p.KLayer)
	lower := diffAt(p.KLayer + 1)
	return interp.LinearInterp(p.OmegaInterfaces, lower, upper)
}

// GetEnvironmentalVariable is a generic interpolator for nodal,
// sigma-layer tracer fields (e.g. temperature, salinity), following the
// same bounding-layer blend rule as GetHorizontalEddyViscosity.
func (r *Reader) GetEnvironmentalVariable(name string, t time.Time, p *particle.Particle) (float64, error) {
	last, ok := r.Last.Tracers[name]
	if !ok {
		return 0, fmt.Errorf("reader: unknown environmental variable %q", name)
	}
	next, ok := r.Next.Tracers[name]
	if !ok {
		return 0, fmt.Errorf("reader: environmental variable %q missing from next frame", name)
	}
	tau := r.fieldTau(t)
	if p.InVerticalBoundaryLayer {
		return r.nodalLayerBlend(last, next, p.KLayer, p, tau), nil
	}
	lo := r.nodalLayerBlend(last, next, p.KLowerLayer, p, tau)
	hi := r.nodalLayerBlend(last, next, p.KUpperLayer, p, tau)
	return interp.LinearInterp(p.OmegaLayers, lo, hi), nil
}

// IsWet reports whether the particle's host element is wet in both
// bracket frames. If either frame flags it dry, or the two frames
// disagree, the conservative answer (dry, 0) is returned. Elements with no
// WetCells data (OCEAN_CIRCULATION_MODEL.has_is_wet == false) are always
// wet. This is advisory only: it does not by itself arrest motion.
func (r *Reader) IsWet(p *particle.Particle) int {
	host := p.HostHorizontalElem
	if r.Last.WetCells != nil && r.Last.WetCells[host] == 0 {
		return 0
	}
	if r.Next.WetCells != nil && r.Next.WetCells[host] == 0 {
		return 0
	}
	return 1
}
