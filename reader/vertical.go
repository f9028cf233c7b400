package reader

import (
	"time"

	"github.com/jimc101/pylag-go/interp"
	"github.com/jimc101/pylag-go/mesh"
	"github.com/jimc101/pylag-go/particle"
)

// sigmaBracketTol absorbs roundoff at a layer's bracket edge so a particle
// sitting exactly on a sigma level is assigned to a layer rather than
// falling through the search (spec.md §4.C).
const sigmaBracketTol = 1e-9

// SetVerticalGridVars converts p.X3 to sigma and walks the sigma layers to
// find the bracketing layer/levels, setting KLayer, KLowerLayer,
// KUpperLayer, InVerticalBoundaryLayer, OmegaLayers and OmegaInterfaces
// (spec.md §4.C). Returns mesh.BdyError if no bracket can be found.
func (r *Reader) SetVerticalGridVars(t time.Time, p *particle.Particle) int {
	host := p.HostHorizontalElem
	zmin := r.GetZmin(p)
	zmax := r.GetZmax(t, p)
	sigma := interp.CartesianToSigma(p.X3, -zmin, zmax)

	kLayer := -1
	var sigUpperLevel, sigLowerLevel float64
	for k := 0; k < r.Grid.NSiglay; k++ {
		su := r.nodalBarycentric(r.Grid.Siglev[k], host, p.Phi)
		sl := r.nodalBarycentric(r.Grid.Siglev[k+1], host, p.Phi)
		if sigma <= su+sigmaBracketTol && sigma >= sl-sigmaBracketTol {
			kLayer, sigUpperLevel, sigLowerLevel = k, su, sl
			break
		}
	}
	if kLayer == -1 {
		return mesh.BdyError
	}
	p.KLayer = kLayer
	p.OmegaInterfaces = interp.SafeLinearFraction(sigma, sigLowerLevel, sigUpperLevel)

	sigMid := func(k int) float64 {
		return r.nodalBarycentric(r.Grid.Siglay[k], host, p.Phi)
	}
	mid := sigMid(kLayer)

	switch {
	case kLayer == 0 && sigma > mid:
		p.InVerticalBoundaryLayer = true
		p.KUpperLayer, p.KLowerLayer = kLayer, kLayer
	case kLayer == r.Grid.NSiglay-1 && sigma <= mid:
		p.InVerticalBoundaryLayer = true
		p.KUpperLayer, p.KLowerLayer = kLayer, kLayer
	case sigma <= mid:
		p.InVerticalBoundaryLayer = false
		lowerMid := sigMid(kLayer + 1)
		p.KUpperLayer, p.KLowerLayer = kLayer, kLayer+1
		p.OmegaLayers = interp.SafeLinearFraction(sigma, lowerMid, mid)
	default:
		p.InVerticalBoundaryLayer = false
		upperMid := sigMid(kLayer - 1)
		p.KUpperLayer, p.KLowerLayer = kLayer-1, kLayer
		p.OmegaLayers = interp.SafeLinearFraction(sigma, mid, upperMid)
	}
	return mesh.InDomain
}
