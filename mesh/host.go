package mesh

import "github.com/jimc101/pylag-go/particle"

// FindHostUsingBarycentricWalk starts from firstGuess and walks the mesh by
// stepping across the edge opposite the most-negative barycentric
// coordinate, until a triangle containing (p.X1, p.X2) is found or a
// boundary is crossed. It implements the "check-then-walk" semantics
// spec.md §9 describes as the baseline resolution of its Open Question:
// the guess is checked first and the walk only moves away from it when the
// guess itself fails the barycentric test.
func (g *Grid) FindHostUsingBarycentricWalk(p *particle.Particle, firstGuess int) (flag int, host int) {
	hopLimit := g.NElems
	host = firstGuess
	for hop := 0; hop < hopLimit; hop++ {
		eps := g.epsilon(host)
		phi := g.Barycentric(host, p.X1, p.X2)
		if phi[0] >= -eps && phi[1] >= -eps && phi[2] >= -eps {
			return InDomain, host
		}
		// Step across the edge opposite the most-negative coordinate.
		worst := 0
		for i := 1; i < 3; i++ {
			if phi[i] < phi[worst] {
				worst = i
			}
		}
		next := g.Nbe[worst][host]
		switch next {
		case landBoundary:
			return LandBdyCrossed, host
		case openBoundary:
			return OpenBdyCrossed, host
		default:
			host = next
		}
	}
	return BdyError, host
}

// FindHostUsingGlobalSearch scans (by default, linearly) for the triangle
// containing (x, y), returning -1 if none is found. If Grid.BuildIndex has
// been called, candidate triangles are first narrowed by the R-tree before
// the exact barycentric test is applied — the result is identical either
// way, only the constant factor changes.
func (g *Grid) FindHostUsingGlobalSearch(x, y float64) int {
	if g.index != nil {
		return g.indexedGlobalSearch(x, y)
	}
	for e := 0; e < g.NElems; e++ {
		if g.insideWithTolerance(e, x, y) {
			return e
		}
	}
	return -1
}

func (g *Grid) indexedGlobalSearch(x, y float64) int {
	box := geomBoundsAroundPoint(x, y)
	for _, c := range g.index.SearchIntersect(box) {
		t, ok := c.(*triangleRef)
		if !ok {
			continue
		}
		if g.insideWithTolerance(t.elem, x, y) {
			return t.elem
		}
	}
	return -1
}

func (g *Grid) insideWithTolerance(elem int, x, y float64) bool {
	eps := g.epsilon(elem)
	phi := g.Barycentric(elem, x, y)
	return phi[0] >= -eps && phi[1] >= -eps && phi[2] >= -eps
}

// SetLocalCoordinates recomputes p.Phi from (p.X1, p.X2) within
// p.HostHorizontalElem. Small negative components introduced by roundoff
// are clamped to zero and the triple is renormalised so Sum(Phi) == 1
// exactly.
func (g *Grid) SetLocalCoordinates(p *particle.Particle) {
	phi := g.Barycentric(p.HostHorizontalElem, p.X1, p.X2)
	sum := 0.0
	for i := range phi {
		if phi[i] < 0 {
			phi[i] = 0
		}
		sum += phi[i]
	}
	if sum > 0 {
		for i := range phi {
			phi[i] /= sum
		}
	}
	p.Phi = phi
}

// SetDefaultLocation snaps p onto the centroid of its host element. Used
// when reflection would otherwise leave the particle marginally outside
// its host (spec.md §4.G land-reflection cap).
func (g *Grid) SetDefaultLocation(p *particle.Particle) {
	p.X1, p.X2 = g.Centroid(p.HostHorizontalElem)
	g.SetLocalCoordinates(p)
}
