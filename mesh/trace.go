package mesh

import "github.com/jimc101/pylag-go/particle"

// FindHostUsingParticleTracing parametrises the segment from old to new's
// proposed position and walks the elements the segment actually passes
// through, resolving cases where the barycentric walk reports an apparent
// exit that the straight-line path does not actually make (e.g. through a
// concave neighbourhood). It sets new.HostHorizontalElem to the last
// interior host on LAND/OPEN, or the terminal host on IN_DOMAIN.
func (g *Grid) FindHostUsingParticleTracing(old, new *particle.Particle) int {
	host := old.HostHorizontalElem
	from := -1 // element the segment entered host from; -1 for none
	ox, oy := old.X1, old.X2
	nx, ny := new.X1, new.X2

	hopLimit := g.NElems
	for hop := 0; hop < hopLimit; hop++ {
		if g.insideWithTolerance(host, nx, ny) {
			new.HostHorizontalElem = host
			return InDomain
		}
		edge, xi, yi, ok := g.earliestEdgeCrossing(host, from, ox, oy, nx, ny)
		if !ok {
			// The segment doesn't leave through any edge of this host, yet
			// the endpoint test above failed: treat as a mesh
			// inconsistency rather than loop forever.
			new.HostHorizontalElem = host
			return BdyError
		}
		neighbour := g.Nbe[edge][host]
		switch neighbour {
		case landBoundary:
			new.HostHorizontalElem = host
			return LandBdyCrossed
		case openBoundary:
			new.HostHorizontalElem = host
			return OpenBdyCrossed
		default:
			from, host = host, neighbour
			ox, oy = xi, yi
		}
	}
	new.HostHorizontalElem = host
	return BdyError
}

// earliestEdgeCrossing returns the edge index (0, 1 or 2, matching the Nbe
// convention: the edge opposite vertex i) of the host triangle crossed
// earliest by the segment (ox,oy)->(nx,ny), along with the intersection
// point. When two edges are crossed at an identical parameter, land
// boundaries take precedence over open ones, and open over interior, per
// spec.md §4.B's tie-breaking rule. The edge shared with element from (the
// element the segment entered host from; -1 for none) is not considered.
func (g *Grid) earliestEdgeCrossing(host, from int, ox, oy, nx, ny float64) (edge int, xi, yi float64, ok bool) {
	n := g.nodesOf(host)
	verts := [3][2]float64{{g.X[n[0]], g.Y[n[0]]}, {g.X[n[1]], g.Y[n[1]]}, {g.X[n[2]], g.Y[n[2]]}}

	bestT := 2.0 // outside the valid [0,1] range
	found := false
	for i := 0; i < 3; i++ {
		if from >= 0 && g.Nbe[i][host] == from {
			continue
		}
		// Edge i is opposite vertex i, i.e. between vertices (i+1) and (i+2).
		a := verts[(i+1)%3]
		b := verts[(i+2)%3]
		t, _, segOK := segmentIntersect(ox, oy, nx, ny, a[0], a[1], b[0], b[1])
		if !segOK {
			continue
		}
		switch {
		case !found || t < bestT-1e-12:
			bestT, edge, found = t, i, true
		case t < bestT+1e-12:
			// Tie: prefer land, then open, then interior.
			if boundaryRank(g.Nbe[i][host]) < boundaryRank(g.Nbe[edge][host]) {
				edge = i
			}
		}
	}
	if !found {
		return 0, 0, 0, false
	}
	xi = ox + bestT*(nx-ox)
	yi = oy + bestT*(ny-oy)
	return edge, xi, yi, true
}

func boundaryRank(neighbour int) int {
	switch neighbour {
	case landBoundary:
		return 0
	case openBoundary:
		return 1
	default:
		return 2
	}
}

// segmentIntersect solves for the intersection of segment (ox,oy)->(nx,ny)
// with segment (ax,ay)->(bx,by), returning the parametric position t along
// the first segment and s along the second. ok is false if the segments
// are parallel or the intersection falls outside either segment.
func segmentIntersect(ox, oy, nx, ny, ax, ay, bx, by float64) (t, s float64, ok bool) {
	dx, dy := nx-ox, ny-oy
	ex, ey := bx-ax, by-ay
	denom := dx*ey - dy*ex
	if denom == 0 {
		return 0, 0, false
	}
	t = ((ax-ox)*ey - (ay-oy)*ex) / denom
	s = ((ax-ox)*dy - (ay-oy)*dx) / denom
	if t < 0 || t > 1 || s < 0 || s > 1 {
		return t, s, false
	}
	return t, s, true
}

// GetBoundaryIntersection returns the endpoints of the edge of
// old.HostHorizontalElem crossed by the segment old->new, and the
// parametric intersection point. Used by the horizontal boundary condition
// to build the reflection transform.
func (g *Grid) GetBoundaryIntersection(old, new *particle.Particle) (x1, y1, x2, y2, xi, yi float64) {
	host := old.HostHorizontalElem
	edge, ix, iy, ok := g.earliestEdgeCrossing(host, -1, old.X1, old.X2, new.X1, new.X2)
	if !ok {
		// Nothing crosses: degenerate call, return the host centroid twice.
		cx, cy := g.Centroid(host)
		return cx, cy, cx, cy, cx, cy
	}
	n := g.nodesOf(host)
	a := n[(edge+1)%3]
	b := n[(edge+2)%3]
	return g.X[a], g.Y[a], g.X[b], g.Y[b], ix, iy
}
