// Package mesh implements the unstructured triangular-mesh geometry layer:
// topology storage, barycentric math, and host-element search (component B).
package mesh

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"gonum.org/v1/gonum/mat"
)

// Host-search result flags (spec.md §4.B). The sentinel boundary-type
// encoding in Nbe (-1 land, -2 open) must never be remapped to these.
const (
	InDomain        = 0
	LandBdyCrossed  = 1
	OpenBdyCrossed  = 2
	BdyError        = -1
	landBoundary    = -1
	openBoundary    = -2
	noNeighbour     = -1
	defaultHopLimit = 0 // 0 means "use Grid.NElems"
)

// Grid is the immutable topology and static geometry of the unstructured
// mesh. It is shared read-only across all particles and, in a parallel
// step, across all worker goroutines.
type Grid struct {
	NNodes int
	NElems int
	NSiglev int
	NSiglay int

	Nv  [3][]int // node indices of each triangle, len NElems
	Nbe [3][]int // neighbour across the edge opposite each vertex; -1 land, -2 open

	X, Y   []float64 // node coordinates, offset-adjusted in cartesian mode
	Xc, Yc []float64 // triangle centroids, same offset

	Siglev [][]float64 // [NSiglev][NNodes], 0 at surface, -1 at seabed
	Siglay [][]float64 // [NSiglay][NNodes]
	H      []float64   // [NNodes] bathymetry, positive depth

	// Spherical indicates the coordinate system is lon/lat rather than a
	// locally offset cartesian plane (spec.md §6 OCEAN_CIRCULATION_MODEL.coordinate_system).
	Spherical bool

	index *rtree.Rtree
}

// NewGrid validates the supplied topology/geometry arrays and returns a
// Grid. It performs no geometric indexing; call BuildIndex separately.
func NewGrid(nv, nbe [3][]int, x, y, xc, yc []float64, siglev, siglay [][]float64, h []float64, spherical bool) (*Grid, error) {
	nElems := len(nv[0])
	nNodes := len(x)
	for i := 0; i < 3; i++ {
		if len(nv[i]) != nElems || len(nbe[i]) != nElems {
			return nil, fmt.Errorf("mesh: nv/nbe column %d length mismatch", i)
		}
	}
	if len(y) != nNodes || len(h) != nNodes {
		return nil, fmt.Errorf("mesh: node array length mismatch")
	}
	if len(xc) != nElems || len(yc) != nElems {
		return nil, fmt.Errorf("mesh: element centroid array length mismatch")
	}
	if len(siglay) == 0 || len(siglev) != len(siglay)+1 {
		return nil, fmt.Errorf("mesh: expected NSiglev == NSiglay+1, got %d and %d", len(siglev), len(siglay))
	}
	g := &Grid{
		NNodes:  nNodes,
		NElems:  nElems,
		NSiglev: len(siglev),
		NSiglay: len(siglay),
		Nv:      nv,
		Nbe:     nbe,
		X:       x,
		Y:       y,
		Xc:      xc,
		Yc:      yc,
		Siglev:  siglev,
		Siglay:  siglay,
		H:       h,
		Spherical: spherical,
	}
	return g, nil
}

// triangleRef is the rtree entry wrapping a triangle's bounding box; it
// exists only so triangles can be inserted into the spatial index.
type triangleRef struct {
	elem   int
	bounds *geom.Bounds
}

func (t *triangleRef) Bounds() *geom.Bounds { return t.bounds }

// BuildIndex constructs an R-tree over each triangle's bounding box. Once
// built, FindHostUsingGlobalSearch uses it to narrow candidates before the
// exact barycentric test; the search result is identical to the
// unindexed linear scan (spec.md §4.B), only its cost changes.
func (g *Grid) BuildIndex() {
	tree := rtree.NewTree(25, 50)
	for e := 0; e < g.NElems; e++ {
		b := geom.NewBounds()
		for _, n := range g.nodesOf(e) {
			b.Extend(geom.NewBoundsPoint(geom.Point{X: g.X[n], Y: g.Y[n]}))
		}
		tree.Insert(&triangleRef{elem: e, bounds: b})
	}
	g.index = tree
}

func (g *Grid) nodesOf(elem int) [3]int {
	return [3]int{g.Nv[0][elem], g.Nv[1][elem], g.Nv[2][elem]}
}

// NodesOf returns the three node indices of triangle elem.
func (g *Grid) NodesOf(elem int) [3]int {
	return g.nodesOf(elem)
}

// NeighbourAcross returns the neighbouring element across the edge opposite
// vertex edge (0, 1 or 2) of triangle elem, or the landBoundary/openBoundary
// sentinel.
func (g *Grid) NeighbourAcross(elem, edge int) int {
	return g.Nbe[edge][elem]
}

// characteristicSize returns a length scale for triangle elem, used to
// scale the barycentric tolerance epsilon (spec.md §4.B).
func (g *Grid) characteristicSize(elem int) float64 {
	n := g.nodesOf(elem)
	x0, y0 := g.X[n[0]], g.Y[n[0]]
	x1, y1 := g.X[n[1]], g.Y[n[1]]
	x2, y2 := g.X[n[2]], g.Y[n[2]]
	a := math.Hypot(x1-x0, y1-y0)
	b := math.Hypot(x2-x1, y2-y1)
	c := math.Hypot(x0-x2, y0-y2)
	return (a + b + c) / 3
}

// epsilon is the geometric tolerance for a barycentric coordinate to be
// treated as non-negative: a small constant scaled by the triangle's
// characteristic size (spec.md §4.B).
func (g *Grid) epsilon(elem int) float64 {
	const base = 1e-14
	return base * g.characteristicSize(elem)
}

// Barycentric returns the barycentric coordinates of (x, y) within
// triangle elem. Orientation is not assumed; the sign of the determinant
// identifies it, and the formula below is orientation-agnostic.
func (g *Grid) Barycentric(elem int, x, y float64) [3]float64 {
	n := g.nodesOf(elem)
	x0, y0 := g.X[n[0]], g.Y[n[0]]
	x1, y1 := g.X[n[1]], g.Y[n[1]]
	x2, y2 := g.X[n[2]], g.Y[n[2]]

	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	phi0 := ((y1-y2)*(x-x2) + (x2-x1)*(y-y2)) / det
	phi1 := ((y2-y0)*(x-x2) + (x0-x2)*(y-y2)) / det
	phi2 := 1 - phi0 - phi1
	return [3]float64{phi0, phi1, phi2}
}

// GradPhi returns the analytic gradients of the barycentric basis
// functions of triangle elem with respect to x and y. These are constants
// per triangle, obtained from the inverse of the 2x2 edge-vector matrix.
func (g *Grid) GradPhi(elem int) (dPhiDx, dPhiDy [3]float64) {
	n := g.nodesOf(elem)
	x0, y0 := g.X[n[0]], g.Y[n[0]]
	x1, y1 := g.X[n[1]], g.Y[n[1]]
	x2, y2 := g.X[n[2]], g.Y[n[2]]

	// [x1-x0 x2-x0] [dphi1/dx dphi1/dy]   [1 0]
	// [y1-y0 y2-y0] [dphi2/dx dphi2/dy] = [0 1]
	edges := mat.NewDense(2, 2, []float64{
		x1 - x0, x2 - x0,
		y1 - y0, y2 - y0,
	})
	var inv mat.Dense
	if err := inv.Inverse(edges); err != nil {
		// Degenerate (zero-area) triangle; mesh.NewGrid does not check
		// triangle areas, so a grid holding one reaches this point.
		panic(fmt.Sprintf("mesh: GradPhi: element %d has a singular edge matrix: %v", elem, err))
	}

	dPhiDx[1], dPhiDy[1] = inv.At(0, 0), inv.At(0, 1)
	dPhiDx[2], dPhiDy[2] = inv.At(1, 0), inv.At(1, 1)
	dPhiDx[0] = -(dPhiDx[1] + dPhiDx[2])
	dPhiDy[0] = -(dPhiDy[1] + dPhiDy[2])
	return
}

// Centroid returns the centroid coordinates of triangle elem.
func (g *Grid) Centroid(elem int) (float64, float64) {
	return g.Xc[elem], g.Yc[elem]
}
