package mesh

import "github.com/ctessum/geom"

// geomBoundsAroundPoint returns a zero-area bounding box at (x, y), the
// standard way to query an R-tree for every indexed bounding box that
// contains a single point (mirrors vargrid.go's getCells/SearchIntersect
// usage in the teacher repo).
func geomBoundsAroundPoint(x, y float64) *geom.Bounds {
	return geom.NewBoundsPoint(geom.Point{X: x, Y: y})
}
