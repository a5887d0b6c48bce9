package stream

import (
	"math"

	"github.com/ctessum/geom"
)

// Polyline renders a segment as a world-coordinate line through cell
// centroids, optionally simplified. tol ≤ 0 keeps every vertex.
func (n *Network) Polyline(s *Segment, tol float64) geom.LineString {
	pts := make([]geom.Point, len(s.Cells))
	for i, c := range s.Cells {
		x, y := n.GD.CellCentroid(c.Row, c.Col)
		pts[i] = geom.Point{X: x, Y: y}
	}
	if tol > 0 && len(pts) > 2 {
		pts = douglasPeucker(pts, tol)
	}
	return geom.LineString(pts)
}

// douglasPeucker simplifies a polyline keeping both endpoints, so
// network connectivity at heads and confluences is untouched.
func douglasPeucker(pts []geom.Point, tol float64) []geom.Point {
	if len(pts) < 3 {
		return pts
	}
	imax, dmax := 0, 0.
	a, b := pts[0], pts[len(pts)-1]
	for i := 1; i < len(pts)-1; i++ {
		if d := perpDist(pts[i], a, b); d > dmax {
			imax, dmax = i, d
		}
	}
	if dmax <= tol {
		return []geom.Point{a, b}
	}
	left := douglasPeucker(pts[:imax+1], tol)
	right := douglasPeucker(pts[imax:], tol)
	return append(left[:len(left)-1], right...)
}

func perpDist(p, a, b geom.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		px, py := p.X-a.X, p.Y-a.Y
		return math.Sqrt(px*px + py*py)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	qx, qy := a.X+t*dx-p.X, a.Y+t*dy-p.Y
	return math.Sqrt(qx*qx + qy*qy)
}

