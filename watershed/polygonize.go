package watershed

import (
	"sort"

	"github.com/ctessum/geom"
	"github.com/theletterandrew/ksn-project/grid"
)

// polygonize traces the cell-edge boundary of a membership mask into
// closed rings. Edges are oriented with the basin interior on the left,
// then chained end-to-start; the largest ring is the outer boundary and
// any others are holes or detached islands.
func polygonize(gd *grid.Definition, mask []bool) geom.Polygon {
	in := func(r, c int) bool {
		return r >= 0 && c >= 0 && r < gd.Nrow && c < gd.Ncol && mask[r*gd.Ncol+c]
	}
	vid := func(vr, vc int) int { return vr*(gd.Ncol+1) + vc }

	type edge struct{ a, b int }
	out := make(map[int][]edge) // start vertex -> departing edges
	ne := 0
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if !in(r, c) {
				continue
			}
			if !in(r-1, c) { // top, walk east
				e := edge{vid(r, c), vid(r, c+1)}
				out[e.a] = append(out[e.a], e)
				ne++
			}
			if !in(r, c+1) { // right, walk south
				e := edge{vid(r, c+1), vid(r+1, c+1)}
				out[e.a] = append(out[e.a], e)
				ne++
			}
			if !in(r+1, c) { // bottom, walk west
				e := edge{vid(r+1, c+1), vid(r+1, c)}
				out[e.a] = append(out[e.a], e)
				ne++
			}
			if !in(r, c-1) { // left, walk north
				e := edge{vid(r+1, c), vid(r, c)}
				out[e.a] = append(out[e.a], e)
				ne++
			}
		}
	}
	for _, es := range out {
		sort.Slice(es, func(i, j int) bool { return es[i].b < es[j].b }) // deterministic at pinch points
	}

	vertex := func(v int) geom.Point {
		vr, vc := v/(gd.Ncol+1), v%(gd.Ncol+1)
		return geom.Point{
			X: gd.Eorig + float64(vc)*gd.Cw,
			Y: gd.Norig + float64(gd.Nrow-vr)*gd.Cw,
		}
	}

	var rings [][]geom.Point
	starts := make([]int, 0, len(out))
	for v := range out {
		starts = append(starts, v)
	}
	sort.Ints(starts)
	for _, v0 := range starts {
		for len(out[v0]) > 0 {
			var ring []geom.Point
			v := v0
			for {
				es := out[v]
				if len(es) == 0 {
					break // open chain cannot happen on a closed mask boundary
				}
				e := es[0]
				out[v] = es[1:]
				ring = append(ring, vertex(e.a))
				v = e.b
				if v == v0 {
					ring = append(ring, vertex(e.b))
					break
				}
			}
			if len(ring) > 3 {
				rings = append(rings, ring)
			}
		}
	}

	// outer ring first
	sort.SliceStable(rings, func(i, j int) bool { return ringArea(rings[i]) > ringArea(rings[j]) })
	return geom.Polygon(rings)
}

func ringArea(ring []geom.Point) float64 {
	s := 0.
	for i := 1; i < len(ring); i++ {
		s += ring[i-1].X*ring[i].Y - ring[i].X*ring[i-1].Y
	}
	if s < 0 {
		s = -s
	}
	return s / 2
}
