// Package condition removes hydrological sinks from an elevation raster
// by least-cost breaching followed by priority-flood filling, leaving a
// surface from which every interior cell drains to a boundary sink.
package condition

import (
	"errors"
	"sort"

	"github.com/theletterandrew/ksn-project/grid"
)

// ErrConditioning signals numeric overflow while raising elevations
// during fill. It aborts the run.
var ErrConditioning = errors.New("conditioning failure: elevation overflow during fill")

// Params bound the breach search. Unresolved depressions fall through
// to the fill stage.
type Params struct {
	MaxBreachDist int     // search radius, cells
	MaxBreachCost float64 // total permitted lowering along one path
}

// neighbor offsets, clockwise from northeast
var (
	dr = [8]int{-1, 0, 1, 1, 1, 0, -1, -1}
	dc = [8]int{1, 1, 1, 0, -1, -1, -1, 0}
)

// Resolve conditions dem and returns a new raster; the input is not
// modified. Re-running Resolve on its own output changes nothing.
func Resolve(dem *grid.Real, p Params) (*grid.Real, error) {
	out := dem.Copy()

	pits := Depressions(out)
	sort.Slice(pits, func(i, j int) bool { // deepest first, then scan order
		zi, zj := out.A[pits[i]], out.A[pits[j]]
		if zi != zj {
			return zi < zj
		}
		return pits[i] < pits[j]
	})
	for _, i := range pits {
		breach(out, i, p)
	}

	if err := fill(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Depressions returns the flat indices of cells that sit at or below all
// of their neighbors and cannot be boundary sinks.
func Depressions(g *grid.Real) []int {
	gd := g.GD
	var pits []int
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if g.IsNoData(r, c) || isBoundary(g, r, c) {
				continue
			}
			z, low := g.Value(r, c), true
			for k := 0; k < 8; k++ {
				rr, cc := r+dr[k], c+dc[k]
				if g.IsNoData(rr, cc) {
					continue
				}
				if g.Value(rr, cc) < z {
					low = false
					break
				}
			}
			if low {
				pits = append(pits, r*gd.Ncol+c)
			}
		}
	}
	return pits
}

// isBoundary reports whether (r,c) is a permitted terminal sink: a cell on
// the raster edge or abutting the nodata margin. Nodata itself is never
// traversed; the data/nodata rim plays the role of the raster edge when a
// mosaic is framed by nodata.
func isBoundary(g *grid.Real, r, c int) bool {
	gd := g.GD
	if r == 0 || c == 0 || r == gd.Nrow-1 || c == gd.Ncol-1 {
		return true
	}
	for k := 0; k < 8; k++ {
		if g.IsNoData(r+dr[k], c+dc[k]) {
			return true
		}
	}
	return false
}
