package watershed

import (
	"fmt"
	"sort"

	"github.com/ctessum/geom"
	"github.com/theletterandrew/ksn-project/flow"
	"github.com/theletterandrew/ksn-project/grid"
)

// Watershed is one delineated catchment. Mask is the full
// reverse-flow-reachable set from the pour cell, so a nested basin's
// cells also appear in every enclosing basin; containment is explicit
// through Parent rather than by clipping masks.
type Watershed struct {
	ID      int
	Pour    PourPoint
	Mask    []bool // row-major over the full frame
	Ncell   int
	AreaKm2 float64
	Parent  int // ID of the nearest retained pour point downstream, -1 if none
	Bounds  geom.Polygon
}

// Params govern candidate retention.
type Params struct {
	MinDrainageArea int32   // cells; snapped candidates below this are dropped
	SnapRadius      float64 // world units
}

// Delineate snaps candidates, drops those whose drainage falls short of
// MinDrainageArea, and floods each retained pour point upstream through
// the reversed D8 adjacency. Nesting rule: every qualifying pour point is
// retained with its complete upstream mask and tagged with its enclosing
// basin via Parent, so no cell is silently dropped or double-counted.
func Delineate(dir, acc *grid.Indx, cands []Candidate, p Params) ([]*Watershed, error) {
	if p.MinDrainageArea <= 0 || p.SnapRadius <= 0 {
		return nil, fmt.Errorf("watershed.Delineate: non-positive retention parameters")
	}
	if !dir.GD.Compatible(acc.GD) {
		return nil, fmt.Errorf("watershed.Delineate: direction and accumulation grids disagree")
	}
	gd := dir.GD

	var pps []PourPoint
	taken := map[int]bool{}
	for _, cand := range cands {
		pp, ok := Snap(acc, cand, p.SnapRadius)
		if !ok || pp.Acc < p.MinDrainageArea {
			continue
		}
		if i := pp.Row*gd.Ncol + pp.Col; !taken[i] { // candidates snapping to one cell collapse
			taken[i] = true
			pps = append(pps, pp)
		}
	}
	sort.Slice(pps, func(i, j int) bool { return pps[i].ID < pps[j].ID })

	pourAt := make(map[int]int, len(pps)) // flat cell index -> pour ID
	for _, pp := range pps {
		pourAt[pp.Row*gd.Ncol+pp.Col] = pp.ID
	}

	var wss []*Watershed
	for _, pp := range pps {
		ws := &Watershed{ID: pp.ID, Pour: pp, Mask: make([]bool, gd.Ncells()), Parent: -1}

		// reverse flood fill from the pour cell
		q := [][2]int{{pp.Row, pp.Col}}
		ws.Mask[pp.Row*gd.Ncol+pp.Col] = true
		for len(q) > 0 {
			cur := q[0]
			q = q[1:]
			for _, u := range flow.Upstream(dir, cur[0], cur[1]) {
				if i := u[0]*gd.Ncol + u[1]; !ws.Mask[i] {
					ws.Mask[i] = true
					q = append(q, u)
				}
			}
			ws.Ncell++
		}
		ws.AreaKm2 = float64(ws.Ncell) * gd.CellArea() / 1e6

		// parent: first retained pour cell on the downstream chain
		r, c := pp.Row, pp.Col
		for {
			rr, cc, ok := flow.Receiver(dir, r, c)
			if !ok {
				break
			}
			if id, hit := pourAt[rr*gd.Ncol+cc]; hit {
				ws.Parent = id
				break
			}
			r, c = rr, cc
		}

		ws.Bounds = polygonize(gd, ws.Mask)
		wss = append(wss, ws)
	}
	return wss, nil
}

// Contains reports membership of cell (r,c).
func (w *Watershed) Contains(gd *grid.Definition, r, c int) bool {
	return w.Mask[r*gd.Ncol+c]
}
