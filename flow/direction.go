package flow

import "github.com/theletterandrew/ksn-project/grid"

// Direction computes the D8 pointer grid for a conditioned DEM. Every
// non-nodata cell receives either a neighbor code (steepest drop over
// travel distance, ties broken by the fixed table order) or Sink. Flats
// are resolved in a second pass that routes toward the plateau's pour
// cells, so the result is cycle-free by construction.
func Direction(dem *grid.Real) *grid.Indx {
	gd := dem.GD
	dir := grid.NewIndx(gd)

	var flats []int
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if dem.IsNoData(r, c) {
				continue
			}
			z, kbest, gbest := dem.Value(r, c), -1, 0.
			for k := 0; k < 8; k++ {
				rr, cc := r+dr[k], c+dc[k]
				if rr < 0 || cc < 0 || rr >= gd.Nrow || cc >= gd.Ncol || dem.IsNoData(rr, cc) {
					continue
				}
				if g := (z - dem.Value(rr, cc)) / dist[k]; g > gbest {
					gbest, kbest = g, k
				}
			}
			switch {
			case kbest >= 0:
				dir.Set(r, c, code[kbest])
			case r == 0 || c == 0 || r == gd.Nrow-1 || c == gd.Ncol-1 || touchesNoData(dem, r, c):
				dir.Set(r, c, Sink) // boundary cells terminate
			default:
				flats = append(flats, r*gd.Ncol+c)
			}
		}
	}

	if len(flats) > 0 {
		resolveFlats(dem, dir, flats)
	}
	return dir
}

func touchesNoData(dem *grid.Real, r, c int) bool {
	for k := 0; k < 8; k++ {
		rr, cc := r+dr[k], c+dc[k]
		if rr < 0 || cc < 0 || rr >= dem.GD.Nrow || cc >= dem.GD.Ncol || dem.IsNoData(rr, cc) {
			return true
		}
	}
	return false
}

// resolveFlats directs plateau cells by two breadth-first passes: the
// primary metric is distance toward the flat's pour cells (cells already
// holding a direction at the same or lower elevation), the secondary is
// distance away from higher terrain. Each flat cell points at a neighbor
// of strictly smaller pour distance, which rules out loops.
func resolveFlats(dem *grid.Real, dir *grid.Indx, flats []int) {
	gd := dem.GD
	const unset = int32(1) << 30
	toLow := make(map[int]int32, len(flats))
	fromHigh := make(map[int]int32, len(flats))
	for _, i := range flats {
		toLow[i], fromHigh[i] = unset, unset
	}

	// pass 1: wavefront inward from flat cells abutting a resolved cell
	// of equal or lower elevation (the pour rim)
	var q []int
	for _, i := range flats {
		r, c := i/gd.Ncol, i%gd.Ncol
		z := dem.Value(r, c)
		for k := 0; k < 8; k++ {
			rr, cc := r+dr[k], c+dc[k]
			if rr < 0 || cc < 0 || rr >= gd.Nrow || cc >= gd.Ncol || dem.IsNoData(rr, cc) {
				continue
			}
			if _, isFlat := toLow[rr*gd.Ncol+cc]; !isFlat && dem.Value(rr, cc) <= z {
				toLow[i] = 1
				q = append(q, i)
				break
			}
		}
	}
	bfs(gd, dem, toLow, q)

	// pass 2: wavefront inward from flat cells abutting higher terrain
	q = q[:0]
	for _, i := range flats {
		r, c := i/gd.Ncol, i%gd.Ncol
		z := dem.Value(r, c)
		for k := 0; k < 8; k++ {
			rr, cc := r+dr[k], c+dc[k]
			if rr < 0 || cc < 0 || rr >= gd.Nrow || cc >= gd.Ncol || dem.IsNoData(rr, cc) {
				continue
			}
			if dem.Value(rr, cc) > z {
				fromHigh[i] = 1
				q = append(q, i)
				break
			}
		}
	}
	bfs(gd, dem, fromHigh, q)

	for _, i := range flats {
		r, c := i/gd.Ncol, i%gd.Ncol
		di := toLow[i]
		if di >= unset { // enclosed plateau with no rim: terminal
			dir.Set(r, c, Sink)
			continue
		}
		kbest, hbest := -1, int32(-1)
		for k := 0; k < 8; k++ {
			rr, cc := r+dr[k], c+dc[k]
			if rr < 0 || cc < 0 || rr >= gd.Nrow || cc >= gd.Ncol {
				continue
			}
			j := rr*gd.Ncol + cc
			dj, isFlat := toLow[j]
			if !isFlat {
				// pour rim itself: equal-or-lower resolved neighbor, distance 0
				if !dem.IsNoData(rr, cc) && dem.Value(rr, cc) <= dem.Value(r, c) && dir.Value(rr, cc) != grid.IndxNoData {
					dj = 0
				} else {
					continue
				}
			}
			if dj != di-1 {
				continue
			}
			h := int32(0)
			if isFlat && fromHigh[j] < unset {
				h = fromHigh[j]
			}
			if h > hbest { // prefer routing away from higher ground
				hbest, kbest = h, k
			}
		}
		if kbest < 0 {
			dir.Set(r, c, Sink) // unreachable pocket, terminal by policy
			continue
		}
		dir.Set(r, c, code[kbest])
	}
}

// bfs expands seeded distances across the flat-cell set in scan order.
func bfs(gd *grid.Definition, dem *grid.Real, d map[int]int32, q []int) {
	const unset = int32(1) << 30
	for len(q) > 0 {
		i := q[0]
		q = q[1:]
		r, c := i/gd.Ncol, i%gd.Ncol
		z := dem.Value(r, c)
		for k := 0; k < 8; k++ {
			rr, cc := r+dr[k], c+dc[k]
			if rr < 0 || cc < 0 || rr >= gd.Nrow || cc >= gd.Ncol {
				continue
			}
			j := rr*gd.Ncol + cc
			if dj, ok := d[j]; ok && dj == unset && dem.Value(rr, cc) == z {
				d[j] = d[i] + 1
				q = append(q, j)
			}
		}
	}
}
