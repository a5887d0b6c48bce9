package flow

import (
	"errors"

	"github.com/theletterandrew/ksn-project/grid"
)

// ErrRoutingCycle reports a cycle in the direction grid. It can only
// arise from a conditioning or tie-break defect and aborts the run.
var ErrRoutingCycle = errors.New("routing cycle detected in flow-direction grid")

// Accumulate counts, for every cell, the cells whose flow path passes
// through it (itself included). Cells are processed by a wavefront over
// per-cell pending-contributor counters so each value is computed exactly
// once; any cell left pending exposes a cycle.
func Accumulate(dir *grid.Indx) (*grid.Indx, error) {
	gd := dir.GD
	nc := gd.Ncells()
	acc := grid.NewIndx(gd)

	pend := make([]int32, nc)
	nact := 0
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if dir.IsNoData(r, c) {
				continue
			}
			nact++
			if rr, cc, ok := Receiver(dir, r, c); ok {
				pend[rr*gd.Ncol+cc]++
			}
		}
	}

	q := make([]int, 0, nact)
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			i := r*gd.Ncol + c
			if !dir.IsNoData(r, c) && pend[i] == 0 {
				q = append(q, i)
				acc.A[i] = 1
			}
		}
	}

	ndone := 0
	for len(q) > 0 {
		i := q[0]
		q = q[1:]
		ndone++
		r, c := i/gd.Ncol, i%gd.Ncol
		rr, cc, ok := Receiver(dir, r, c)
		if !ok {
			continue
		}
		j := rr*gd.Ncol + cc
		if acc.A[j] == grid.IndxNoData {
			acc.A[j] = 1
		}
		acc.A[j] += acc.A[i]
		pend[j]--
		if pend[j] == 0 {
			q = append(q, j)
		}
	}
	if ndone != nact {
		return nil, ErrRoutingCycle
	}
	return acc, nil
}

// Upstream lists the neighbors of (r,c) that drain directly into it.
func Upstream(dir *grid.Indx, r, c int) [][2]int {
	var us [][2]int
	for k := 0; k < 8; k++ {
		rr, cc := r+dr[k], c+dc[k]
		if rr < 0 || cc < 0 || rr >= dir.GD.Nrow || cc >= dir.GD.Ncol {
			continue
		}
		if PointsTo(dir, rr, cc, r, c) {
			us = append(us, [2]int{rr, cc})
		}
	}
	return us
}
