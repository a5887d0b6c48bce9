package condition

import (
	"container/heap"
	"math"

	"github.com/theletterandrew/ksn-project/grid"
)

// fill raises every remaining depressed cell to the lowest pour elevation
// reachable from the boundary (priority flood). Nodata is impassable, so
// regions framed by nodata flood from their own data/nodata rim.
func fill(g *grid.Real) error {
	gd := g.GD
	seen := make([]bool, gd.Ncells())
	pq := &nodeHeap{}

	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if g.IsNoData(r, c) || !isBoundary(g, r, c) {
				continue
			}
			i := r*gd.Ncol + c
			seen[i] = true
			heap.Push(pq, heapItem{z: g.A[i], i: i})
		}
	}

	for pq.Len() > 0 {
		it := heap.Pop(pq).(heapItem)
		r, c := it.i/gd.Ncol, it.i%gd.Ncol
		for k := 0; k < 8; k++ {
			rr, cc := r+dr[k], c+dc[k]
			if rr < 0 || cc < 0 || rr >= gd.Nrow || cc >= gd.Ncol || g.IsNoData(rr, cc) {
				continue
			}
			j := rr*gd.Ncol + cc
			if seen[j] {
				continue
			}
			seen[j] = true
			if g.A[j] < it.z {
				g.A[j] = it.z
			}
			if math.IsInf(g.A[j], 0) || math.IsNaN(g.A[j]) {
				return ErrConditioning
			}
			heap.Push(pq, heapItem{z: g.A[j], i: j})
		}
	}
	return nil
}
