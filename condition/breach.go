package condition

import (
	"container/heap"

	"github.com/theletterandrew/ksn-project/grid"
)

// breach searches outward from pit cell i for the least-cost monotone
// escape within p.MaxBreachDist cells, where cost accumulates the lowering
// needed to keep the path at or below the pit elevation. On success the
// path is carved non-increasing; otherwise the pit is left for fill.
func breach(g *grid.Real, i int, p Params) bool {
	gd := g.GD
	zpit := g.A[i]

	prev := map[int]int{i: -1}
	best := map[int]float64{i: 0}
	pq := &nodeHeap{}
	heap.Push(pq, heapItem{z: 0, i: i})
	dists := map[int]int{i: 0}

	goal := -1
	for pq.Len() > 0 {
		it := heap.Pop(pq).(heapItem)
		if it.z > best[it.i] { // stale entry
			continue
		}
		r, c := it.i/gd.Ncol, it.i%gd.Ncol
		if it.i != i && (g.A[it.i] < zpit || isBoundary(g, r, c)) {
			goal = it.i
			break
		}
		if dists[it.i] == p.MaxBreachDist {
			continue
		}
		for k := 0; k < 8; k++ {
			rr, cc := r+dr[k], c+dc[k]
			if rr < 0 || cc < 0 || rr >= gd.Nrow || cc >= gd.Ncol || g.IsNoData(rr, cc) {
				continue
			}
			j := rr*gd.Ncol + cc
			cost := it.z
			if g.Value(rr, cc) > zpit {
				cost += g.Value(rr, cc) - zpit
			}
			if cost > p.MaxBreachCost {
				continue
			}
			if b, ok := best[j]; !ok || cost < b {
				best[j] = cost
				prev[j] = it.i
				dists[j] = dists[it.i] + 1
				heap.Push(pq, heapItem{z: cost, i: j})
			}
		}
	}
	if goal < 0 {
		return false
	}

	// carve from pit outward; profile must not rise
	path := []int{}
	for j := goal; j != -1; j = prev[j] {
		path = append(path, j)
	}
	zprev := zpit
	for k := len(path) - 1; k >= 0; k-- {
		j := path[k]
		if g.A[j] > zprev {
			g.A[j] = zprev
		}
		zprev = g.A[j]
	}
	return true
}

// heapItem orders on value then flat index so pops are deterministic.
type heapItem struct {
	z float64
	i int
}

type nodeHeap []heapItem

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(a, b int) bool {
	if h[a].z != h[b].z {
		return h[a].z < h[b].z
	}
	return h[a].i < h[b].i
}
func (h nodeHeap) Swap(a, b int) { h[a], h[b] = h[b], h[a] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(heapItem)) }
func (h *nodeHeap) Pop() any {
	o := *h
	n := len(o) - 1
	it := o[n]
	*h = o[:n]
	return it
}
