// Package stream thresholds a flow-accumulation grid into a connected,
// acyclic network of channel polylines.
package stream

import (
	"fmt"

	"github.com/theletterandrew/ksn-project/flow"
	"github.com/theletterandrew/ksn-project/grid"
)

// Cell is a raster position on the stream network.
type Cell struct{ Row, Col int }

// Segment is one channel reach, ordered head-to-outlet. Reaches end at a
// confluence cell, which is shared with the continuing segment so the
// network stays connected.
type Segment struct {
	ID     int
	Cells  []Cell
	Acc    int32 // contributing cells at the downstream end
	DownID int   // receiving segment, -1 at terminal outlets
}

// Network is the extracted stream graph over one raster frame.
type Network struct {
	GD        *grid.Definition
	Segments  []Segment
	Mask      []bool // row-major stream-cell mask
	Threshold int32
}

// Extract marks cells with accumulation ≥ threshold as stream cells and
// traces the resulting network. Traces start at channel heads and at
// confluence cells, so no reach is emitted twice.
func Extract(dir, acc *grid.Indx, threshold int32) (*Network, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("stream.Extract: threshold must be positive, got %d", threshold)
	}
	if !dir.GD.Compatible(acc.GD) {
		return nil, fmt.Errorf("stream.Extract: direction and accumulation grids disagree")
	}
	gd := dir.GD
	n := &Network{GD: gd, Threshold: threshold, Mask: make([]bool, gd.Ncells())}
	for i, v := range acc.A {
		if v != grid.IndxNoData && v >= threshold {
			n.Mask[i] = true
		}
	}

	// a cell starts a reach when nothing upstream is channelized (head)
	// or when two or more channel cells converge on it (confluence)
	indeg := func(r, c int) int {
		m := 0
		for _, u := range flow.Upstream(dir, r, c) {
			if n.Mask[u[0]*gd.Ncol+u[1]] {
				m++
			}
		}
		return m
	}
	isStart := make(map[int]bool)
	var starts []int
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			i := r*gd.Ncol + c
			if !n.Mask[i] {
				continue
			}
			if m := indeg(r, c); m == 0 || m > 1 {
				isStart[i] = true
				starts = append(starts, i)
			}
		}
	}

	segAt := make(map[int]int, len(starts))
	for id, i := range starts {
		segAt[i] = id
	}

	for id, i := range starts {
		seg := Segment{ID: id, DownID: -1}
		r, c := i/gd.Ncol, i%gd.Ncol
		seg.Cells = append(seg.Cells, Cell{r, c})
		for {
			rr, cc, ok := flow.Receiver(dir, r, c)
			if !ok || !n.Mask[rr*gd.Ncol+cc] {
				break
			}
			seg.Cells = append(seg.Cells, Cell{rr, cc})
			if isStart[rr*gd.Ncol+cc] {
				seg.DownID = segAt[rr*gd.Ncol+cc]
				break
			}
			r, c = rr, cc
		}
		last := seg.Cells[len(seg.Cells)-1]
		seg.Acc = acc.Value(last.Row, last.Col)
		n.Segments = append(n.Segments, seg)
	}
	return n, nil
}

// Heads returns the channel-head cells (reach starts with no channelized
// contributor).
func (n *Network) Heads(dir *grid.Indx) []Cell {
	var hd []Cell
	for _, s := range n.Segments {
		c := s.Cells[0]
		head := true
		for _, u := range flow.Upstream(dir, c.Row, c.Col) {
			if n.Mask[u[0]*n.GD.Ncol+u[1]] {
				head = false
				break
			}
		}
		if head {
			hd = append(hd, c)
		}
	}
	return hd
}
