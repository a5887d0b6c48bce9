// Package flow assigns single-direction (D8) drainage over a conditioned
// elevation raster and accumulates upstream contributing-cell counts.
package flow

import (
	"math"

	"github.com/theletterandrew/ksn-project/grid"
)

// D8 pointer codes follow the WhiteboxTools convention, clockwise from
// northeast: 1=NE 2=E 4=SE 8=S 16=SW 32=W 64=NW 128=N. Sink marks a
// terminal cell. The table order below is also the fixed tie-break
// priority for equal drops.
const Sink int32 = 0

var (
	dr   = [8]int{-1, 0, 1, 1, 1, 0, -1, -1}
	dc   = [8]int{1, 1, 1, 0, -1, -1, -1, 0}
	code = [8]int32{1, 2, 4, 8, 16, 32, 64, 128}
	dist = [8]float64{math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2, 1, math.Sqrt2, 1}
)

// Receiver resolves the cell a D8 code points at; ok=false for sinks,
// nodata and pointers that leave the raster.
func Receiver(dir *grid.Indx, r, c int) (rr, cc int, ok bool) {
	v := dir.Value(r, c)
	if v == Sink || v == grid.IndxNoData {
		return 0, 0, false
	}
	for k := 0; k < 8; k++ {
		if code[k] == v {
			rr, cc = r+dr[k], c+dc[k]
			ok = rr >= 0 && cc >= 0 && rr < dir.GD.Nrow && cc < dir.GD.Ncol
			return
		}
	}
	return 0, 0, false
}

// PointsTo reports whether cell (r,c) drains directly into (rt,ct).
func PointsTo(dir *grid.Indx, r, c, rt, ct int) bool {
	rr, cc, ok := Receiver(dir, r, c)
	return ok && rr == rt && cc == ct
}

// Dist returns the travel distance between a cell and its receiver in
// grid units (cw for cardinal moves, cw√2 for diagonal).
func Dist(dir *grid.Indx, r, c int) float64 {
	v := dir.Value(r, c)
	for k := 0; k < 8; k++ {
		if code[k] == v {
			return dist[k] * dir.GD.Cw
		}
	}
	return 0
}
