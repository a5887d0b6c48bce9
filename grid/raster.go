package grid

import "math"

// IndxNoData is the integer-raster sentinel (direction and accumulation grids).
const IndxNoData int32 = -9999

// Real is a row-major float64 raster bound to a Definition.
type Real struct {
	GD *Definition
	A  []float64
}

func NewReal(gd *Definition) *Real {
	a := make([]float64, gd.Ncells())
	for i := range a {
		a[i] = gd.NoData
	}
	return &Real{GD: gd, A: a}
}

func (g *Real) Value(r, c int) float64  { return g.A[r*g.GD.Ncol+c] }
func (g *Real) Set(r, c int, v float64) { g.A[r*g.GD.Ncol+c] = v }
func (g *Real) IsNoData(r, c int) bool  { return g.isNoData(g.A[r*g.GD.Ncol+c]) }
func (g *Real) isNoData(v float64) bool { return v == g.GD.NoData || math.IsNaN(v) }

func (g *Real) Copy() *Real {
	a := make([]float64, len(g.A))
	copy(a, g.A)
	return &Real{GD: g.GD, A: a}
}

// Nactive counts cells carrying a value.
func (g *Real) Nactive() int {
	n := 0
	for _, v := range g.A {
		if !g.isNoData(v) {
			n++
		}
	}
	return n
}

// Indx is a row-major int32 raster bound to a Definition.
type Indx struct {
	GD *Definition
	A  []int32
}

func NewIndx(gd *Definition) *Indx {
	a := make([]int32, gd.Ncells())
	for i := range a {
		a[i] = IndxNoData
	}
	return &Indx{GD: gd, A: a}
}

func (g *Indx) Value(r, c int) int32   { return g.A[r*g.GD.Ncol+c] }
func (g *Indx) Set(r, c int, v int32)  { g.A[r*g.GD.Ncol+c] = v }
func (g *Indx) IsNoData(r, c int) bool { return g.A[r*g.GD.Ncol+c] == IndxNoData }
