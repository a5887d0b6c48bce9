package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theletterandrew/ksn-project/grid"
)

func testDef(n int) *grid.Definition {
	return &grid.Definition{Nrow: n, Ncol: n, Cw: 2, Proj: "EPSG:32611", NoData: -9999}
}

// bowl builds a 10x10 symmetric bowl rising from a single-cell pit at the
// center, one unit deeper than its rim.
func bowl() *grid.Real {
	g := grid.NewReal(testDef(10))
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			dr, dc := float64(r-5), float64(c-5)
			g.Set(r, c, 10+dr*dr+dc*dc)
		}
	}
	g.Set(5, 5, 9) // pit, depth 1 below the bowl floor
	return g
}

// drains reports whether every data cell has a non-increasing path to a
// boundary cell.
func drains(g *grid.Real) bool {
	gd := g.GD
	ok := make([]bool, gd.Ncells())
	var q []int
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if !g.IsNoData(r, c) && isBoundary(g, r, c) {
				ok[r*gd.Ncol+c] = true
				q = append(q, r*gd.Ncol+c)
			}
		}
	}
	for len(q) > 0 { // climb non-decreasing from the boundary
		i := q[0]
		q = q[1:]
		r, c := i/gd.Ncol, i%gd.Ncol
		for k := 0; k < 8; k++ {
			rr, cc := r+dr[k], c+dc[k]
			if rr < 0 || cc < 0 || rr >= gd.Nrow || cc >= gd.Ncol || g.IsNoData(rr, cc) {
				continue
			}
			j := rr*gd.Ncol + cc
			if !ok[j] && g.Value(rr, cc) >= g.Value(r, c) {
				ok[j] = true
				q = append(q, j)
			}
		}
	}
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if !g.IsNoData(r, c) && !ok[r*gd.Ncol+c] {
				return false
			}
		}
	}
	return true
}

func TestSinglePitBreach(t *testing.T) {
	dem := bowl()
	require.Len(t, Depressions(dem), 1)

	out, err := Resolve(dem, Params{MaxBreachDist: 5, MaxBreachCost: 1000})
	require.NoError(t, err)

	assert.Equal(t, 9., dem.Value(5, 5), "input must not be modified")
	assert.Equal(t, 9., out.Value(5, 5), "breach leaves the pit floor alone")

	// the carved path may lower at most MaxBreachDist cells; everything
	// else keeps its elevation
	nlow := 0
	for i := range out.A {
		require.LessOrEqual(t, out.A[i], dem.A[i], "conditioning never raises a breached bowl")
		if out.A[i] < dem.A[i] {
			nlow++
		}
	}
	assert.LessOrEqual(t, nlow, 5)
	assert.True(t, drains(out))
}

func TestFillWhenBreachBlocked(t *testing.T) {
	dem := bowl()
	// a one-cell search distance cannot escape the bowl: fill takes over
	out, err := Resolve(dem, Params{MaxBreachDist: 1, MaxBreachCost: .001})
	require.NoError(t, err)
	assert.True(t, drains(out))
	assert.GreaterOrEqual(t, out.Value(5, 5), 10., "pit raised to its pour elevation")
}

func TestIdempotence(t *testing.T) {
	out, err := Resolve(bowl(), Params{MaxBreachDist: 5, MaxBreachCost: 1000})
	require.NoError(t, err)
	again, err := Resolve(out, Params{MaxBreachDist: 5, MaxBreachCost: 1000})
	require.NoError(t, err)
	assert.Equal(t, out.A, again.A)
}

func TestNoDataIsBarrier(t *testing.T) {
	dem := bowl()
	// wall the pit behind nodata on the west half
	for r := 0; r < 10; r++ {
		for c := 0; c < 3; c++ {
			dem.Set(r, c, dem.GD.NoData)
		}
	}
	out, err := Resolve(dem, Params{MaxBreachDist: 8, MaxBreachCost: 1000})
	require.NoError(t, err)
	for r := 0; r < 10; r++ {
		for c := 0; c < 3; c++ {
			assert.True(t, out.IsNoData(r, c))
		}
	}
	assert.True(t, drains(out))
}
