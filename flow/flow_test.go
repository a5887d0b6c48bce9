package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theletterandrew/ksn-project/condition"
	"github.com/theletterandrew/ksn-project/grid"
)

func testDef(n int) *grid.Definition {
	return &grid.Definition{Nrow: n, Ncol: n, Cw: 2, Proj: "EPSG:32611", NoData: -9999}
}

// cone slopes down toward the south edge with a slight east tilt so the
// steepest-descent choice is unambiguous everywhere.
func tiltedPlane(n int) *grid.Real {
	g := grid.NewReal(testDef(n))
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			g.Set(r, c, float64(n-r)*10+float64(n-c)*.01)
		}
	}
	return g
}

// follow walks the pointer chain from (r,c); returns steps taken and
// whether a terminal was reached within Ncells steps.
func follow(dir *grid.Indx, r, c int) (int, bool) {
	for n := 0; n <= dir.GD.Ncells(); n++ {
		if dir.Value(r, c) == Sink {
			return n, true
		}
		rr, cc, ok := Receiver(dir, r, c)
		if !ok {
			return n, true
		}
		r, c = rr, cc
	}
	return 0, false
}

func TestDirectionAcyclic(t *testing.T) {
	dem := tiltedPlane(10)
	dir := Direction(dem)
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			steps, term := follow(dir, r, c)
			require.True(t, term, "cell (%d,%d) never terminates", r, c)
			assert.LessOrEqual(t, steps, 2*10) // bounded by grid diameter
		}
	}
}

func TestDirectionDeterministic(t *testing.T) {
	dem := tiltedPlane(10)
	a, b := Direction(dem), Direction(dem)
	assert.Equal(t, a.A, b.A)
}

func TestAccumulationConservation(t *testing.T) {
	dem := tiltedPlane(10)
	dir := Direction(dem)
	acc, err := Accumulate(dir)
	require.NoError(t, err)

	total := int32(0)
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			want := int32(1)
			for _, u := range Upstream(dir, r, c) {
				want += acc.Value(u[0], u[1])
			}
			assert.Equal(t, want, acc.Value(r, c), "conservation at (%d,%d)", r, c)
			if dir.Value(r, c) == Sink {
				total += acc.Value(r, c)
			}
		}
	}
	assert.Equal(t, int32(100), total, "every cell reaches exactly one sink")
}

func TestFlatResolution(t *testing.T) {
	// walled plateau with a single low escape cell on the south rim
	n := 9
	g := grid.NewReal(testDef(n))
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if r == 0 || c == 0 || r == n-1 || c == n-1 {
				g.Set(r, c, 20)
			} else {
				g.Set(r, c, 10)
			}
		}
	}
	g.Set(n-1, 4, 5) // pour cell

	dir := Direction(g)
	acc, err := Accumulate(dir)
	require.NoError(t, err, "flat routing must not loop")
	for r := 1; r < n-1; r++ {
		for c := 1; c < n-1; c++ {
			_, term := follow(dir, r, c)
			require.True(t, term)
		}
	}
	// the plateau drains through the pour cell
	assert.GreaterOrEqual(t, acc.Value(n-1, 4), int32((n-2)*(n-2)))
}

func TestAccumulateDetectsCycle(t *testing.T) {
	dir := grid.NewIndx(testDef(3))
	dir.Set(1, 1, 2) // east
	dir.Set(1, 2, 32) // west, closing a 2-cycle
	_, err := Accumulate(dir)
	assert.ErrorIs(t, err, ErrRoutingCycle)
}

func TestConditionedBowlDrainsToOneOutlet(t *testing.T) {
	// symmetric bowl with a breached single-cell pit: the whole surface
	// funnels through the pit and out the carved path
	dem := grid.NewReal(testDef(10))
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			dr, dc := float64(r-5), float64(c-5)
			dem.Set(r, c, 10+dr*dr+dc*dc)
		}
	}
	dem.Set(5, 5, 9)
	cond, err := condition.Resolve(dem, condition.Params{MaxBreachDist: 5, MaxBreachCost: 1000})
	require.NoError(t, err)

	dir := Direction(cond)
	acc, err := Accumulate(dir)
	require.NoError(t, err)

	total, amax := int32(0), int32(0)
	for r := 0; r < 10; r++ {
		for c := 0; c < 10; c++ {
			if dir.Value(r, c) == Sink {
				total += acc.Value(r, c)
				if acc.Value(r, c) > amax {
					amax = acc.Value(r, c)
				}
			}
		}
	}
	assert.Equal(t, int32(100), total)
	assert.GreaterOrEqual(t, amax, int32(90), "the breach outlet drains nearly the full bowl")
}

func TestNoDataUntouched(t *testing.T) {
	dem := tiltedPlane(6)
	dem.Set(2, 2, dem.GD.NoData)
	dir := Direction(dem)
	assert.True(t, dir.IsNoData(2, 2))
	acc, err := Accumulate(dir)
	require.NoError(t, err)
	assert.True(t, acc.IsNoData(2, 2))
}
