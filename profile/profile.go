// Package profile computes normalized channel steepness (ksn) over a
// watershed's stream cells and resamples the trunk channel into an
// ordered long profile.
package profile

import (
	"fmt"
	"math"

	"github.com/theletterandrew/ksn-project/flow"
	"github.com/theletterandrew/ksn-project/grid"
	"github.com/theletterandrew/ksn-project/watershed"
)

type Params struct {
	Theta           float64 // reference concavity, 0 < θ < 1
	SmoothWindow    int     // odd cell count for slope averaging
	SampleInterval  float64 // profile arc-length step, world units
	StreamThreshold int32   // accumulation (cells) defining stream cells
}

// KsnPoint is one qualifying stream cell.
type KsnPoint struct {
	Row, Col int
	X, Y     float64
	Elev     float64
	Slope    float64 // m/m, window-smoothed
	AreaKm2  float64
	Ksn      float64
}

// Sample is one resampled trunk-profile record, distance measured from
// the outlet.
type Sample struct {
	Dist, Elev, Slope, AreaKm2, Ksn float64
}

// Result bundles a watershed's ksn point set, trunk profile and summary
// statistics. Empty marks a watershed with no qualifying stream cells —
// a warning, never an error.
type Result struct {
	WatershedID int
	Points      []KsnPoint
	Samples     []Sample
	Stats       Stats
	Empty       bool
}

// Ksn evaluates slope × area^θ with area in m². Non-positive slope or
// area yields NaN, and such cells are excluded from output.
func Ksn(slope, areaM2, theta float64) float64 {
	if slope <= 0 || areaM2 <= 0 {
		return math.NaN()
	}
	return slope * math.Pow(areaM2, theta)
}

// Build computes the ksn point set and trunk profile for one watershed.
// dem is the conditioned surface; all rasters share one frame.
func Build(dem *grid.Real, dir, acc *grid.Indx, ws *watershed.Watershed, p Params) (*Result, error) {
	gd := dem.GD
	if !gd.Compatible(dir.GD) || !gd.Compatible(acc.GD) {
		return nil, fmt.Errorf("profile.Build: raster frames disagree")
	}
	res := &Result{WatershedID: ws.ID}

	inStream := func(r, c int) bool {
		if r < 0 || c < 0 || r >= gd.Nrow || c >= gd.Ncol {
			return false
		}
		if !ws.Mask[r*gd.Ncol+c] || acc.IsNoData(r, c) {
			return false
		}
		return acc.Value(r, c) >= p.StreamThreshold
	}

	nstrm := 0
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if inStream(r, c) {
				nstrm++
			}
		}
	}
	if nstrm == 0 {
		res.Empty = true
		return res, nil
	}

	// trunk channel: max-accumulation climb from the pour cell
	trunk := [][2]int{{ws.Pour.Row, ws.Pour.Col}}
	for {
		cur := trunk[len(trunk)-1]
		best, bacc := [2]int{-1, -1}, int32(-1)
		for _, u := range flow.Upstream(dir, cur[0], cur[1]) {
			if inStream(u[0], u[1]) && acc.Value(u[0], u[1]) > bacc {
				best, bacc = u, acc.Value(u[0], u[1])
			}
		}
		if best[0] < 0 {
			break
		}
		trunk = append(trunk, best)
	}

	// ksn per stream cell, slope smoothed along the local flow path
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if !inStream(r, c) {
				continue
			}
			s := smoothedSlope(dem, dir, acc, inStream, r, c, p.SmoothWindow)
			am2 := float64(acc.Value(r, c)) * gd.CellArea()
			k := Ksn(s, am2, p.Theta)
			if math.IsNaN(k) {
				continue // undefined ksn, excluded
			}
			x, y := gd.CellCentroid(r, c)
			res.Points = append(res.Points, KsnPoint{
				Row: r, Col: c, X: x, Y: y,
				Elev:    dem.Value(r, c),
				Slope:   s,
				AreaKm2: am2 / 1e6,
				Ksn:     k,
			})
		}
	}

	res.Samples = resample(dem, dir, acc, trunk, inStream, p)
	res.Stats = summarize(res.Points, p.Theta)
	return res, nil
}

// smoothedSlope averages centered finite-difference gradients over a
// window of cells walked up the max-accumulation chain and down the
// receiver chain from (r,c).
func smoothedSlope(dem *grid.Real, dir, acc *grid.Indx, inStream func(int, int) bool, r, c, window int) float64 {
	half := window / 2
	chain := [][2]int{{r, c}}

	cur := [2]int{r, c}
	for i := 0; i < half; i++ { // upstream, following the largest contributor
		best, bacc := [2]int{-1, -1}, int32(-1)
		for _, u := range flow.Upstream(dir, cur[0], cur[1]) {
			if inStream(u[0], u[1]) && acc.Value(u[0], u[1]) > bacc {
				best, bacc = u, acc.Value(u[0], u[1])
			}
		}
		if best[0] < 0 {
			break
		}
		chain = append([][2]int{best}, chain...)
		cur = best
	}
	cur = [2]int{r, c}
	for i := 0; i < half; i++ { // downstream
		rr, cc, ok := flow.Receiver(dir, cur[0], cur[1])
		if !ok || !inStream(rr, cc) {
			break
		}
		chain = append(chain, [2]int{rr, cc})
		cur = [2]int{rr, cc}
	}

	sum, n := 0., 0
	for i := range chain {
		if s, ok := centeredSlope(dem, dir, chain, i); ok {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// centeredSlope differences elevation across the neighbors of chain[i]
// along the path, falling back to a one-sided difference at the ends.
func centeredSlope(dem *grid.Real, dir *grid.Indx, chain [][2]int, i int) (float64, bool) {
	up, dn := i, i
	if i > 0 {
		up = i - 1
	}
	if i < len(chain)-1 {
		dn = i + 1
	}
	if up == dn {
		return 0, false
	}
	d := 0.
	for j := up; j < dn; j++ {
		d += stepDist(dem.GD, chain[j], chain[j+1])
	}
	if d == 0 {
		return 0, false
	}
	zu := dem.Value(chain[up][0], chain[up][1])
	zd := dem.Value(chain[dn][0], chain[dn][1])
	return (zu - zd) / d, true
}

func stepDist(gd *grid.Definition, a, b [2]int) float64 {
	if a[0] != b[0] && a[1] != b[1] {
		return gd.Cw * math.Sqrt2
	}
	return gd.Cw
}
