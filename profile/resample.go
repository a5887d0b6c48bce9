package profile

import (
	"math"

	"github.com/theletterandrew/ksn-project/grid"
)

// resample walks the trunk channel at a fixed arc-length interval,
// linearly interpolating between adjacent stream cells, and emits the
// outlet and head endpoints explicitly. trunk is ordered outlet-first.
func resample(dem *grid.Real, dir, acc *grid.Indx, trunk [][2]int, inStream func(int, int) bool, p Params) []Sample {
	if len(trunk) == 0 {
		return nil
	}
	gd := dem.GD

	type rec struct{ d, z, s, akm2, k float64 }
	recs := make([]rec, len(trunk))

	d := 0.
	for i, cell := range trunk {
		if i > 0 {
			d += stepDist(gd, trunk[i-1], cell)
		}
		s := smoothedSlope(dem, dir, acc, inStream, cell[0], cell[1], p.SmoothWindow)
		am2 := float64(acc.Value(cell[0], cell[1])) * gd.CellArea()
		recs[i] = rec{d: d, z: dem.Value(cell[0], cell[1]), s: s, akm2: am2 / 1e6, k: Ksn(s, am2, p.Theta)}
	}

	mk := func(r rec) Sample {
		k := r.k
		if math.IsNaN(k) {
			k = 0
		}
		return Sample{Dist: r.d, Elev: r.z, Slope: r.s, AreaKm2: r.akm2, Ksn: k}
	}
	lerp := func(a, b rec, t float64) rec {
		f := func(x, y float64) float64 { return x + t*(y-x) }
		o := rec{d: f(a.d, b.d), z: f(a.z, b.z), s: f(a.s, b.s), akm2: f(a.akm2, b.akm2)}
		o.k = Ksn(o.s, o.akm2*1e6, p.Theta)
		return o
	}

	var out []Sample
	out = append(out, mk(recs[0])) // outlet
	total := recs[len(recs)-1].d
	j := 0
	for d := p.SampleInterval; d < total; d += p.SampleInterval {
		for j < len(recs)-2 && recs[j+1].d < d {
			j++
		}
		a, b := recs[j], recs[j+1]
		t := 0.
		if b.d > a.d {
			t = (d - a.d) / (b.d - a.d)
		}
		out = append(out, mk(lerp(a, b, t)))
	}
	if total > 0 {
		out = append(out, mk(recs[len(recs)-1])) // head
	}
	return out
}
