package profile

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a watershed's ksn point set. ThetaFit and KsFit come
// from the log-log slope–area regression S = ks·A^-θ and serve as a
// check against the imposed reference concavity.
type Stats struct {
	N        int
	KsnMean  float64
	KsnStd   float64
	ThetaFit float64
	KsFit    float64
}

func summarize(pts []KsnPoint, theta float64) Stats {
	if len(pts) == 0 {
		return Stats{}
	}
	ksn := make([]float64, len(pts))
	var la, ls []float64
	for i, p := range pts {
		ksn[i] = p.Ksn
		if p.Slope > 0 && p.AreaKm2 > 0 {
			la = append(la, math.Log10(p.AreaKm2*1e6))
			ls = append(ls, math.Log10(p.Slope))
		}
	}
	mean, std := stat.MeanStdDev(ksn, nil)
	if math.IsNaN(std) { // single point
		std = 0
	}
	st := Stats{N: len(pts), KsnMean: mean, KsnStd: std}
	if len(la) >= 2 {
		b, m := stat.LinearRegression(la, ls, nil, false)
		st.ThetaFit = -m
		st.KsFit = math.Pow(10, b)
	}
	return st
}
