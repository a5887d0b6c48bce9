package profile

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// RenderLongProfile draws elevation against distance-from-outlet for one
// watershed's trunk channel and writes a PNG.
func RenderLongProfile(res *Result, fp string) error {
	if len(res.Samples) == 0 {
		return fmt.Errorf("profile.RenderLongProfile: watershed %d has no samples", res.WatershedID)
	}
	xys := make(plotter.XYs, len(res.Samples))
	for i, s := range res.Samples {
		xys[i].X = s.Dist
		xys[i].Y = s.Elev
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("watershed %d  (ksn mean %.1f)", res.WatershedID, res.Stats.KsnMean)
	p.X.Label.Text = "distance from outlet (m)"
	p.Y.Label.Text = "elevation (m)"
	p.Add(plotter.NewGrid())

	ln, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("profile.RenderLongProfile: %w", err)
	}
	p.Add(ln)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, fp); err != nil {
		return fmt.Errorf("profile.RenderLongProfile: %w", err)
	}
	return nil
}
