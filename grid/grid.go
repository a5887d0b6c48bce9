package grid

import "math"

// Definition holds the geospatial frame shared by every raster derived
// from one DEM: dimensions, cell width, lower-left origin, CRS identifier
// and the nodata sentinel. Rasters with differing definitions never mix.
type Definition struct {
	Nrow, Ncol   int
	Cw           float64 // cell width (grids are square-celled and uniform)
	Eorig, Norig float64 // lower-left corner
	Proj         string  // CRS identifier, e.g. "EPSG:32611"
	NoData       float64
}

func (gd *Definition) Ncells() int { return gd.Nrow * gd.Ncol }

func (gd *Definition) CellArea() float64 { return gd.Cw * gd.Cw }

// Compatible reports whether two definitions describe the same frame.
// CRS strings must match exactly; origins within half a cell.
func (gd *Definition) Compatible(o *Definition) bool {
	if o == nil || gd.Nrow != o.Nrow || gd.Ncol != o.Ncol || gd.Proj != o.Proj {
		return false
	}
	ht := gd.Cw / 2.
	return math.Abs(gd.Cw-o.Cw) < 1e-9 &&
		math.Abs(gd.Eorig-o.Eorig) < ht &&
		math.Abs(gd.Norig-o.Norig) < ht
}

// CellCentroid returns the world coordinate of cell (row,col).
// Row 0 is the northern-most row.
func (gd *Definition) CellCentroid(r, c int) (x, y float64) {
	x = gd.Eorig + (float64(c)+.5)*gd.Cw
	y = gd.Norig + (float64(gd.Nrow-r)-.5)*gd.Cw
	return
}

// CellIndex returns the cell containing world coordinate (x,y),
// ok=false when outside the frame.
func (gd *Definition) CellIndex(x, y float64) (r, c int, ok bool) {
	c = int(math.Floor((x - gd.Eorig) / gd.Cw))
	r = gd.Nrow - 1 - int(math.Floor((y-gd.Norig)/gd.Cw))
	ok = r >= 0 && r < gd.Nrow && c >= 0 && c < gd.Ncol
	return
}
