// Package watershed snaps candidate outlets onto the drainage network and
// delineates their upstream catchments from the D8 pointer grid.
package watershed

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/im7mortal/UTM"
	"github.com/theletterandrew/ksn-project/grid"
)

// Candidate is an approximate outlet location in grid coordinates.
type Candidate struct {
	ID   int
	X, Y float64
}

// PourPoint is a candidate snapped onto the cell of maximum accumulation
// within the snap radius.
type PourPoint struct {
	ID       int
	Row, Col int
	Acc      int32
}

// ReadCandidates loads an id,x,y CSV. When utmZone > 0 the coordinates
// are interpreted as lat,lon and projected onto that UTM zone to match
// the raster frame.
func ReadCandidates(fp string, utmZone int) ([]Candidate, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("watershed.ReadCandidates: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("watershed.ReadCandidates: %w", err)
	}
	var out []Candidate
	for i, rec := range rows {
		if len(rec) < 3 {
			return nil, fmt.Errorf("watershed.ReadCandidates: row %d has %d fields, want 3", i+1, len(rec))
		}
		id, err := strconv.Atoi(rec[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("watershed.ReadCandidates: row %d: %w", i+1, err)
		}
		a, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("watershed.ReadCandidates: row %d: %w", i+1, err)
		}
		b, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("watershed.ReadCandidates: row %d: %w", i+1, err)
		}
		if utmZone > 0 {
			e, n, zn, _, err := UTM.FromLatLon(a, b, a >= 0)
			if err != nil {
				return nil, fmt.Errorf("watershed.ReadCandidates: row %d: %w", i+1, err)
			}
			if zn != utmZone {
				return nil, fmt.Errorf("watershed.ReadCandidates: row %d falls in UTM zone %d, raster frame is zone %d", i+1, zn, utmZone)
			}
			a, b = e, n
		}
		out = append(out, Candidate{ID: id, X: a, Y: b})
	}
	return out, nil
}

// Snap relocates a candidate to the maximum-accumulation cell within
// radius (world units) of its position; ok=false when the candidate falls
// outside the raster or only nodata lies within reach.
func Snap(acc *grid.Indx, cand Candidate, radius float64) (PourPoint, bool) {
	gd := acc.GD
	r0, c0, ok := gd.CellIndex(cand.X, cand.Y)
	if !ok {
		return PourPoint{}, false
	}
	nr := int(radius / gd.Cw)
	pp, found := PourPoint{ID: cand.ID, Acc: -1}, false
	r2 := radius * radius
	for r := r0 - nr; r <= r0+nr; r++ {
		for c := c0 - nr; c <= c0+nr; c++ {
			if r < 0 || c < 0 || r >= gd.Nrow || c >= gd.Ncol || acc.IsNoData(r, c) {
				continue
			}
			if r != r0 || c != c0 { // containing cell always qualifies
				x, y := gd.CellCentroid(r, c)
				if dx, dy := x-cand.X, y-cand.Y; dx*dx+dy*dy > r2 {
					continue
				}
			}
			if v := acc.Value(r, c); v > pp.Acc {
				pp.Row, pp.Col, pp.Acc = r, c, v
				found = true
			}
		}
	}
	return pp, found
}
