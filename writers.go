package ksn

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/maseology/mmio"

	"github.com/theletterandrew/ksn-project/profile"
	"github.com/theletterandrew/ksn-project/stream"
	"github.com/theletterandrew/ksn-project/watershed"
)

type streamRec struct {
	geom.LineString
	SegID  int
	DownID int
	Acc    int
}

func writeStreamsShp(n *stream.Network, fp string, tol float64) error {
	e, err := shp.NewEncoder(fp, streamRec{})
	if err != nil {
		return fmt.Errorf("writeStreamsShp: %w", err)
	}
	defer e.Close()
	for i := range n.Segments {
		s := &n.Segments[i]
		rec := streamRec{
			LineString: n.Polyline(s, tol),
			SegID:      s.ID,
			DownID:     s.DownID,
			Acc:        int(s.Acc),
		}
		if err := e.Encode(rec); err != nil {
			return fmt.Errorf("writeStreamsShp: %w", err)
		}
	}
	return nil
}

type watershedRec struct {
	geom.Polygon
	ID      int
	Parent  int
	Ncell   int
	AreaKm2 float64
}

func writeWatershedsShp(wss []*watershed.Watershed, fp string) error {
	e, err := shp.NewEncoder(fp, watershedRec{})
	if err != nil {
		return fmt.Errorf("writeWatershedsShp: %w", err)
	}
	defer e.Close()
	for _, ws := range wss {
		rec := watershedRec{
			Polygon: ws.Bounds,
			ID:      ws.ID,
			Parent:  ws.Parent,
			Ncell:   ws.Ncell,
			AreaKm2: ws.AreaKm2,
		}
		if err := e.Encode(rec); err != nil {
			return fmt.Errorf("writeWatershedsShp: %w", err)
		}
	}
	return nil
}

type ksnRec struct {
	geom.Point
	Ksn     float64
	Slope   float64
	AreaKm2 float64
	Elev    float64
}

func writeKsnShp(res *profile.Result, fp string) error {
	e, err := shp.NewEncoder(fp, ksnRec{})
	if err != nil {
		return fmt.Errorf("writeKsnShp: %w", err)
	}
	defer e.Close()
	for _, pt := range res.Points {
		rec := ksnRec{
			Point:   geom.Point{X: pt.X, Y: pt.Y},
			Ksn:     pt.Ksn,
			Slope:   pt.Slope,
			AreaKm2: pt.AreaKm2,
			Elev:    pt.Elev,
		}
		if err := e.Encode(rec); err != nil {
			return fmt.Errorf("writeKsnShp: %w", err)
		}
	}
	return nil
}

func writeProfileCSV(res *profile.Result, fp string) error {
	n := len(res.Samples)
	d, z, s, a, k := make([]interface{}, n), make([]interface{}, n), make([]interface{}, n), make([]interface{}, n), make([]interface{}, n)
	for i, smp := range res.Samples {
		d[i], z[i], s[i], a[i], k[i] = smp.Dist, smp.Elev, smp.Slope, smp.AreaKm2, smp.Ksn
	}
	mmio.WriteCSV(fp, "dist,elev,slope,area_km2,ksn", d, z, s, a, k)
	return nil
}
