package grid

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadASC imports an ESRI ASCII grid. The CRS identifier is not part of
// the format and is assigned by the caller.
func ReadASC(fp, proj string) (*Real, error) {
	f, err := os.Open(fp)
	if err != nil {
		return nil, fmt.Errorf("grid.ReadASC: %w", err)
	}
	defer f.Close()

	scn := bufio.NewScanner(f)
	scn.Buffer(make([]byte, 1024*1024), 1024*1024)

	gd := Definition{NoData: -9999., Proj: proj}
	nhdr := 0
	var vals []float64
	for scn.Scan() {
		flds := strings.Fields(scn.Text())
		if len(flds) == 0 {
			continue
		}
		if nhdr < 6 {
			if len(flds) != 2 {
				return nil, fmt.Errorf("grid.ReadASC: malformed header line %q", scn.Text())
			}
			v, err := strconv.ParseFloat(flds[1], 64)
			if err != nil {
				return nil, fmt.Errorf("grid.ReadASC: header %s: %w", flds[0], err)
			}
			switch strings.ToLower(flds[0]) {
			case "ncols":
				gd.Ncol = int(v)
			case "nrows":
				gd.Nrow = int(v)
			case "xllcorner":
				gd.Eorig = v
			case "yllcorner":
				gd.Norig = v
			case "cellsize":
				gd.Cw = v
			case "nodata_value":
				gd.NoData = v
			default:
				return nil, fmt.Errorf("grid.ReadASC: unknown header key %q", flds[0])
			}
			nhdr++
			continue
		}
		if vals == nil {
			vals = make([]float64, 0, gd.Ncells())
		}
		for _, s := range flds {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("grid.ReadASC: %w", err)
			}
			vals = append(vals, v)
		}
	}
	if err := scn.Err(); err != nil {
		return nil, fmt.Errorf("grid.ReadASC: %w", err)
	}
	if gd.Nrow <= 0 || gd.Ncol <= 0 || gd.Cw <= 0 {
		return nil, fmt.Errorf("grid.ReadASC: incomplete header in %s", fp)
	}
	if len(vals) != gd.Ncells() {
		return nil, fmt.Errorf("grid.ReadASC: %s holds %d values, expected %d", fp, len(vals), gd.Ncells())
	}
	return &Real{GD: &gd, A: vals}, nil
}

// SaveASC exports g as an ESRI ASCII grid.
func (g *Real) SaveASC(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf("grid.SaveASC: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	gd := g.GD
	fmt.Fprintf(w, "ncols %d\nnrows %d\nxllcorner %f\nyllcorner %f\ncellsize %f\nNODATA_value %f\n",
		gd.Ncol, gd.Nrow, gd.Eorig, gd.Norig, gd.Cw, gd.NoData)
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			if c > 0 {
				w.WriteByte(' ')
			}
			fmt.Fprintf(w, "%g", g.Value(r, c))
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}

// SaveBIL writes g as a little-endian float32 .bil with an ESRI .hdr sidecar.
func (g *Real) SaveBIL(fp string) error {
	f32 := make([]float32, len(g.A))
	for i, v := range g.A {
		f32[i] = float32(v)
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, f32); err != nil {
		return fmt.Errorf("grid.SaveBIL: %w", err)
	}
	if err := os.WriteFile(fp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("grid.SaveBIL: %w", err)
	}
	return writeHDR(fp, g.GD, 32, "FLOAT")
}

// SaveBIL writes g as a little-endian int32 .bil with an ESRI .hdr sidecar.
func (g *Indx) SaveBIL(fp string) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, g.A); err != nil {
		return fmt.Errorf("grid.SaveBIL: %w", err)
	}
	if err := os.WriteFile(fp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("grid.SaveBIL: %w", err)
	}
	return writeHDR(fp, g.GD, 32, "SIGNEDINT")
}

func writeHDR(bilFP string, gd *Definition, nbits int, pixeltype string) error {
	fp := strings.TrimSuffix(bilFP, ".bil") + ".hdr"
	s := fmt.Sprintf("BYTEORDER I\nLAYOUT BIL\nNROWS %d\nNCOLS %d\nNBANDS 1\nNBITS %d\nPIXELTYPE %s\nULXMAP %f\nULYMAP %f\nXDIM %f\nYDIM %f\nNODATA %d\n",
		gd.Nrow, gd.Ncol, nbits, pixeltype,
		gd.Eorig+gd.Cw/2., gd.Norig+(float64(gd.Nrow)-.5)*gd.Cw, gd.Cw, gd.Cw, int(IndxNoData))
	if err := os.WriteFile(fp, []byte(s), 0644); err != nil {
		return fmt.Errorf("grid.writeHDR: %w", err)
	}
	return nil
}
