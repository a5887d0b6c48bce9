package grid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDef() *Definition {
	return &Definition{Nrow: 4, Ncol: 5, Cw: 2, Eorig: 100, Norig: 200, Proj: "EPSG:32611", NoData: -9999}
}

func TestCellCentroidIndexRoundTrip(t *testing.T) {
	gd := testDef()
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			x, y := gd.CellCentroid(r, c)
			rr, cc, ok := gd.CellIndex(x, y)
			require.True(t, ok)
			assert.Equal(t, r, rr)
			assert.Equal(t, c, cc)
		}
	}

	// northwest corner cell holds the frame's top-left coordinate
	x, y := gd.CellCentroid(0, 0)
	assert.InDelta(t, 101., x, 1e-12)
	assert.InDelta(t, 207., y, 1e-12)

	_, _, ok := gd.CellIndex(gd.Eorig-1, gd.Norig)
	assert.False(t, ok)
}

func TestCompatible(t *testing.T) {
	gd := testDef()
	assert.True(t, gd.Compatible(testDef()))

	o := testDef()
	o.Proj = "EPSG:26911"
	assert.False(t, gd.Compatible(o))

	o = testDef()
	o.Eorig += gd.Cw
	assert.False(t, gd.Compatible(o))

	assert.False(t, gd.Compatible(nil))
}

func TestASCRoundTrip(t *testing.T) {
	gd := testDef()
	g := NewReal(gd)
	for r := 0; r < gd.Nrow; r++ {
		for c := 0; c < gd.Ncol; c++ {
			g.Set(r, c, float64(r*10+c))
		}
	}
	g.Set(1, 1, gd.NoData)

	fp := filepath.Join(t.TempDir(), "t.asc")
	require.NoError(t, g.SaveASC(fp))

	got, err := ReadASC(fp, gd.Proj)
	require.NoError(t, err)
	if d := cmp.Diff(gd, got.GD); d != "" {
		t.Fatalf("definition mismatch (-want +got):\n%s", d)
	}
	assert.Equal(t, g.A, got.A)
	assert.True(t, got.IsNoData(1, 1))
	assert.Equal(t, gd.Ncells()-1, got.Nactive())
}

func TestReadASCRejectsMalformed(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "bad.asc")
	require.NoError(t, writeFile(fp, "ncols 3\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\nNODATA_value -9999\n1 2 3\n4 5\n"))
	_, err := ReadASC(fp, "")
	assert.Error(t, err)

	_, err = ReadASC(filepath.Join(dir, "missing.asc"), "")
	assert.Error(t, err)
}

func writeFile(fp, s string) error { return os.WriteFile(fp, []byte(s), 0644) }
