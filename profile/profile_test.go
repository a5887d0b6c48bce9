package profile

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theletterandrew/ksn-project/grid"
	"github.com/theletterandrew/ksn-project/watershed"
)

func testDef() *grid.Definition {
	return &grid.Definition{Nrow: 3, Ncol: 12, Cw: 10, Proj: "EPSG:32611", NoData: -9999}
}

// channelFixture hand-routes a single east-flowing channel along row 1
// with a uniform 0.1 m/m gradient; everything off-channel is nodata.
func channelFixture() (dem *grid.Real, dir, acc *grid.Indx, ws *watershed.Watershed) {
	gd := testDef()
	dem, dir, acc = grid.NewReal(gd), grid.NewIndx(gd), grid.NewIndx(gd)
	ws = &watershed.Watershed{ID: 4, Mask: make([]bool, gd.Ncells())}
	for c := 0; c < 12; c++ {
		dem.Set(1, c, float64(11-c))
		dir.Set(1, c, 2) // east
		acc.Set(1, c, int32(c+1))
		ws.Mask[1*gd.Ncol+c] = true
	}
	dir.Set(1, 11, 0) // outlet
	ws.Pour = watershed.PourPoint{ID: 4, Row: 1, Col: 11, Acc: 12}
	return
}

func testParams() Params {
	return Params{Theta: .45, SmoothWindow: 5, SampleInterval: 25, StreamThreshold: 3}
}

func TestKsn(t *testing.T) {
	// 0.1 m/m at 4 km² drainage
	assert.InDelta(t, 93.5, Ksn(.1, 4e6, .45), .2)

	assert.True(t, math.IsNaN(Ksn(0, 4e6, .45)))
	assert.True(t, math.IsNaN(Ksn(-.1, 4e6, .45)))
	assert.True(t, math.IsNaN(Ksn(.1, 0, .45)))
}

func TestBuildUniformChannel(t *testing.T) {
	dem, dir, acc, ws := channelFixture()
	res, err := Build(dem, dir, acc, ws, testParams())
	require.NoError(t, err)
	require.False(t, res.Empty)

	// ten cells clear the stream threshold (acc ≥ 3)
	require.Len(t, res.Points, 10)
	for _, pt := range res.Points {
		assert.InDelta(t, .1, pt.Slope, 1e-12, "uniform gradient at (%d,%d)", pt.Row, pt.Col)
		assert.InDelta(t, Ksn(pt.Slope, pt.AreaKm2*1e6, .45), pt.Ksn, 1e-12)
		assert.False(t, math.IsNaN(pt.Ksn))
	}

	// constant slope over varying area fits θ ≈ 0 and ks ≈ the slope
	assert.Equal(t, 10, res.Stats.N)
	assert.Greater(t, res.Stats.KsnMean, 0.)
	assert.InDelta(t, 0, res.Stats.ThetaFit, 1e-9)
	assert.InDelta(t, .1, res.Stats.KsFit, 1e-9)
}

func TestBuildResampling(t *testing.T) {
	dem, dir, acc, ws := channelFixture()
	res, err := Build(dem, dir, acc, ws, testParams())
	require.NoError(t, err)

	// trunk runs 90 m from the outlet to the threshold head: explicit
	// endpoints plus interior samples at 25, 50 and 75 m
	require.Len(t, res.Samples, 5)
	assert.Equal(t, 0., res.Samples[0].Dist)
	assert.Equal(t, 0., res.Samples[0].Elev)
	assert.Equal(t, 90., res.Samples[4].Dist)
	assert.Equal(t, 9., res.Samples[4].Elev)

	// interpolation on a linear profile is exact
	assert.InDelta(t, 2.5, res.Samples[1].Elev, 1e-12)
	for i := 1; i < len(res.Samples); i++ {
		assert.Greater(t, res.Samples[i].Dist, res.Samples[i-1].Dist)
		assert.Greater(t, res.Samples[i].Elev, res.Samples[i-1].Elev)
		assert.Greater(t, res.Samples[i].AreaKm2, 0.)
	}
}

func TestBuildEmptyWatershed(t *testing.T) {
	dem, dir, acc, ws := channelFixture()
	p := testParams()
	p.StreamThreshold = 1000 // nothing qualifies
	res, err := Build(dem, dir, acc, ws, p)
	require.NoError(t, err, "an unchannelized watershed is a warning, not an error")
	assert.True(t, res.Empty)
	assert.Empty(t, res.Points)
	assert.Empty(t, res.Samples)
	assert.Equal(t, 4, res.WatershedID)
}

func TestBuildFrameMismatch(t *testing.T) {
	dem, dir, acc, ws := channelFixture()
	other := testDef()
	other.Eorig += 100
	_, err := Build(dem, dir, grid.NewIndx(other), ws, testParams())
	assert.Error(t, err)
	_, err = Build(dem, grid.NewIndx(other), acc, ws, testParams())
	assert.Error(t, err)
}
