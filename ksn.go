// Package ksn chains hydrological conditioning, D8 flow routing, stream
// extraction, watershed delineation and slope-area channel-steepness
// analysis over one DEM, persisting an artifact per stage.
package ksn

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/gosuri/uiprogress"
	"github.com/maseology/mmio"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theletterandrew/ksn-project/condition"
	"github.com/theletterandrew/ksn-project/flow"
	"github.com/theletterandrew/ksn-project/grid"
	"github.com/theletterandrew/ksn-project/profile"
	"github.com/theletterandrew/ksn-project/stream"
	"github.com/theletterandrew/ksn-project/watershed"
)

// Pipeline runs the full terrain-analysis chain. Each stage consumes the
// previous stage's raster and produces an immutable artifact; a stage
// either completes or aborts the run.
type Pipeline struct {
	cfg Config
	log *zap.Logger
}

// Summary accounts for a completed run, including contained per-watershed
// warnings.
type Summary struct {
	Ncells      int
	Nsegments   int
	Nwatersheds int
	Empty       []EmptyResult
	Results     []*profile.Result
	Watersheds  []*watershed.Watershed
}

func New(cfg Config, log *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{cfg: cfg, log: log}, nil
}

// Run executes every stage. Cancellation is coarse-grained: the context
// is consulted between stages only.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	cfg := &p.cfg
	tt := mmio.NewTimer()
	mmio.MakeDir(cfg.OutDir)
	art := func(name string) string { return filepath.Join(cfg.OutDir, name) }

	dem, err := grid.ReadASC(cfg.DEM, cfg.Proj)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	if dem.Nactive() == 0 {
		return nil, fmt.Errorf("%w: %s holds no data cells", ErrInput, cfg.DEM)
	}
	p.log.Info("dem loaded",
		zap.Int("nrow", dem.GD.Nrow), zap.Int("ncol", dem.GD.Ncol),
		zap.Float64("cellsize", dem.GD.Cw), zap.String("proj", dem.GD.Proj))

	cands, err := watershed.ReadCandidates(cfg.PourPoints, cfg.UTMZone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInput, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// stage 1: conditioning
	cond, err := condition.Resolve(dem, condition.Params{
		MaxBreachDist: cfg.MaxBreachDist,
		MaxBreachCost: cfg.MaxBreachCost,
	})
	if err != nil {
		return nil, err
	}
	if err := cond.SaveASC(art("dem_conditioned.asc")); err != nil {
		return nil, err
	}
	tt.Lap("conditioning complete")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// stage 2: routing
	dir := flow.Direction(cond)
	acc, err := flow.Accumulate(dir)
	if err != nil {
		return nil, err
	}
	if err := dir.SaveBIL(art("flow_direction.bil")); err != nil {
		return nil, err
	}
	if err := acc.SaveBIL(art("flow_accumulation.bil")); err != nil {
		return nil, err
	}
	tt.Lap("flow routing complete")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// stage 3: stream network
	net, err := stream.Extract(dir, acc, cfg.StreamThreshold)
	if err != nil {
		return nil, err
	}
	if err := writeStreamsShp(net, art("streams.shp"), cfg.SimplifyTol); err != nil {
		return nil, err
	}
	p.log.Info("stream network extracted", zap.Int("segments", len(net.Segments)))
	tt.Lap("stream extraction complete")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// stage 4: watersheds
	wss, err := watershed.Delineate(dir, acc, cands, watershed.Params{
		MinDrainageArea: cfg.MinDrainageArea,
		SnapRadius:      cfg.SnapRadius,
	})
	if err != nil {
		return nil, err
	}
	if err := writeWatershedsShp(wss, art("watersheds.shp")); err != nil {
		return nil, err
	}
	p.log.Info("watersheds delineated",
		zap.Int("candidates", len(cands)), zap.Int("retained", len(wss)))
	tt.Lap("watershed delineation complete")
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// stage 5: per-watershed ksn, read-only over the shared rasters
	sum := &Summary{
		Ncells:      dem.Nactive(),
		Nsegments:   len(net.Segments),
		Nwatersheds: len(wss),
		Watersheds:  wss,
	}
	pp := profile.Params{
		Theta:           cfg.Theta,
		SmoothWindow:    cfg.SmoothWindow,
		SampleInterval:  cfg.SampleInterval,
		StreamThreshold: cfg.StreamThreshold,
	}

	uiprogress.Start()
	bar := uiprogress.AddBar(len(wss)).AppendCompleted()
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	results := make([]*profile.Result, len(wss))
	for i, ws := range wss {
		i, ws := i, ws
		g.Go(func() error {
			res, err := profile.Build(cond, dir, acc, ws, pp)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = res
			if res.Empty {
				sum.Empty = append(sum.Empty, EmptyResult{WatershedID: ws.ID})
			}
			mu.Unlock()
			bar.Incr()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		uiprogress.Stop()
		return nil, err
	}
	uiprogress.Stop()
	sum.Results = results
	tt.Lap("ksn analysis complete")

	for _, res := range results {
		if res.Empty {
			p.log.Warn("empty watershed skipped", zap.Int("id", res.WatershedID))
			continue
		}
		prfx := art(fmt.Sprintf("watershed_%d", res.WatershedID))
		if err := writeKsnShp(res, prfx+"_ksn.shp"); err != nil {
			return nil, err
		}
		if err := writeProfileCSV(res, prfx+"_profile.csv"); err != nil {
			return nil, err
		}
		if cfg.WritePlots {
			if err := profile.RenderLongProfile(res, prfx+"_profile.png"); err != nil {
				return nil, err
			}
		}
		p.log.Info("watershed profiled",
			zap.Int("id", res.WatershedID),
			zap.Int("points", len(res.Points)),
			zap.Float64("ksn_mean", res.Stats.KsnMean),
			zap.Float64("theta_fit", res.Stats.ThetaFit))
	}

	if cfg.SQLitePath != "" {
		if err := writeKsnStore(cfg.SQLitePath, results); err != nil {
			return nil, err
		}
	}
	tt.Print("pipeline complete")
	return sum, nil
}
