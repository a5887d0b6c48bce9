package ksn

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every externally supplied parameter plus the file
// locations the pipeline reads and writes. Zero values are filled from
// Default before validation.
type Config struct {
	DEM        string `yaml:"dem"`         // input ESRI ASCII grid
	Proj       string `yaml:"proj"`        // CRS identifier assigned to the frame
	UTMZone    int    `yaml:"utm_zone"`    // >0: pour-point CSV holds lat,lon for this zone
	PourPoints string `yaml:"pour_points"` // candidate outlet CSV (id,x,y)
	OutDir     string `yaml:"out_dir"`

	MaxBreachDist   int     `yaml:"max_breach_dist"`   // cells
	MaxBreachCost   float64 `yaml:"max_breach_cost"`   // total lowering, m
	StreamThreshold int32   `yaml:"stream_threshold"`  // cells
	MinDrainageArea int32   `yaml:"min_drainage_area"` // cells
	SnapRadius      float64 `yaml:"snap_radius"`       // m
	Theta           float64 `yaml:"theta"`             // reference concavity
	SmoothWindow    int     `yaml:"smoothing_window"`  // odd, cells
	SampleInterval  float64 `yaml:"sample_interval"`   // m
	SimplifyTol     float64 `yaml:"simplify_tol"`      // m, 0 disables

	WritePlots bool   `yaml:"write_plots"`
	SQLitePath string `yaml:"sqlite_path"` // empty disables the point store
}

// Default mirrors the San Bernardino production study settings.
func Default() Config {
	return Config{
		MaxBreachDist:   1000,
		MaxBreachCost:   100,
		StreamThreshold: 1000000,  // ~4 km² at 2 m resolution
		MinDrainageArea: 10000000, // ~40 km² at 2 m resolution
		SnapRadius:      100,
		Theta:           0.45,
		SmoothWindow:    5,
		SampleInterval:  50,
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(fp string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(fp)
	if err != nil {
		return c, fmt.Errorf("ksn.LoadConfig: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("ksn.LoadConfig: %w", err)
	}
	return c, nil
}

// Validate checks every parameter domain once, before any stage executes.
func (c *Config) Validate() error {
	switch {
	case c.MaxBreachDist <= 0:
		return &ThresholdError{"max_breach_dist", "must be a positive cell count"}
	case c.MaxBreachCost <= 0:
		return &ThresholdError{"max_breach_cost", "must be positive"}
	case c.StreamThreshold <= 0:
		return &ThresholdError{"stream_threshold", "must be a positive cell count"}
	case c.MinDrainageArea <= 0:
		return &ThresholdError{"min_drainage_area", "must be a positive cell count"}
	case c.SnapRadius <= 0:
		return &ThresholdError{"snap_radius", "must be a positive distance"}
	case c.Theta <= 0 || c.Theta >= 1:
		return &ThresholdError{"theta", fmt.Sprintf("must lie in (0,1), got %g", c.Theta)}
	case c.SmoothWindow < 1 || c.SmoothWindow%2 == 0:
		return &ThresholdError{"smoothing_window", fmt.Sprintf("must be an odd cell count ≥ 1, got %d", c.SmoothWindow)}
	case c.SampleInterval <= 0:
		return &ThresholdError{"sample_interval", "must be a positive distance"}
	case c.SimplifyTol < 0:
		return &ThresholdError{"simplify_tol", "must be non-negative"}
	}
	return nil
}
