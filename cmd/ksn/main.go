package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	ksn "github.com/theletterandrew/ksn-project"
	"github.com/theletterandrew/ksn-project/condition"
	"github.com/theletterandrew/ksn-project/grid"
)

var (
	cfgPath string
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ksn",
	Short: "Channel-steepness terrain analysis over lidar DEMs",
	Long: `Conditions an elevation raster, routes D8 flow, extracts the stream
network, delineates watersheds from candidate outlets and computes the
normalized channel steepness index (ksn) per watershed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline from a YAML config",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ksn.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		p, err := ksn.New(cfg, logger)
		if err != nil {
			return err
		}
		sum, err := p.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("\n%d cells, %d stream segments, %d watersheds (%d empty)\n",
			sum.Ncells, sum.Nsegments, sum.Nwatersheds, len(sum.Empty))
		for _, w := range sum.Empty {
			fmt.Println("  " + w.String())
		}
		return nil
	},
}

var conditionCmd = &cobra.Command{
	Use:   "condition <in.asc> <out.asc>",
	Short: "Hydrologically condition a DEM (breach + fill) in isolation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ksn.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		dem, err := grid.ReadASC(args[0], cfg.Proj)
		if err != nil {
			return err
		}
		logger.Info("conditioning",
			zap.String("dem", args[0]),
			zap.Int("max_breach_dist", cfg.MaxBreachDist))
		out, err := condition.Resolve(dem, condition.Params{
			MaxBreachDist: cfg.MaxBreachDist,
			MaxBreachCost: cfg.MaxBreachCost,
		})
		if err != nil {
			return err
		}
		return out.SaveASC(args[1])
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a YAML config without running anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := ksn.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Println("config ok")
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "ksn.yaml", "pipeline configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(runCmd, conditionCmd, validateCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
