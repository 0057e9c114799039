package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"frogwalk/adapters/api"
	"frogwalk/adapters/excel"
	"frogwalk/adapters/report"
	"frogwalk/domain/lcg"
	"frogwalk/domain/run"
	"frogwalk/domain/stats"
	"frogwalk/domain/walk"
	"frogwalk/internal/config"
	"frogwalk/internal/container"
	"frogwalk/internal/profiling"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "frogwalk",
		Short: "Happy frog random walks driven by a linear congruential generator",
	}
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "ERROR|WARN|INFO|DEBUG|TRACE")

	rootCmd.AddCommand(
		newSimulateCmd(cfg),
		newWalkCmd(cfg),
		newProbabilityCmd(cfg),
		newTheoryCmd(),
		newDrawsCmd(),
		newReplayCmd(cfg),
		newInspectCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// simulationFlags binds the batch parameters; values loaded from the environment are
// the defaults
type simulationFlags struct {
	sim  *config.SimulationConfig
	seed string
}

func bindSimulationFlags(cmd *cobra.Command, cfg *config.Config) *simulationFlags {
	f := &simulationFlags{sim: &cfg.Simulation}
	cmd.Flags().IntVar(&f.sim.NumRuns, "runs", f.sim.NumRuns, "Number of walks")
	cmd.Flags().StringVar(&f.seed, "seed", "", "Base seed; run i uses seed+i (default: derived from the clock)")
	cmd.Flags().IntVar(&f.sim.StepsPerRun, "steps", f.sim.StepsPerRun, "Steps per walk")
	cmd.Flags().IntVar(&f.sim.TargetStep, "target", f.sim.TargetStep, "Step at which the return probability is measured")
	cmd.Flags().IntVar(&f.sim.Dimension, "dimension", f.sim.Dimension, "1 or 2")
	cmd.Flags().IntVar(&f.sim.Workers, "workers", f.sim.Workers, "Concurrent walks; results do not depend on it")
	return f
}

// resolve applies --seed and returns the batch config, deriving a seed when none was set
func (f *simulationFlags) resolve(c *container.Container) (run.Config, error) {
	if f.seed != "" {
		seed, err := config.ParseSeed(f.seed)
		if err != nil {
			return run.Config{}, err
		}
		f.sim.BaseSeed = seed
		f.sim.BaseSeedSet = true
	}

	var explicit *uint64
	if f.sim.BaseSeedSet {
		explicit = &f.sim.BaseSeed
	}
	cfg := f.sim.RunConfig(c.Simulation.BaseSeed(explicit))
	return cfg, cfg.Validate()
}

func newSimulateCmd(cfg *config.Config) *cobra.Command {
	var xlsxPath, reportPath, manifestPath, remote string
	var asJSON bool
	var flags *simulationFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a batch of walks and report the return-to-origin probability",
		Long: `Run a batch of walks, print the probability of being at the origin at the
target step, and optionally export the last trajectory and the final positions.

Example: frogwalk simulate --runs 100 --steps 10000 --target 4 --dimension 2 --seed 42 --xlsx walk.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote != "" {
				return runRemote(cmd.Context(), remote, flags)
			}
			return runSimulate(cmd.Context(), cfg, flags, xlsxPath, reportPath, manifestPath, asJSON)
		},
	}

	flags = bindSimulationFlags(cmd, cfg)
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Write trajectory, final positions and heatmap to this workbook")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write a .md or .html report")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Write the replay manifest as JSON")
	cmd.Flags().StringVar(&remote, "remote", "", "Run on a frogwalk server at this URL instead")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the analysis as JSON")
	return cmd
}

func runSimulate(ctx context.Context, cfg *config.Config, flags *simulationFlags, xlsxPath, reportPath, manifestPath string, asJSON bool) error {
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	runCfg, err := flags.resolve(c)
	if err != nil {
		return err
	}

	result, err := c.Simulation.RunMeasured(ctx, runCfg)
	if err != nil {
		return err
	}
	analysis, err := c.Analysis.Analyze(result.Batch)
	if err != nil {
		return err
	}

	if asJSON {
		out, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		fmt.Println(result.Probability)
		fmt.Printf("Exact probability: %.4f\n", analysis.Theoretical)
		fmt.Println(profiling.Format(result.Measurement))
	}

	if xlsxPath != "" {
		exporter := c.Exporter(xlsxPath)
		defer exporter.Close()
		if err := c.Simulation.Present(ctx, result.Batch, exporter, exporter); err != nil {
			return err
		}
		if err := exporter.WriteSummary(result.Manifest, result.Probability, analysis.Theoretical); err != nil {
			return err
		}
		if err := exporter.Save(); err != nil {
			return err
		}
		fmt.Printf("Workbook written to %s\n", exporter.Path())
	}

	if reportPath != "" {
		path := c.ExportPath(reportPath)
		in := report.Input{Report: analysis, Manifest: result.Manifest, Measurement: &result.Measurement}
		if err := c.ReportRenderer().WriteFile(path, in); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
	}

	if manifestPath != "" {
		out, err := json.MarshalIndent(result.Manifest, "", "  ")
		if err != nil {
			return err
		}
		path := c.ExportPath(manifestPath)
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return err
		}
		fmt.Printf("Manifest written to %s\n", path)
	}

	return nil
}

func runRemote(ctx context.Context, url string, flags *simulationFlags) error {
	req := api.SimulationRequest{
		NumRuns:     &flags.sim.NumRuns,
		StepsPerRun: &flags.sim.StepsPerRun,
		TargetStep:  &flags.sim.TargetStep,
		Dimension:   &flags.sim.Dimension,
		Workers:     &flags.sim.Workers,
	}
	if flags.seed != "" {
		seed, err := config.ParseSeed(flags.seed)
		if err != nil {
			return err
		}
		req.BaseSeed = &seed
	}

	summary, err := api.NewClient(url, 10*time.Minute).Simulate(ctx, req)
	if err != nil {
		return err
	}
	fmt.Printf("Batch %s\n", summary.BatchID)
	fmt.Println(summary.Summary)
	fmt.Printf("Exact probability: %.4f\n", summary.Theoretical)
	fmt.Printf("Fingerprint: %s\n", summary.Fingerprint)
	return nil
}

func newWalkCmd(cfg *config.Config) *cobra.Command {
	var seed string
	var steps, dimension int

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Print every move of a single walk",
		Example: `  frogwalk walk --seed 0 --steps 4 --dimension 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			var explicit *uint64
			if seed != "" {
				s, err := config.ParseSeed(seed)
				if err != nil {
					return err
				}
				explicit = &s
			}
			d, err := walk.ParseDimension(dimension)
			if err != nil {
				return err
			}

			t, err := c.Simulation.Walk(c.Simulation.BaseSeed(explicit), steps, d)
			if err != nil {
				return err
			}
			fmt.Printf("Seed %d\n", t.Seed)
			for i, m := range t.Moves {
				fmt.Printf("Step %d: %s -> %s\n", i+1, m, t.Positions[i+1].Format(d))
			}
			fmt.Printf("Final position: %s\n", t.Final().Format(d))
			if returns := t.ReturnsToOrigin(); len(returns) > 0 {
				fmt.Printf("Back at the origin at steps %v\n", returns)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&seed, "seed", "", "Seed (default: derived from the clock)")
	cmd.Flags().IntVar(&steps, "steps", 10, "Number of steps")
	cmd.Flags().IntVar(&dimension, "dimension", cfg.Simulation.Dimension, "1 or 2")
	return cmd
}

func newProbabilityCmd(cfg *config.Config) *cobra.Command {
	var flags *simulationFlags
	var curve int

	cmd := &cobra.Command{
		Use:   "probability",
		Short: "Compare the empirical and exact return-to-origin probabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			runCfg, err := flags.resolve(c)
			if err != nil {
				return err
			}
			batch, err := c.Simulation.Run(cmd.Context(), runCfg)
			if err != nil {
				return err
			}
			analysis, err := c.Analysis.Analyze(batch)
			if err != nil {
				return err
			}

			fmt.Println(analysis.Probability)
			fmt.Printf("Exact: %.4f, %.0f%% interval [%.4f, %.4f]\n", analysis.Theoretical,
				analysis.Interval.Level*100, analysis.Interval.Lower, analysis.Interval.Upper)

			if curve > 0 {
				points, err := c.Analysis.Curve(batch.Trajectories(), runCfg.Dimension, min(curve, runCfg.StepsPerRun))
				if err != nil {
					return err
				}
				fmt.Println("step  empirical  exact")
				for _, p := range points {
					fmt.Printf("%4d  %9.4f  %5.4f\n", p.Step, p.Empirical, p.Theoretical)
				}
			}
			return nil
		},
	}

	flags = bindSimulationFlags(cmd, cfg)
	cmd.Flags().IntVar(&curve, "curve", 0, "Also print the curve up to this step")
	return cmd
}

func newTheoryCmd() *cobra.Command {
	var dimension, maxStep int

	cmd := &cobra.Command{
		Use:   "theory",
		Short: "Print exact return-to-origin probabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := walk.ParseDimension(dimension)
			if err != nil {
				return err
			}
			c, err := container.New(config.Default())
			if err != nil {
				return err
			}
			values, err := c.Theory.ReturnCurve(d, maxStep)
			if err != nil {
				return err
			}
			for step, p := range values {
				fmt.Printf("%4d  %.6f\n", step, p)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&dimension, "dimension", int(run.DefaultDimension), "1 or 2")
	cmd.Flags().IntVar(&maxStep, "max-step", 20, "Last step to print")
	return cmd
}

func newDrawsCmd() *cobra.Command {
	var seed uint64
	var n int
	var lo, hi float64

	cmd := &cobra.Command{
		Use:   "draws",
		Short: "Print raw generator output and the direction each draw picks",
		Example: `  frogwalk draws --seed 1024 -n 5 --min 0 --max 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if hi <= lo {
				return fmt.Errorf("--max must be greater than --min")
			}
			line := walk.LineRule{}
			for _, d := range lcg.Draws(seed, n, lo, hi) {
				fmt.Printf("%3d  %.6f  %10.4f  %s\n", d.Index, d.Unit, d.Scaled, line.Choose(d.Unit))
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 1024, "Seed")
	cmd.Flags().IntVarP(&n, "count", "n", 10, "Number of draws")
	cmd.Flags().Float64Var(&lo, "min", 0, "Lower bound of the scaled value")
	cmd.Flags().Float64Var(&hi, "max", 1, "Upper bound of the scaled value")
	return cmd
}

func newReplayCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "replay [manifest.json]",
		Short: "Rerun the batch a manifest describes and check its fingerprint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var manifest run.Manifest
			if err := json.Unmarshal(raw, &manifest); err != nil {
				return fmt.Errorf("invalid manifest: %w", err)
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}
			if _, err := c.Simulation.Replay(cmd.Context(), &manifest); err != nil {
				return err
			}
			fmt.Printf("Batch %s reproduced, fingerprint %s\n", manifest.BatchID, manifest.Fingerprint.Fingerprint.Short())
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [workbook.xlsx]",
		Short: "Summarize the final positions stored in an exported workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			finals, d, err := excel.ReadFinalPositions(args[0])
			if err != nil {
				return err
			}
			msd, err := stats.MeanSquaredDisplacement(finals)
			if err != nil {
				return err
			}

			origin := 0
			for _, p := range finals {
				if p.IsOrigin() {
					origin++
				}
			}
			fmt.Printf("%d runs (%s), %d ended at the origin, mean squared displacement %.4f\n", len(finals), d, origin, msd)
			for _, f := range stats.Frequencies(finals) {
				fmt.Printf("%12s  %d\n", f.Position.Format(d), f.Count)
			}
			return nil
		},
	}
}
