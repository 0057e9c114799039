package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"frogwalk/adapters/report"
	"frogwalk/internal/config"
	"frogwalk/internal/container"
	"frogwalk/internal/profiling"
)

// main runs the reference batch: walks seeded from the configured (or clock-derived)
// base seed, the last trajectory and the final positions exported, then the
// probability line and the resource usage printed.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var explicit *uint64
	if appConfig.Simulation.BaseSeedSet {
		explicit = &appConfig.Simulation.BaseSeed
	}
	runCfg := appConfig.Simulation.RunConfig(c.Simulation.BaseSeed(explicit))

	result, err := c.Simulation.RunMeasured(ctx, runCfg)
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	analysis, err := c.Analysis.Analyze(result.Batch)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	exporter := c.Exporter("frogwalk.xlsx")
	defer exporter.Close()
	if err := c.Simulation.Present(ctx, result.Batch, exporter, exporter); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	if err := exporter.WriteSummary(result.Manifest, result.Probability, analysis.Theoretical); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	if err := exporter.Save(); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	in := report.Input{Report: analysis, Manifest: result.Manifest, Measurement: &result.Measurement}
	if err := c.ReportRenderer().WriteFile(c.ExportPath("frogwalk.html"), in); err != nil {
		log.Fatalf("Report failed: %v", err)
	}

	fmt.Println(result.Probability)
	fmt.Println(profiling.Format(result.Measurement))
}
