package container

import (
	"fmt"
	"path/filepath"

	"frogwalk/adapters/api"
	"frogwalk/adapters/excel"
	"frogwalk/adapters/report"
	"frogwalk/adapters/rng"
	"frogwalk/adapters/stats"
	"frogwalk/app"
	"frogwalk/internal"
	"frogwalk/internal/config"
	"frogwalk/internal/profiling"
	"frogwalk/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Adapters
	RNG     ports.RNGPort
	Theory  *stats.TheoryAdapter
	Metrics ports.MetricsPort

	// Services
	Simulation *app.SimulationService
	Analysis   *app.AnalysisService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	return NewWithRNG(cfg, rng.NewLCGAdapter(), logger)
}

// NewWithRNG is New with an explicit RNG port and logger, for tests
func NewWithRNG(cfg *config.Config, rngPort ports.RNGPort, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if rngPort == nil {
		return nil, fmt.Errorf("rng port cannot be nil")
	}
	if logger == nil {
		logger = internal.Discard()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		RNG:     rngPort,
		Theory:  stats.NewTheoryAdapter(),
		Metrics: profiling.NewLogRecorder(logger),
	}
	c.Simulation = app.NewSimulationService(c.RNG, c.Metrics, logger, cfg.Server.CodeVersion)
	c.Analysis = app.NewAnalysisService(c.Theory, logger, cfg.Export.HeatmapBins, app.DefaultCurveSteps)
	return c, nil
}

// Server builds the HTTP server
func (c *Container) Server() *api.Server {
	return api.NewServer(c.Simulation, c.Analysis, c.Theory, c.Config.Simulation, c.Config.Server, c.Logger)
}

// Exporter builds a workbook exporter. A relative name is placed in the export dir.
func (c *Container) Exporter(name string) *excel.Exporter {
	return excel.NewExporter(c.ExportPath(name), c.Config.Export.HeatmapBins, c.Logger)
}

// ReportRenderer builds the markdown/HTML renderer
func (c *Container) ReportRenderer() *report.Renderer {
	return report.NewRenderer("")
}

// ExportPath resolves name against the export dir
func (c *Container) ExportPath(name string) string {
	if filepath.IsAbs(name) || c.Config.Export.Dir == "" {
		return name
	}
	return filepath.Join(c.Config.Export.Dir, name)
}
