package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"frogwalk/domain/core"
	"frogwalk/domain/run"
	"frogwalk/domain/walk"
	"frogwalk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Simulation SimulationConfig
	Server     ServerConfig
	Export     ExportConfig
	LogLevel   string
}

// SimulationConfig holds the batch parameters
type SimulationConfig struct {
	NumRuns     int
	BaseSeed    uint64
	BaseSeedSet bool // false means "derive from the clock at run time"
	StepsPerRun int
	TargetStep  int
	Dimension   int
	Workers     int
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port     string
	MaxRuns  int // upper bound on num_runs accepted over HTTP
	MaxSteps int // upper bound on steps_per_run accepted over HTTP
	// MaxTotalSteps bounds num_runs*steps_per_run; every step of every run is kept in memory
	MaxTotalSteps int64
	CodeVersion   string
	EnableLogger  bool
}

// ExportConfig holds output settings for the spreadsheet and report sinks
type ExportConfig struct {
	Dir         string
	HeatmapBins int
}

// Load builds the configuration from the defaults, then the YAML file named by
// FROG_CONFIG (if any), then environment variables, and validates the result
func Load() (*Config, error) {
	config := Default()

	if path := strings.TrimSpace(os.Getenv("FROG_CONFIG")); path != "" {
		if err := ApplyFile(config, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, errors.Wrap(err, "failed to load simulation configuration")
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Default returns the configuration used when no environment is set
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			NumRuns:     run.DefaultNumRuns,
			StepsPerRun: run.DefaultStepsPerRun,
			TargetStep:  run.DefaultTargetStep,
			Dimension:   int(run.DefaultDimension),
			Workers:     1,
		},
		Server:   *defaultServerConfig(),
		Export:   ExportConfig{Dir: ".", HeatmapBins: 30},
		LogLevel: "INFO",
	}
}

// RunConfig converts the simulation settings into a batch configuration. baseSeed is
// used only when no seed was configured.
func (s SimulationConfig) RunConfig(baseSeed uint64) run.Config {
	seed := baseSeed
	if s.BaseSeedSet {
		seed = s.BaseSeed
	}
	return run.Config{
		NumRuns:     s.NumRuns,
		BaseSeed:    seed,
		StepsPerRun: s.StepsPerRun,
		TargetStep:  s.TargetStep,
		Dimension:   walk.Dimension(s.Dimension),
		Workers:     s.Workers,
	}
}

// Validate checks the simulation settings with a placeholder seed
func (s SimulationConfig) Validate() error {
	return s.RunConfig(0).Validate()
}

func applyEnvOverrides(config *Config) error {
	sim := &config.Simulation
	var err error
	if sim.NumRuns, err = getEnvIntStrict("FROG_NUM_RUNS", sim.NumRuns); err != nil {
		return err
	}
	if sim.StepsPerRun, err = getEnvIntStrict("FROG_STEPS", sim.StepsPerRun); err != nil {
		return err
	}
	if sim.TargetStep, err = getEnvIntStrict("FROG_TARGET_STEP", sim.TargetStep); err != nil {
		return err
	}
	if sim.Dimension, err = getEnvIntStrict("FROG_DIMENSION", sim.Dimension); err != nil {
		return err
	}
	if sim.Workers, err = getEnvIntStrict("FROG_WORKERS", sim.Workers); err != nil {
		return err
	}
	if raw := strings.TrimSpace(os.Getenv("FROG_BASE_SEED")); raw != "" {
		seed, err := ParseSeed(raw)
		if err != nil {
			return err
		}
		sim.BaseSeed = seed
		sim.BaseSeedSet = true
	}

	srv := &config.Server
	srv.Port = getEnvOrDefault("SERVER_PORT", srv.Port)
	srv.MaxRuns = getEnvIntOrDefault("SERVER_MAX_RUNS", srv.MaxRuns)
	srv.MaxSteps = getEnvIntOrDefault("SERVER_MAX_STEPS", srv.MaxSteps)
	srv.MaxTotalSteps = int64(getEnvIntOrDefault("SERVER_MAX_TOTAL_STEPS", int(srv.MaxTotalSteps)))
	srv.CodeVersion = getEnvOrDefault("CODE_VERSION", srv.CodeVersion)
	srv.EnableLogger = getEnvBoolOrDefault("SERVER_REQUEST_LOG", srv.EnableLogger)

	config.Export.Dir = getEnvOrDefault("EXPORT_DIR", config.Export.Dir)
	config.Export.HeatmapBins = getEnvIntOrDefault("HEATMAP_BINS", config.Export.HeatmapBins)
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", config.LogLevel)
	return nil
}

// ParseSeed parses a non-negative integer seed
func ParseSeed(raw string) (uint64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrap(errors.InvalidInput(fmt.Sprintf("base seed %q is not an integer", raw)), "invalid FROG_BASE_SEED")
	}
	if n < 0 {
		return 0, fmt.Errorf("%w (got %d)", core.ErrNegativeSeed, n)
	}
	return uint64(n), nil
}

func defaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:          "8080",
		MaxRuns:       10000,
		MaxSteps:      1000000,
		MaxTotalSteps: 10000000,
		CodeVersion:   "v0.1.0",
		EnableLogger:  true,
	}
}

func validateConfig(config *Config) error {
	if err := config.Simulation.Validate(); err != nil {
		return err
	}
	if config.Server.MaxRuns <= 0 || config.Server.MaxSteps <= 0 || config.Server.MaxTotalSteps <= 0 {
		return errors.ConfigInvalid("server limits must be positive")
	}
	if config.Export.HeatmapBins <= 0 {
		return errors.ConfigInvalid("heatmap bins must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvIntStrict is getEnvIntOrDefault for values that must not silently fall back
func getEnvIntStrict(key string, defaultValue int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.InvalidInput(fmt.Sprintf("%s=%q is not an integer", key, value))
	}
	return intValue, nil
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
