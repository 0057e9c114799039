package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"frogwalk/internal/errors"
)

// FileConfig is the YAML form of the configuration. Keys left out keep their
// current value.
type FileConfig struct {
	Simulation struct {
		NumRuns     *int    `yaml:"num_runs"`
		BaseSeed    *uint64 `yaml:"base_seed"`
		StepsPerRun *int    `yaml:"steps_per_run"`
		TargetStep  *int    `yaml:"target_step"`
		Dimension   *int    `yaml:"dimension"`
		Workers     *int    `yaml:"workers"`
	} `yaml:"simulation"`

	Server struct {
		Port         *string `yaml:"port"`
		MaxRuns      *int    `yaml:"max_runs"`
		MaxSteps     *int    `yaml:"max_steps"`
		MaxTotal     *int64  `yaml:"max_total_steps"`
		CodeVersion  *string `yaml:"code_version"`
		EnableLogger *bool   `yaml:"request_log"`
	} `yaml:"server"`

	Export struct {
		Dir         *string `yaml:"dir"`
		HeatmapBins *int    `yaml:"heatmap_bins"`
	} `yaml:"export"`

	LogLevel *string `yaml:"log_level"`
}

// ApplyFile overlays the YAML file at path onto config
func ApplyFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &errors.AppError{Code: errors.CodeConfigInvalid, Message: "reading config file", Cause: err}
	}

	var file FileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return &errors.AppError{
			Code:    errors.CodeConfigInvalid,
			Message: fmt.Sprintf("parsing config file %s", path),
			Cause:   err,
		}
	}

	file.apply(config)
	return nil
}

func (f *FileConfig) apply(config *Config) {
	sim := &config.Simulation
	setInt(&sim.NumRuns, f.Simulation.NumRuns)
	setInt(&sim.StepsPerRun, f.Simulation.StepsPerRun)
	setInt(&sim.TargetStep, f.Simulation.TargetStep)
	setInt(&sim.Dimension, f.Simulation.Dimension)
	setInt(&sim.Workers, f.Simulation.Workers)
	if f.Simulation.BaseSeed != nil {
		sim.BaseSeed = *f.Simulation.BaseSeed
		sim.BaseSeedSet = true
	}

	srv := &config.Server
	setString(&srv.Port, f.Server.Port)
	setInt(&srv.MaxRuns, f.Server.MaxRuns)
	setInt(&srv.MaxSteps, f.Server.MaxSteps)
	if f.Server.MaxTotal != nil {
		srv.MaxTotalSteps = *f.Server.MaxTotal
	}
	setString(&srv.CodeVersion, f.Server.CodeVersion)
	if f.Server.EnableLogger != nil {
		srv.EnableLogger = *f.Server.EnableLogger
	}

	setString(&config.Export.Dir, f.Export.Dir)
	setInt(&config.Export.HeatmapBins, f.Export.HeatmapBins)
	setString(&config.LogLevel, f.LogLevel)
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
