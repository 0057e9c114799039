package app

import (
	"fmt"

	"frogwalk/domain/core"
	"frogwalk/domain/run"
	"frogwalk/domain/stats"
	"frogwalk/domain/walk"
	"frogwalk/internal"
	"frogwalk/internal/profiling"
	"frogwalk/ports"
)

const (
	// DefaultHeatmapBins matches the 30x30 grid of the reference heatmap
	DefaultHeatmapBins = 30
	// DefaultCurveSteps bounds the empirical-vs-exact return curve
	DefaultCurveSteps = 20
	// DefaultConfidenceLevel is used for the interval around the empirical probability
	DefaultConfidenceLevel = 0.95
)

// AnalysisService reduces a finished batch to the numbers a report needs
type AnalysisService struct {
	theory     ports.TheoryPort
	analyzer   *profiling.DistributionAnalyzer
	logger     *internal.Logger
	bins       int
	curveSteps int
}

// CurvePoint compares the empirical return probability at one step with the exact value
type CurvePoint struct {
	Step        int     `json:"step"`
	Empirical   float64 `json:"empirical"`
	Theoretical float64 `json:"theoretical"`
}

// BatchReport is the full analysis of one batch
type BatchReport struct {
	BatchID      core.BatchID                   `json:"batch_id"`
	Config       run.Config                     `json:"config"`
	Probability  stats.ProbabilityResult        `json:"probability"`
	Theoretical  float64                        `json:"theoretical"`
	Interval     ports.Interval                 `json:"interval"`
	Frequencies  []stats.Frequency              `json:"frequencies"`
	Heatmap      *stats.Heatmap                 `json:"heatmap,omitempty"`
	Displacement *profiling.DisplacementProfile `json:"displacement"`
	MSD          float64                        `json:"mean_squared_displacement"`
	Curve        []CurvePoint                   `json:"curve"`
}

// NewAnalysisService creates an analysis service. Non-positive bins or curveSteps fall
// back to the defaults.
func NewAnalysisService(theory ports.TheoryPort, logger *internal.Logger, bins, curveSteps int) *AnalysisService {
	if bins <= 0 {
		bins = DefaultHeatmapBins
	}
	if curveSteps <= 0 {
		curveSteps = DefaultCurveSteps
	}
	if logger == nil {
		logger = internal.Discard()
	}
	return &AnalysisService{
		theory:     theory,
		analyzer:   profiling.NewDistributionAnalyzer(),
		logger:     logger.WithComponent("analysis"),
		bins:       bins,
		curveSteps: curveSteps,
	}
}

// Analyze builds the report of a batch
func (s *AnalysisService) Analyze(batch *run.Batch) (*BatchReport, error) {
	probability, err := stats.BatchOriginProbability(batch)
	if err != nil {
		return nil, err
	}

	cfg := batch.Config
	theoretical, err := s.theory.ReturnProbability(cfg.Dimension, cfg.TargetStep)
	if err != nil {
		return nil, fmt.Errorf("exact probability: %w", err)
	}
	interval, err := s.theory.ConfidenceInterval(probability.AtOrigin, probability.Total, DefaultConfidenceLevel)
	if err != nil {
		return nil, fmt.Errorf("confidence interval: %w", err)
	}
	if !interval.Contains(theoretical) {
		s.logger.Warn("batch %s: exact probability %.4f outside %.0f%% interval [%.4f, %.4f]",
			batch.ID, theoretical, interval.Level*100, interval.Lower, interval.Upper)
	}

	finals := batch.FinalPositions()
	displacement, err := s.analyzer.AnalyzeFinalPositions(cfg.Dimension, finals)
	if err != nil {
		return nil, fmt.Errorf("displacement profile: %w", err)
	}
	msd, err := stats.MeanSquaredDisplacement(finals)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{
		BatchID:      batch.ID,
		Config:       cfg,
		Probability:  probability,
		Theoretical:  theoretical,
		Interval:     interval,
		Frequencies:  stats.Frequencies(finals),
		Displacement: displacement,
		MSD:          msd,
	}

	if cfg.Dimension == walk.TwoDimensional {
		report.Heatmap, err = stats.NewHeatmap(finals, s.bins)
		if err != nil {
			return nil, fmt.Errorf("heatmap: %w", err)
		}
	}

	report.Curve, err = s.Curve(batch.Trajectories(), cfg.Dimension, min(s.curveSteps, cfg.StepsPerRun))
	if err != nil {
		return nil, err
	}

	s.logger.Debug("analyzed batch %s: %s", batch.ID, probability)
	return report, nil
}

// Curve pairs the empirical and exact return probabilities at steps 0..maxStep
func (s *AnalysisService) Curve(trajectories []walk.Trajectory, d walk.Dimension, maxStep int) ([]CurvePoint, error) {
	empirical, err := stats.OriginCurve(trajectories, maxStep)
	if err != nil {
		return nil, err
	}

	points := make([]CurvePoint, len(empirical))
	for i, e := range empirical {
		exact, err := s.theory.ReturnProbability(d, e.TargetStep)
		if err != nil {
			return nil, err
		}
		points[i] = CurvePoint{Step: e.TargetStep, Empirical: e.Probability, Theoretical: exact}
	}
	return points, nil
}
