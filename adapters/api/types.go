package api

import (
	"frogwalk/app"
	"frogwalk/domain/core"
	"frogwalk/domain/lcg"
	"frogwalk/domain/run"
	"frogwalk/domain/stats"
	"frogwalk/domain/walk"
	"frogwalk/ports"
)

// SimulationRequest is the body of POST /api/simulations. Omitted fields take the
// server defaults; a missing base_seed is derived from the clock.
type SimulationRequest struct {
	NumRuns     *int    `json:"num_runs,omitempty"`
	BaseSeed    *uint64 `json:"base_seed,omitempty"`
	StepsPerRun *int    `json:"steps_per_run,omitempty"`
	TargetStep  *int    `json:"target_step,omitempty"`
	Dimension   *int    `json:"dimension,omitempty"`
	Workers     *int    `json:"workers,omitempty"`
}

// SimulationResponse summarizes a finished batch
type SimulationResponse struct {
	BatchID     core.BatchID            `json:"batch_id"`
	Config      run.Config              `json:"config"`
	Probability stats.ProbabilityResult `json:"probability"`
	Summary     string                  `json:"summary"`
	Theoretical float64                 `json:"theoretical"`
	Interval    ports.Interval          `json:"interval"`
	MSD         float64                 `json:"mean_squared_displacement"`
	Frequencies []stats.Frequency       `json:"frequencies"`
	Heatmap     *stats.Heatmap          `json:"heatmap,omitempty"`
	Curve       []app.CurvePoint        `json:"curve"`
	Manifest    *run.Manifest           `json:"manifest"`
	ElapsedMs   int64                   `json:"elapsed_ms"`
	PeakBytes   uint64                  `json:"peak_bytes"`
}

// WalkResponse is a single trajectory
type WalkResponse struct {
	Seed      uint64         `json:"seed"`
	Dimension walk.Dimension `json:"dimension"`
	Steps     int            `json:"steps"`
	Final     walk.Position  `json:"final"`
	Returns   []int          `json:"returns_to_origin"`
	Points    []walk.Point   `json:"points"`
}

// TheoryResponse is the exact return probability at one step
type TheoryResponse struct {
	Dimension   walk.Dimension `json:"dimension"`
	Step        int            `json:"step"`
	Probability float64        `json:"probability"`
}

// DrawsResponse lists raw generator output
type DrawsResponse struct {
	Seed  uint64     `json:"seed"`
	Draws []lcg.Draw `json:"draws"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the application error code
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
