package stats

import (
	"fmt"

	"frogwalk/domain/core"
	"frogwalk/domain/run"
	"frogwalk/domain/walk"
)

// ProbabilityResult is the empirical probability of being at the origin at a step
type ProbabilityResult struct {
	TargetStep  int     `json:"target_step"`
	AtOrigin    int     `json:"at_origin"`
	Total       int     `json:"total"`
	Probability float64 `json:"probability"`
}

func (p ProbabilityResult) String() string {
	return fmt.Sprintf("Probability of being at the origin at step %d: %.4f", p.TargetStep, p.Probability)
}

// OriginProbability counts the trajectories sitting at the origin after targetStep
// steps and divides by the number of trajectories. Every trajectory must be long enough
// to have a position at targetStep; the first one that is not fails the whole call.
func OriginProbability(trajectories []walk.Trajectory, targetStep int) (ProbabilityResult, error) {
	if len(trajectories) == 0 {
		return ProbabilityResult{}, core.ErrEmptyBatch
	}
	if targetStep < 0 {
		return ProbabilityResult{}, fmt.Errorf("%w (got %d)", core.ErrNegativeTargetStep, targetStep)
	}

	dim := trajectories[0].Dimension
	atOrigin := 0
	for i, t := range trajectories {
		if t.Dimension != dim {
			return ProbabilityResult{}, fmt.Errorf("%w: trajectory %d is %s, expected %s",
				core.ErrMixedDimensions, i, t.Dimension, dim)
		}
		pos, ok := t.At(targetStep)
		if !ok {
			return ProbabilityResult{}, fmt.Errorf("trajectory %d: %w", i, core.NewTargetStepError(targetStep, t.Len()))
		}
		if pos.IsOrigin() {
			atOrigin++
		}
	}

	return newResult(targetStep, atOrigin, len(trajectories)), nil
}

// BatchOriginProbability uses the target-step positions recorded by the runner
func BatchOriginProbability(batch *run.Batch) (ProbabilityResult, error) {
	if batch == nil || batch.Size() == 0 {
		return ProbabilityResult{}, core.ErrEmptyBatch
	}

	atOrigin := 0
	for _, pos := range batch.TargetPositions() {
		if pos.IsOrigin() {
			atOrigin++
		}
	}

	return newResult(batch.Config.TargetStep, atOrigin, batch.Size()), nil
}

// OriginCurve returns the empirical probability at every step 0..maxStep
func OriginCurve(trajectories []walk.Trajectory, maxStep int) ([]ProbabilityResult, error) {
	if maxStep < 0 {
		return nil, fmt.Errorf("%w (got %d)", core.ErrNegativeTargetStep, maxStep)
	}
	curve := make([]ProbabilityResult, 0, maxStep+1)
	for step := 0; step <= maxStep; step++ {
		p, err := OriginProbability(trajectories, step)
		if err != nil {
			return nil, err
		}
		curve = append(curve, p)
	}
	return curve, nil
}

func newResult(targetStep, atOrigin, total int) ProbabilityResult {
	return ProbabilityResult{
		TargetStep:  targetStep,
		AtOrigin:    atOrigin,
		Total:       total,
		Probability: float64(atOrigin) / float64(total),
	}
}
