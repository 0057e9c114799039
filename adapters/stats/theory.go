package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"frogwalk/domain/core"
	"frogwalk/domain/walk"
	"frogwalk/ports"
)

// TheoryAdapter computes exact return probabilities from the binomial distribution.
//
// A 1D walk is at the origin after n steps when exactly n/2 of them went right, so
// P = C(n, n/2) / 2^n. The 2D grid walk rotated by 45 degrees is two independent
// 1D walks, which makes its return probability the square of the 1D value.
type TheoryAdapter struct{}

// NewTheoryAdapter creates a theory adapter
func NewTheoryAdapter() *TheoryAdapter {
	return &TheoryAdapter{}
}

var _ ports.TheoryPort = (*TheoryAdapter)(nil)

// ReturnProbability implements ports.TheoryPort
func (t *TheoryAdapter) ReturnProbability(d walk.Dimension, step int) (float64, error) {
	if step < 0 {
		return 0, fmt.Errorf("%w (got %d)", core.ErrNegativeTargetStep, step)
	}
	if _, err := walk.ParseDimension(int(d)); err != nil {
		return 0, err
	}
	if step == 0 {
		return 1, nil
	}
	if step%2 == 1 {
		return 0, nil
	}

	line := distuv.Binomial{N: float64(step), P: 0.5}.Prob(float64(step / 2))
	if d == walk.TwoDimensional {
		return line * line, nil
	}
	return line, nil
}

// ReturnCurve evaluates ReturnProbability at every step 0..maxStep
func (t *TheoryAdapter) ReturnCurve(d walk.Dimension, maxStep int) ([]float64, error) {
	if maxStep < 0 {
		return nil, fmt.Errorf("%w (got %d)", core.ErrNegativeTargetStep, maxStep)
	}
	curve := make([]float64, maxStep+1)
	for step := range curve {
		p, err := t.ReturnProbability(d, step)
		if err != nil {
			return nil, err
		}
		curve[step] = p
	}
	return curve, nil
}

// ConfidenceInterval returns the Wilson score interval, which stays inside [0, 1]
// for proportions of exactly 0 or 1.
func (t *TheoryAdapter) ConfidenceInterval(successes, trials int, level float64) (ports.Interval, error) {
	if trials <= 0 {
		return ports.Interval{}, core.ErrEmptyBatch
	}
	if successes < 0 || successes > trials {
		return ports.Interval{}, fmt.Errorf("successes %d outside [0, %d]", successes, trials)
	}
	if level <= 0 || level >= 1 {
		return ports.Interval{}, fmt.Errorf("confidence level must be in (0, 1), got %g", level)
	}

	z := distuv.UnitNormal.Quantile(1 - (1-level)/2)
	n := float64(trials)
	p := float64(successes) / n
	z2 := z * z

	center := (p + z2/(2*n)) / (1 + z2/n)
	half := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / (1 + z2/n)

	return ports.Interval{
		Lower: math.Max(0, center-half),
		Upper: math.Min(1, center+half),
		Level: level,
	}, nil
}
