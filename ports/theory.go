package ports

import (
	"frogwalk/domain/walk"
)

// Interval is a two-sided confidence interval around an estimate
type Interval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// Contains reports whether v lies inside the interval
func (i Interval) Contains(v float64) bool {
	return v >= i.Lower && v <= i.Upper
}

// TheoryPort provides closed-form reference values for empirical results
type TheoryPort interface {
	// ReturnProbability is the exact probability that an unbiased walk of the given
	// dimension is at the origin after step steps
	ReturnProbability(d walk.Dimension, step int) (float64, error)

	// ConfidenceInterval bounds an observed proportion successes/trials at the given level
	ConfidenceInterval(successes, trials int, level float64) (Interval, error)
}
