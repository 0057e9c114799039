package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors
	ErrInvalidConfiguration = errors.New("invalid simulation configuration")
	ErrInvalidRunCount      = fmt.Errorf("%w: num_runs must be positive", ErrInvalidConfiguration)
	ErrInvalidStepCount     = fmt.Errorf("%w: steps_per_run must be positive", ErrInvalidConfiguration)
	ErrNegativeTargetStep   = fmt.Errorf("%w: target_step must be non-negative", ErrInvalidConfiguration)
	ErrUnsupportedDimension = fmt.Errorf("%w: dimension must be 1 or 2", ErrInvalidConfiguration)
	ErrNegativeSeed         = fmt.Errorf("%w: base_seed must be non-negative", ErrInvalidConfiguration)

	// Aggregation errors
	ErrTargetStepOutOfRange = errors.New("target step out of trajectory range")
	ErrEmptyBatch           = errors.New("batch contains no runs")
	ErrMixedDimensions      = errors.New("batch mixes walk dimensions")

	// Replay errors
	ErrHashMismatch = errors.New("hash mismatch")
)

// Error constructors with context
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfiguration, field, reason)
}

func NewTargetStepError(targetStep, trajectoryLen int) error {
	return fmt.Errorf("%w: target_step %d needs at least %d positions, trajectory has %d",
		ErrTargetStepOutOfRange, targetStep, targetStep+1, trajectoryLen)
}

func NewFingerprintMismatchError(expected, actual Hash) error {
	return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, expected, actual)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

func IsAggregationError(err error) bool {
	return errors.Is(err, ErrTargetStepOutOfRange) ||
		errors.Is(err, ErrEmptyBatch) ||
		errors.Is(err, ErrMixedDimensions)
}
