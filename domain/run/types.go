package run

import (
	"crypto/sha256"
	"fmt"

	"frogwalk/domain/core"
	"frogwalk/domain/walk"
)

// Defaults of the reference program
const (
	DefaultNumRuns     = 100
	DefaultStepsPerRun = 10000
	DefaultTargetStep  = 4
	DefaultDimension   = walk.TwoDimensional
)

// Config describes one batch of walks. Run i uses seed BaseSeed+i.
type Config struct {
	NumRuns     int            `json:"num_runs"`
	BaseSeed    uint64         `json:"base_seed"`
	StepsPerRun int            `json:"steps_per_run"`
	TargetStep  int            `json:"target_step"`
	Dimension   walk.Dimension `json:"dimension"`
	// Workers > 1 runs walks concurrently; results are identical to a sequential batch
	Workers int `json:"workers,omitempty"`
}

// DefaultConfig returns the reference defaults with the given base seed
func DefaultConfig(baseSeed uint64) Config {
	return Config{
		NumRuns:     DefaultNumRuns,
		BaseSeed:    baseSeed,
		StepsPerRun: DefaultStepsPerRun,
		TargetStep:  DefaultTargetStep,
		Dimension:   DefaultDimension,
		Workers:     1,
	}
}

// Validate rejects configurations before any walk starts. The target step must index
// into every trajectory, so it may be at most StepsPerRun.
func (c Config) Validate() error {
	if c.NumRuns <= 0 {
		return fmt.Errorf("%w (got %d)", core.ErrInvalidRunCount, c.NumRuns)
	}
	if c.StepsPerRun <= 0 {
		return fmt.Errorf("%w (got %d)", core.ErrInvalidStepCount, c.StepsPerRun)
	}
	if c.TargetStep < 0 {
		return fmt.Errorf("%w (got %d)", core.ErrNegativeTargetStep, c.TargetStep)
	}
	if c.TargetStep > c.StepsPerRun {
		return fmt.Errorf("%w: target_step %d exceeds steps_per_run %d",
			core.ErrInvalidConfiguration, c.TargetStep, c.StepsPerRun)
	}
	if _, err := walk.ParseDimension(int(c.Dimension)); err != nil {
		return err
	}
	if c.Workers < 0 {
		return core.NewValidationError("workers", "must not be negative")
	}
	return nil
}

// SeedFor returns the seed of run i
func (c Config) SeedFor(i int) uint64 {
	return c.BaseSeed + uint64(i)
}

// Record is the outcome of one run
type Record struct {
	Index      int             `json:"index"`
	Seed       uint64          `json:"seed"`
	Final      walk.Position   `json:"final"`
	AtTarget   walk.Position   `json:"at_target"`
	Trajectory walk.Trajectory `json:"-"`
}

// NewRecord summarizes a finished trajectory. targetStep must already be validated
// against the trajectory length.
func NewRecord(index int, trajectory walk.Trajectory, targetStep int) (Record, error) {
	atTarget, ok := trajectory.At(targetStep)
	if !ok {
		return Record{}, core.NewTargetStepError(targetStep, trajectory.Len())
	}
	return Record{
		Index:      index,
		Seed:       trajectory.Seed,
		Final:      trajectory.Final(),
		AtTarget:   atTarget,
		Trajectory: trajectory,
	}, nil
}

// Batch is the full set of runs sharing one configuration
type Batch struct {
	ID        core.BatchID   `json:"id"`
	Config    Config         `json:"config"`
	Records   []Record       `json:"records"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// Size is the number of runs in the batch
func (b *Batch) Size() int {
	return len(b.Records)
}

// FinalPositions returns the final position of every run in run order
func (b *Batch) FinalPositions() []walk.Position {
	out := make([]walk.Position, len(b.Records))
	for i, r := range b.Records {
		out[i] = r.Final
	}
	return out
}

// TargetPositions returns every run's position at the configured target step
func (b *Batch) TargetPositions() []walk.Position {
	out := make([]walk.Position, len(b.Records))
	for i, r := range b.Records {
		out[i] = r.AtTarget
	}
	return out
}

// Trajectories returns the trajectories in run order
func (b *Batch) Trajectories() []walk.Trajectory {
	out := make([]walk.Trajectory, len(b.Records))
	for i, r := range b.Records {
		out[i] = r.Trajectory
	}
	return out
}

// Seeds returns the seed of every run in run order
func (b *Batch) Seeds() []uint64 {
	out := make([]uint64, len(b.Records))
	for i, r := range b.Records {
		out[i] = r.Seed
	}
	return out
}

// Last returns the trajectory of the final run
func (b *Batch) Last() (walk.Trajectory, bool) {
	if len(b.Records) == 0 {
		return walk.Trajectory{}, false
	}
	return b.Records[len(b.Records)-1].Trajectory, true
}

// OutcomeHash hashes the ordered final positions. Two batches with the same
// configuration must produce the same outcome hash.
func (b *Batch) OutcomeHash() core.Hash {
	values := make([]fmt.Stringer, len(b.Records))
	for i, r := range b.Records {
		values[i] = r.Final
	}
	return core.ComputeSequenceHash(values)
}

// RunFingerprint ties a configuration to the outcome it produced
type RunFingerprint struct {
	Config      Config    `json:"config"`
	CodeVersion string    `json:"code_version"`
	OutcomeHash core.Hash `json:"outcome_hash"`
	Fingerprint core.Hash `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(cfg Config, codeVersion string, outcome core.Hash) RunFingerprint {
	return RunFingerprint{
		Config:      cfg,
		CodeVersion: codeVersion,
		OutcomeHash: outcome,
		Fingerprint: computeRunFingerprint(cfg, codeVersion, outcome),
	}
}

// computeRunFingerprint ignores Workers: parallelism never changes results
func computeRunFingerprint(cfg Config, codeVersion string, outcome core.Hash) core.Hash {
	data := fmt.Sprintf("runs:%d|seed:%d|steps:%d|target:%d|dim:%d|code:%s|outcome:%s",
		cfg.NumRuns, cfg.BaseSeed, cfg.StepsPerRun, cfg.TargetStep, cfg.Dimension, codeVersion, outcome)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
