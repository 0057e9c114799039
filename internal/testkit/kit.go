package testkit

import (
	"context"
	"errors"
	"sync"

	"frogwalk/adapters/rng"
	"frogwalk/domain/walk"
	"frogwalk/internal"
	"frogwalk/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	rng    ports.RNGPort
	sink   *RecordingSink
	logger *internal.Logger
}

// NewTestKit creates a kit backed by the real LCG with a fixed fallback seed
func NewTestKit(baseSeed uint64) *TestKit {
	return &TestKit{
		rng:    &FixedSeedRNG{Seed: baseSeed, Inner: rng.NewLCGAdapter()},
		sink:   &RecordingSink{},
		logger: internal.Discard(),
	}
}

// RNGAdapter returns the kit's RNG port
func (t *TestKit) RNGAdapter() ports.RNGPort { return t.rng }

// Sink returns the recording visualization sink
func (t *TestKit) Sink() *RecordingSink { return t.sink }

// Logger returns a logger that drops everything
func (t *TestKit) Logger() *internal.Logger { return t.logger }

// FixedSeedRNG delegates streams and pins the fallback seed
type FixedSeedRNG struct {
	Seed  uint64
	Inner ports.RNGPort

	mu        sync.Mutex
	requested []uint64
}

func (f *FixedSeedRNG) Stream(seed uint64) walk.Source {
	f.mu.Lock()
	f.requested = append(f.requested, seed)
	f.mu.Unlock()
	return f.Inner.Stream(seed)
}

func (f *FixedSeedRNG) BaseSeed() uint64 { return f.Seed }

// Requested returns the seeds streams were created for, in call order
func (f *FixedSeedRNG) Requested() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]uint64, len(f.requested))
	copy(out, f.requested)
	return out
}

// ScriptedRNG ignores seeds and replays the same draws for every stream, cycling
// when they run out
type ScriptedRNG struct {
	Draws []float64
	Seed  uint64
}

func (s *ScriptedRNG) Stream(uint64) walk.Source {
	return &ScriptedSource{Draws: s.Draws}
}

func (s *ScriptedRNG) BaseSeed() uint64 { return s.Seed }

// ScriptedSource replays fixed draws
type ScriptedSource struct {
	Draws []float64
	next  int
}

func (s *ScriptedSource) Uniform() float64 {
	r := s.Draws[s.next%len(s.Draws)]
	s.next++
	return r
}

// RecordingSink captures whatever the visualization ports are given
type RecordingSink struct {
	mu            sync.Mutex
	Trajectories  [][]walk.Point
	Distributions [][]walk.Position
	Dimensions    []walk.Dimension
}

func (r *RecordingSink) RenderTrajectory(_ context.Context, d walk.Dimension, points []walk.Point) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Trajectories = append(r.Trajectories, points)
	r.Dimensions = append(r.Dimensions, d)
	return nil
}

func (r *RecordingSink) RenderDistribution(_ context.Context, d walk.Dimension, finals []walk.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Distributions = append(r.Distributions, finals)
	r.Dimensions = append(r.Dimensions, d)
	return nil
}

// ErrSinkUnavailable is returned by FailingSink
var ErrSinkUnavailable = errors.New("sink unavailable")

// FailingSink rejects every render
type FailingSink struct{}

func (FailingSink) RenderTrajectory(context.Context, walk.Dimension, []walk.Point) error {
	return ErrSinkUnavailable
}

func (FailingSink) RenderDistribution(context.Context, walk.Dimension, []walk.Position) error {
	return ErrSinkUnavailable
}
