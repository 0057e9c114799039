package app

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"frogwalk/domain/core"
	"frogwalk/domain/run"
	"frogwalk/domain/stats"
	"frogwalk/domain/walk"
	"frogwalk/internal"
	"frogwalk/internal/profiling"
	"frogwalk/ports"
)

// SimulationService runs batches of frog walks
type SimulationService struct {
	rngPort     ports.RNGPort
	metrics     ports.MetricsPort
	logger      *internal.Logger
	codeVersion string
}

// SimulationResult is a finished batch together with its replay manifest and the
// measurement taken around it
type SimulationResult struct {
	Batch       *run.Batch              `json:"batch"`
	Manifest    *run.Manifest           `json:"manifest"`
	Probability stats.ProbabilityResult `json:"probability"`
	Measurement ports.Measurement       `json:"measurement"`
}

// NewSimulationService creates a simulation service. metrics and logger may be nil.
func NewSimulationService(rngPort ports.RNGPort, metrics ports.MetricsPort, logger *internal.Logger, codeVersion string) *SimulationService {
	if logger == nil {
		logger = internal.Discard()
	}
	return &SimulationService{
		rngPort:     rngPort,
		metrics:     metrics,
		logger:      logger.WithComponent("simulation"),
		codeVersion: codeVersion,
	}
}

// BaseSeed returns explicit when set, otherwise a fresh seed from the RNG port
func (s *SimulationService) BaseSeed(explicit *uint64) uint64 {
	if explicit != nil {
		return *explicit
	}
	seed := s.rngPort.BaseSeed()
	s.logger.Debug("no base seed given, derived %d", seed)
	return seed
}

// Walk produces a single trajectory
func (s *SimulationService) Walk(seed uint64, steps int, d walk.Dimension) (walk.Trajectory, error) {
	if steps < 0 {
		return walk.Trajectory{}, fmt.Errorf("%w (got %d)", core.ErrInvalidStepCount, steps)
	}
	rule, err := walk.RuleFor(d)
	if err != nil {
		return walk.Trajectory{}, err
	}
	t := walk.WalkFrom(s.rngPort.Stream(seed), steps, rule)
	t.Seed = seed
	return t, nil
}

// Run executes cfg.NumRuns walks, run i seeded with cfg.BaseSeed+i. Records are stored
// in run order whatever the worker count, so a batch is fully determined by its config.
func (s *SimulationService) Run(ctx context.Context, cfg run.Config) (*run.Batch, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rule, err := walk.RuleFor(cfg.Dimension)
	if err != nil {
		return nil, err
	}

	batch := &run.Batch{
		ID:        core.NewBatchID(),
		Config:    cfg,
		Records:   make([]run.Record, cfg.NumRuns),
		CreatedAt: core.Now(),
	}
	s.logger.Info("starting batch %s: %d runs of %d steps in %s from seed %d",
		batch.ID, cfg.NumRuns, cfg.StepsPerRun, cfg.Dimension, cfg.BaseSeed)

	if cfg.Workers > 1 {
		err = s.runConcurrent(ctx, cfg, rule, batch.Records)
	} else {
		err = s.runSequential(ctx, cfg, rule, batch.Records)
	}
	if err != nil {
		return nil, err
	}

	return batch, nil
}

// RunMeasured runs the batch inside the metrics harness and builds its manifest
func (s *SimulationService) RunMeasured(ctx context.Context, cfg run.Config) (*SimulationResult, error) {
	batch, m, err := profiling.MeasureErr("simulate", func() (*run.Batch, error) {
		return s.Run(ctx, cfg)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.Record(m)
	}

	probability, err := stats.BatchOriginProbability(batch)
	if err != nil {
		return nil, err
	}

	return &SimulationResult{
		Batch:       batch,
		Manifest:    run.NewManifest(batch, s.codeVersion),
		Probability: probability,
		Measurement: m,
	}, nil
}

// Replay reruns the batch a manifest describes and checks the outcome matches
func (s *SimulationService) Replay(ctx context.Context, manifest *run.Manifest) (*run.Batch, error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	batch, err := s.Run(ctx, manifest.Config)
	if err != nil {
		return nil, err
	}
	if err := manifest.Verify(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Present hands the last run's trajectory and all final positions to the sinks.
// Either sink may be nil.
func (s *SimulationService) Present(ctx context.Context, batch *run.Batch, trajectories ports.TrajectorySink, distributions ports.DistributionSink) error {
	last, ok := batch.Last()
	if !ok {
		return core.ErrEmptyBatch
	}

	if trajectories != nil {
		if err := trajectories.RenderTrajectory(ctx, batch.Config.Dimension, last.Points()); err != nil {
			return fmt.Errorf("render trajectory of run %d: %w", batch.Size()-1, err)
		}
	}
	if distributions != nil {
		if err := distributions.RenderDistribution(ctx, batch.Config.Dimension, batch.FinalPositions()); err != nil {
			return fmt.Errorf("render final positions: %w", err)
		}
	}
	return nil
}

func (s *SimulationService) runSequential(ctx context.Context, cfg run.Config, rule walk.MoveRule, records []run.Record) error {
	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := s.runOne(cfg, rule, i)
		if err != nil {
			return err
		}
		records[i] = rec
	}
	return nil
}

func (s *SimulationService) runConcurrent(ctx context.Context, cfg run.Config, rule walk.MoveRule, records []run.Record) error {
	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	for i := range records {
		if err := ctx.Err(); err != nil {
			once.Do(func() { firstErr = err })
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			once.Do(func() { firstErr = err })
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)

			rec, err := s.runOne(cfg, rule, i)
			if err != nil {
				once.Do(func() { firstErr = err })
				return
			}
			records[i] = rec
		}(i)
	}

	wg.Wait()
	return firstErr
}

func (s *SimulationService) runOne(cfg run.Config, rule walk.MoveRule, i int) (run.Record, error) {
	seed := cfg.SeedFor(i)
	s.logger.Trace("run %d seeded with %d", i+1, seed)

	t := walk.WalkFrom(s.rngPort.Stream(seed), cfg.StepsPerRun, rule)
	t.Seed = seed

	rec, err := run.NewRecord(i, t, cfg.TargetStep)
	if err != nil {
		return run.Record{}, fmt.Errorf("run %d: %w", i, err)
	}
	s.logger.Info("run %d/%d completed, final position %s", i+1, cfg.NumRuns, rec.Final.Format(cfg.Dimension))
	return rec, nil
}
