package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"frogwalk/domain/core"
	"frogwalk/domain/lcg"
	"frogwalk/domain/run"
	"frogwalk/domain/walk"
	apperrors "frogwalk/internal/errors"
)

const (
	defaultWalkSteps = 10
	defaultDrawCount = 10
	maxDrawCount     = 10000
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.settings.CodeVersion,
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, invalidParam("request body", err))
		return
	}

	cfg, err := s.runConfig(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.simulation.RunMeasured(r.Context(), cfg)
	if err != nil {
		if core.IsConfigurationError(err) {
			s.writeError(w, r, apperrors.Wrap(err, "invalid simulation request"))
			return
		}
		s.writeError(w, r, apperrors.SimulationFailed(err))
		return
	}

	report, err := s.analysis.Analyze(result.Batch)
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(err, "analysis failed"))
		return
	}

	s.writeJSON(w, http.StatusCreated, SimulationResponse{
		BatchID:     result.Batch.ID,
		Config:      cfg,
		Probability: report.Probability,
		Summary:     report.Probability.String(),
		Theoretical: report.Theoretical,
		Interval:    report.Interval,
		MSD:         report.MSD,
		Frequencies: report.Frequencies,
		Heatmap:     report.Heatmap,
		Curve:       report.Curve,
		Manifest:    result.Manifest,
		ElapsedMs:   result.Measurement.Elapsed.Milliseconds(),
		PeakBytes:   result.Measurement.PeakBytes,
	})
}

// runConfig overlays the request on the server defaults and enforces the server limits
func (s *Server) runConfig(req SimulationRequest) (run.Config, error) {
	sim := s.defaults
	if req.NumRuns != nil {
		sim.NumRuns = *req.NumRuns
	}
	if req.StepsPerRun != nil {
		sim.StepsPerRun = *req.StepsPerRun
	}
	if req.TargetStep != nil {
		sim.TargetStep = *req.TargetStep
	}
	if req.Dimension != nil {
		sim.Dimension = *req.Dimension
	}
	if req.Workers != nil {
		sim.Workers = *req.Workers
	}
	if req.BaseSeed != nil {
		sim.BaseSeed = *req.BaseSeed
		sim.BaseSeedSet = true
	}

	if sim.NumRuns > s.settings.MaxRuns {
		return run.Config{}, apperrors.InvalidInput(fmt.Sprintf("num_runs %d exceeds limit %d", sim.NumRuns, s.settings.MaxRuns))
	}
	if sim.StepsPerRun > s.settings.MaxSteps {
		return run.Config{}, apperrors.InvalidInput(fmt.Sprintf("steps_per_run %d exceeds limit %d", sim.StepsPerRun, s.settings.MaxSteps))
	}
	if total := int64(sim.NumRuns) * int64(sim.StepsPerRun); total > s.settings.MaxTotalSteps {
		return run.Config{}, apperrors.InvalidInput(fmt.Sprintf("num_runs*steps_per_run %d exceeds limit %d", total, s.settings.MaxTotalSteps))
	}

	var seed uint64
	if !sim.BaseSeedSet {
		seed = s.simulation.BaseSeed(nil)
	}
	cfg := sim.RunConfig(seed)
	if err := cfg.Validate(); err != nil {
		return run.Config{}, apperrors.Wrap(err, "invalid simulation request")
	}
	return cfg, nil
}

func (s *Server) handleWalk(w http.ResponseWriter, r *http.Request) {
	seed, err := queryUint(r, "seed", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	steps, err := queryInt(r, "steps", defaultWalkSteps)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	dim, err := queryDimension(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if steps < 0 || steps > s.settings.MaxSteps {
		s.writeError(w, r, apperrors.InvalidInput(fmt.Sprintf("steps must be in [0, %d]", s.settings.MaxSteps)))
		return
	}

	t, err := s.simulation.Walk(seed, steps, dim)
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(err, "walk failed"))
		return
	}

	s.writeJSON(w, http.StatusOK, WalkResponse{
		Seed:      seed,
		Dimension: dim,
		Steps:     t.Steps(),
		Final:     t.Final(),
		Returns:   t.ReturnsToOrigin(),
		Points:    t.Points(),
	})
}

func (s *Server) handleTheory(w http.ResponseWriter, r *http.Request) {
	dim, err := queryDimension(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	step, err := queryInt(r, "step", run.DefaultTargetStep)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.theory.ReturnProbability(dim, step)
	if err != nil {
		s.writeError(w, r, apperrors.Wrap(err, "invalid theory request"))
		return
	}
	s.writeJSON(w, http.StatusOK, TheoryResponse{Dimension: dim, Step: step, Probability: p})
}

func (s *Server) handleDraws(w http.ResponseWriter, r *http.Request) {
	seed, err := queryUint(r, "seed", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n, err := queryInt(r, "n", defaultDrawCount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if n < 1 || n > maxDrawCount {
		s.writeError(w, r, apperrors.InvalidInput(fmt.Sprintf("n must be in [1, %d]", maxDrawCount)))
		return
	}
	lo, err := queryFloat(r, "min", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hi, err := queryFloat(r, "max", 1)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if hi <= lo {
		s.writeError(w, r, apperrors.InvalidInput("max must be greater than min"))
		return
	}

	s.writeJSON(w, http.StatusOK, DrawsResponse{Seed: seed, Draws: lcg.Draws(seed, n, lo, hi)})
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidParam(name, err)
	}
	return v, nil
}

func queryUint(r *http.Request, name string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, invalidParam(name, err)
	}
	return v, nil
}

func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalidParam(name, err)
	}
	return v, nil
}

func queryDimension(r *http.Request) (walk.Dimension, error) {
	n, err := queryInt(r, "dimension", int(run.DefaultDimension))
	if err != nil {
		return 0, err
	}
	d, err := walk.ParseDimension(n)
	if err != nil {
		return 0, invalidParam("dimension", err)
	}
	return d, nil
}
