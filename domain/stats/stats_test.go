package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frogwalk/domain/core"
	"frogwalk/domain/run"
	"frogwalk/domain/walk"
)

func walks(baseSeed uint64, n, steps int, rule walk.MoveRule) []walk.Trajectory {
	out := make([]walk.Trajectory, n)
	for i := range out {
		out[i] = walk.Walk(baseSeed+uint64(i), steps, rule)
	}
	return out
}

func lineAt(x int) walk.Trajectory {
	return walk.Trajectory{
		Dimension: walk.OneDimensional,
		Positions: []walk.Position{{}, {X: x}, {X: x}},
		Moves:     []walk.Move{walk.Right, walk.Right},
	}
}

func TestOriginProbability_KnownBatches(t *testing.T) {
	tests := []struct {
		name string
		rule walk.MoveRule
		want int
	}{
		{"1D seeds 0..9", walk.LineRule{}, 3},
		{"2D seeds 0..9", walk.GridRule{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := OriginProbability(walks(0, 10, 4, tt.rule), 4)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.AtOrigin)
			assert.Equal(t, 10, result.Total)
			assert.Equal(t, float64(tt.want)/10, result.Probability)
		})
	}
}

func TestOriginProbability_AllOrNothing(t *testing.T) {
	never := []walk.Trajectory{lineAt(1), lineAt(-1), lineAt(1)}
	result, err := OriginProbability(never, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Probability)

	always := []walk.Trajectory{lineAt(1), lineAt(-1)}
	result, err = OriginProbability(always, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Probability)
}

func TestOriginProbability_OddStepsNeverAtOrigin(t *testing.T) {
	for _, rule := range []walk.MoveRule{walk.LineRule{}, walk.GridRule{}} {
		result, err := OriginProbability(walks(31, 50, 9, rule), 7)
		require.NoError(t, err)
		assert.Equal(t, 0.0, result.Probability, "%s", rule.Dimension())
	}
}

func TestOriginProbability_Errors(t *testing.T) {
	_, err := OriginProbability(nil, 0)
	assert.ErrorIs(t, err, core.ErrEmptyBatch)

	_, err = OriginProbability(walks(0, 3, 4, walk.LineRule{}), -1)
	assert.ErrorIs(t, err, core.ErrNegativeTargetStep)

	mixed := append(walks(0, 2, 10, walk.LineRule{}), walk.Walk(5, 3, walk.LineRule{}))
	_, err = OriginProbability(mixed, 4)
	assert.ErrorIs(t, err, core.ErrTargetStepOutOfRange)

	dims := []walk.Trajectory{walk.Walk(0, 4, walk.LineRule{}), walk.Walk(0, 4, walk.GridRule{})}
	_, err = OriginProbability(dims, 2)
	assert.ErrorIs(t, err, core.ErrMixedDimensions)
}

func TestBatchOriginProbability_MatchesTrajectories(t *testing.T) {
	cfg := run.Config{NumRuns: 20, BaseSeed: 100, StepsPerRun: 6, TargetStep: 6, Dimension: walk.OneDimensional}
	batch := &run.Batch{Config: cfg}
	for i, tr := range walks(100, 20, 6, walk.LineRule{}) {
		rec, err := run.NewRecord(i, tr, cfg.TargetStep)
		require.NoError(t, err)
		batch.Records = append(batch.Records, rec)
	}

	fromBatch, err := BatchOriginProbability(batch)
	require.NoError(t, err)
	fromTrajectories, err := OriginProbability(batch.Trajectories(), 6)
	require.NoError(t, err)

	assert.Equal(t, fromTrajectories, fromBatch)
	assert.Equal(t, 10, fromBatch.AtOrigin)
	assert.Equal(t, "Probability of being at the origin at step 6: 0.5000", fromBatch.String())

	_, err = BatchOriginProbability(&run.Batch{})
	assert.ErrorIs(t, err, core.ErrEmptyBatch)
}

func TestOriginCurve(t *testing.T) {
	curve, err := OriginCurve(walks(0, 10, 4, walk.LineRule{}), 4)
	require.NoError(t, err)
	require.Len(t, curve, 5)

	got := make([]int, len(curve))
	for i, p := range curve {
		got[i] = p.AtOrigin
	}
	assert.Equal(t, []int{10, 0, 5, 0, 3}, got)
}

func TestFrequencies(t *testing.T) {
	finals := []walk.Position{{X: 2}, {X: -2}, {X: 2}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: 2}}

	got := Frequencies(finals)
	assert.Equal(t, []Frequency{
		{Position: walk.Position{X: -2}, Count: 1},
		{Position: walk.Position{X: 0, Y: -1}, Count: 1},
		{Position: walk.Position{X: 0, Y: 1}, Count: 1},
		{Position: walk.Position{X: 2}, Count: 3},
	}, got)
}

func TestNewHeatmap(t *testing.T) {
	finals := []walk.Position{{X: 0, Y: 0}, {X: 4, Y: 4}, {X: 4, Y: 4}, {X: 2, Y: 0}}

	h, err := NewHeatmap(finals, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 2, 4}, h.XEdges)
	assert.Equal(t, []float64{0, 2, 4}, h.YEdges)
	// x=2 opens the second bin; x=4 falls in the closed last bin
	assert.Equal(t, [][]int{{1, 0}, {1, 2}}, h.Counts)
	assert.Equal(t, 2, h.Max)
	assert.Equal(t, len(finals), h.Total())
}

func TestNewHeatmap_DegenerateRange(t *testing.T) {
	finals := []walk.Position{{X: 3}, {X: 3}}

	h, err := NewHeatmap(finals, 30)
	require.NoError(t, err)
	assert.Equal(t, 2.5, h.XEdges[0])
	assert.Equal(t, 3.5, h.XEdges[30])
	assert.Equal(t, 2, h.Total())

	_, err = NewHeatmap(nil, 30)
	assert.ErrorIs(t, err, core.ErrEmptyBatch)
	_, err = NewHeatmap(finals, 0)
	assert.Error(t, err)
}

func TestMeanSquaredDisplacement(t *testing.T) {
	msd, err := MeanSquaredDisplacement([]walk.Position{{X: 3, Y: 4}, {X: 1, Y: 0}})
	require.NoError(t, err)
	assert.Equal(t, 13.0, msd)

	_, err = MeanSquaredDisplacement(nil)
	assert.ErrorIs(t, err, core.ErrEmptyBatch)
}
