package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedSource struct {
	draws []float64
	next  int
}

func (s *scriptedSource) Uniform() float64 {
	r := s.draws[s.next%len(s.draws)]
	s.next++
	return r
}

func TestWalk_Seed0FourSteps1D(t *testing.T) {
	// draws: 0.236, 0.278, 0.819, 0.667
	trajectory := Walk(0, 4, LineRule{})

	xs := make([]int, trajectory.Len())
	for i, p := range trajectory.Positions {
		xs[i] = p.X
		assert.Zero(t, p.Y)
	}

	assert.Equal(t, []int{0, -1, -2, -1, 0}, xs)
	assert.Equal(t, []Move{Left, Left, Right, Right}, trajectory.Moves)
	assert.Equal(t, uint64(0), trajectory.Seed)
	assert.Equal(t, OneDimensional, trajectory.Dimension)
	assert.Equal(t, []int{4}, trajectory.ReturnsToOrigin())
}

func TestWalk_Seed0SixSteps2D(t *testing.T) {
	// draws: 0.236, 0.278, 0.819, 0.667, 0.384, 0.621
	trajectory := Walk(0, 6, GridRule{})

	expected := []Position{
		{0, 0}, {-1, 0}, {0, 0}, {0, -1}, {0, 0}, {1, 0}, {1, 1},
	}
	assert.Equal(t, expected, trajectory.Positions)
	assert.Equal(t, []Move{Left, Right, Down, Up, Right, Up}, trajectory.Moves)
	assert.Equal(t, Position{X: 1, Y: 1}, trajectory.Final())
}

func TestWalk_LengthAndOrigin(t *testing.T) {
	for _, rule := range []MoveRule{LineRule{}, GridRule{}} {
		for _, steps := range []int{0, 1, 2, 17, 1000} {
			trajectory := Walk(42, steps, rule)
			require.Equal(t, steps+1, trajectory.Len(), "%s steps=%d", rule.Dimension(), steps)
			assert.Equal(t, steps, trajectory.Steps())
			assert.True(t, trajectory.Positions[0].IsOrigin())
		}
	}
}

func TestWalk_NegativeStepsIsOriginOnly(t *testing.T) {
	trajectory := Walk(1, -5, LineRule{})
	assert.Equal(t, []Position{Origin}, trajectory.Positions)
	assert.Empty(t, trajectory.Moves)
}

func TestWalk_UnitSteps(t *testing.T) {
	for _, rule := range []MoveRule{LineRule{}, GridRule{}} {
		trajectory := Walk(987654, 5000, rule)
		for i := 1; i < trajectory.Len(); i++ {
			prev, cur := trajectory.Positions[i-1], trajectory.Positions[i]
			dx, dy := abs(cur.X-prev.X), abs(cur.Y-prev.Y)
			if dx+dy != 1 {
				t.Fatalf("%s step %d moved from %v to %v", rule.Dimension(), i, prev, cur)
			}
			if rule.Dimension() == OneDimensional && cur.Y != 0 {
				t.Fatalf("1D walk left the line at step %d: %v", i, cur)
			}
		}
	}
}

func TestWalk_Deterministic(t *testing.T) {
	a := Walk(2024, 300, GridRule{})
	b := Walk(2024, 300, GridRule{})
	assert.Equal(t, a, b)

	c := Walk(2025, 300, GridRule{})
	assert.NotEqual(t, a.Positions, c.Positions)
}

func TestLineRule_Boundaries(t *testing.T) {
	tests := []struct {
		r    float64
		want Move
	}{
		{0, Left},
		{0.25, Left},
		{0.4999999, Left},
		{0.5, Right},
		{0.75, Right},
		{0.9999999, Right},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LineRule{}.Choose(tt.r), "r=%v", tt.r)
	}
}

func TestGridRule_Boundaries(t *testing.T) {
	tests := []struct {
		r    float64
		want Move
	}{
		{0, Left},
		{0.25, Left},
		{0.2500001, Right},
		{0.5, Right},
		{0.5000001, Up},
		{0.75, Up},
		{0.7500001, Down},
		{0.9999999, Down},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GridRule{}.Choose(tt.r), "r=%v", tt.r)
	}
}

func TestWalkFrom_ScriptedDraws(t *testing.T) {
	src := &scriptedSource{draws: []float64{0.1, 0.3, 0.6, 0.9}}
	trajectory := WalkFrom(src, 4, GridRule{})

	assert.Equal(t, []Position{{0, 0}, {-1, 0}, {0, 0}, {0, 1}, {0, 0}}, trajectory.Positions)
	assert.Equal(t, []int{2, 4}, trajectory.ReturnsToOrigin())
}

func TestTrajectory_AtAndPoints(t *testing.T) {
	trajectory := Walk(0, 4, LineRule{})

	pos, ok := trajectory.At(2)
	require.True(t, ok)
	assert.Equal(t, Position{X: -2}, pos)

	_, ok = trajectory.At(5)
	assert.False(t, ok)
	_, ok = trajectory.At(-1)
	assert.False(t, ok)

	points := trajectory.Points()
	require.Len(t, points, 5)
	for i, p := range points {
		assert.Equal(t, i, p.Iteration)
		assert.Equal(t, trajectory.Positions[i], p.Position)
	}
}

func TestWalkDimension(t *testing.T) {
	trajectory, err := WalkDimension(0, 4, OneDimensional)
	require.NoError(t, err)
	assert.Equal(t, Walk(0, 4, LineRule{}), trajectory)

	_, err = WalkDimension(0, 4, Dimension(3))
	assert.Error(t, err)
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension(2)
	require.NoError(t, err)
	assert.Equal(t, TwoDimensional, d)

	for _, bad := range []int{0, -1, 3} {
		_, err := ParseDimension(bad)
		assert.Error(t, err, "dimension %d", bad)
	}
}

func TestPosition_Format(t *testing.T) {
	p := Position{X: 3, Y: -1}
	assert.Equal(t, "3", p.Format(OneDimensional))
	assert.Equal(t, "(3, -1)", p.Format(TwoDimensional))
	assert.Equal(t, 4, p.ManhattanDistance())
	assert.Equal(t, 10, p.SquaredDistance())
}
