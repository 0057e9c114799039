package walk

import (
	"frogwalk/domain/lcg"
)

// Source yields uniform draws in [0, 1). *lcg.Engine satisfies it.
type Source interface {
	Uniform() float64
}

// Trajectory is the full path of one walk: Positions[0] is the origin and
// Positions[i] is the position after step i. Moves[i] is the move taken at step i+1.
type Trajectory struct {
	Dimension Dimension  `json:"dimension"`
	Seed      uint64     `json:"seed"`
	Positions []Position `json:"positions"`
	Moves     []Move     `json:"moves"`
}

// Point pairs an iteration number with the position reached at it
type Point struct {
	Iteration int      `json:"iteration"`
	Position  Position `json:"position"`
}

// Walk runs a walk of the given number of steps with a fresh engine seeded with seed.
// A negative step count is treated as zero.
func Walk(seed uint64, steps int, rule MoveRule) Trajectory {
	engine := lcg.New(seed)
	t := WalkFrom(&engine, steps, rule)
	t.Seed = seed
	return t
}

// WalkDimension is Walk with the rule picked from the dimension
func WalkDimension(seed uint64, steps int, d Dimension) (Trajectory, error) {
	rule, err := RuleFor(d)
	if err != nil {
		return Trajectory{}, err
	}
	return Walk(seed, steps, rule), nil
}

// WalkFrom drains src for steps draws
func WalkFrom(src Source, steps int, rule MoveRule) Trajectory {
	if steps < 0 {
		steps = 0
	}

	positions := make([]Position, 1, steps+1)
	moves := make([]Move, 0, steps)
	current := Origin
	positions[0] = current

	for i := 0; i < steps; i++ {
		move := rule.Choose(src.Uniform())
		current = current.Add(move)
		positions = append(positions, current)
		moves = append(moves, move)
	}

	return Trajectory{
		Dimension: rule.Dimension(),
		Positions: positions,
		Moves:     moves,
	}
}

// Len is the number of recorded positions (steps + 1)
func (t Trajectory) Len() int {
	return len(t.Positions)
}

// Steps is the number of moves taken
func (t Trajectory) Steps() int {
	return len(t.Moves)
}

// Final returns the last position
func (t Trajectory) Final() Position {
	if len(t.Positions) == 0 {
		return Origin
	}
	return t.Positions[len(t.Positions)-1]
}

// At returns the position after step; ok is false when step is outside the trajectory
func (t Trajectory) At(step int) (pos Position, ok bool) {
	if step < 0 || step >= len(t.Positions) {
		return Position{}, false
	}
	return t.Positions[step], true
}

// Points returns the trajectory as (iteration, position) pairs
func (t Trajectory) Points() []Point {
	points := make([]Point, len(t.Positions))
	for i, p := range t.Positions {
		points[i] = Point{Iteration: i, Position: p}
	}
	return points
}

// ReturnsToOrigin lists the steps (excluding 0) at which the walk is back at the origin
func (t Trajectory) ReturnsToOrigin() []int {
	var steps []int
	for i := 1; i < len(t.Positions); i++ {
		if t.Positions[i].IsOrigin() {
			steps = append(steps, i)
		}
	}
	return steps
}
