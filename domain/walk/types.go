package walk

import (
	"fmt"

	"frogwalk/domain/core"
)

// Dimension selects the lattice the frog walks on
type Dimension int

const (
	OneDimensional Dimension = 1
	TwoDimensional Dimension = 2
)

// ParseDimension validates a raw dimension value
func ParseDimension(n int) (Dimension, error) {
	switch Dimension(n) {
	case OneDimensional, TwoDimensional:
		return Dimension(n), nil
	default:
		return 0, fmt.Errorf("%w: got %d", core.ErrUnsupportedDimension, n)
	}
}

func (d Dimension) String() string {
	switch d {
	case OneDimensional:
		return "1D"
	case TwoDimensional:
		return "2D"
	default:
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
}

// Position is a lattice point. One-dimensional walks only use X; Y stays 0.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Origin is where every walk starts
var Origin = Position{}

// IsOrigin reports whether p is the origin
func (p Position) IsOrigin() bool {
	return p == Origin
}

// Add returns p translated by the move's unit vector
func (p Position) Add(m Move) Position {
	dx, dy := m.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// ManhattanDistance returns |x| + |y|
func (p Position) ManhattanDistance() int {
	return abs(p.X) + abs(p.Y)
}

// SquaredDistance returns x² + y²
func (p Position) SquaredDistance() int {
	return p.X*p.X + p.Y*p.Y
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Format renders the position the way the dimension reads naturally: "3" or "(3, -1)"
func (p Position) Format(d Dimension) string {
	if d == OneDimensional {
		return fmt.Sprintf("%d", p.X)
	}
	return p.String()
}

// Move is a single unit step
type Move int

const (
	Left Move = iota
	Right
	Up
	Down
)

// Delta returns the unit vector of the move
func (m Move) Delta() (dx, dy int) {
	switch m {
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Up:
		return 0, 1
	case Down:
		return 0, -1
	default:
		return 0, 0
	}
}

func (m Move) String() string {
	switch m {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("Move(%d)", int(m))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
