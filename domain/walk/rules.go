package walk

// MoveRule turns one uniform draw into a move
type MoveRule interface {
	Dimension() Dimension
	Choose(r float64) Move
}

// LineRule is the one-dimensional rule: r < 0.5 steps left, anything else steps right.
// The boundary value 0.5 goes right.
type LineRule struct{}

func (LineRule) Dimension() Dimension { return OneDimensional }

func (LineRule) Choose(r float64) Move {
	if r < 0.5 {
		return Left
	}
	return Right
}

// GridRule is the two-dimensional rule. [0,1) is split into quartiles with closed upper
// bounds: r <= 0.25 left, r <= 0.5 right, r <= 0.75 up, otherwise down.
type GridRule struct{}

func (GridRule) Dimension() Dimension { return TwoDimensional }

func (GridRule) Choose(r float64) Move {
	switch {
	case r <= 0.25:
		return Left
	case r <= 0.5:
		return Right
	case r <= 0.75:
		return Up
	default:
		return Down
	}
}

// RuleFor returns the move rule for a dimension
func RuleFor(d Dimension) (MoveRule, error) {
	switch d {
	case OneDimensional:
		return LineRule{}, nil
	case TwoDimensional:
		return GridRule{}, nil
	default:
		_, err := ParseDimension(int(d))
		return nil, err
	}
}
