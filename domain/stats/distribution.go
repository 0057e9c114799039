package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"frogwalk/domain/core"
	"frogwalk/domain/walk"
)

// Frequency is how many runs ended at one position
type Frequency struct {
	Position walk.Position `json:"position"`
	Count    int           `json:"count"`
}

// Frequencies counts final positions, ordered by X then Y
func Frequencies(finals []walk.Position) []Frequency {
	counts := make(map[walk.Position]int, len(finals))
	for _, p := range finals {
		counts[p]++
	}

	out := make([]Frequency, 0, len(counts))
	for p, c := range counts {
		out = append(out, Frequency{Position: p, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position.X != out[j].Position.X {
			return out[i].Position.X < out[j].Position.X
		}
		return out[i].Position.Y < out[j].Position.Y
	})
	return out
}

// Heatmap is a 2D histogram of final positions. Counts[i][j] covers
// [XEdges[i], XEdges[i+1]) x [YEdges[j], YEdges[j+1]); the last bin on each axis is closed.
type Heatmap struct {
	Bins   int       `json:"bins"`
	XEdges []float64 `json:"x_edges"`
	YEdges []float64 `json:"y_edges"`
	Counts [][]int   `json:"counts"`
	Max    int       `json:"max"`
}

// NewHeatmap bins final positions into a bins x bins grid spanning their range
func NewHeatmap(finals []walk.Position, bins int) (*Heatmap, error) {
	if len(finals) == 0 {
		return nil, core.ErrEmptyBatch
	}
	if bins <= 0 {
		return nil, fmt.Errorf("heatmap needs at least one bin, got %d", bins)
	}

	xs := make([]float64, len(finals))
	ys := make([]float64, len(finals))
	for i, p := range finals {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}

	h := &Heatmap{
		Bins:   bins,
		XEdges: edges(xs, bins),
		YEdges: edges(ys, bins),
		Counts: make([][]int, bins),
	}
	for i := range h.Counts {
		h.Counts[i] = make([]int, bins)
	}

	for i := range finals {
		bx := binIndex(h.XEdges, xs[i])
		by := binIndex(h.YEdges, ys[i])
		h.Counts[bx][by]++
		if h.Counts[bx][by] > h.Max {
			h.Max = h.Counts[bx][by]
		}
	}

	return h, nil
}

// Total is the number of positions binned
func (h *Heatmap) Total() int {
	total := 0
	for _, row := range h.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// edges spans [min, max] with bins+1 evenly spaced edges. A degenerate range is
// widened to [v-0.5, v+0.5].
func edges(values []float64, bins int) []float64 {
	lo, hi := floats.Min(values), floats.Max(values)
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	return floats.Span(make([]float64, bins+1), lo, hi)
}

func binIndex(edges []float64, v float64) int {
	bins := len(edges) - 1
	i := sort.SearchFloat64s(edges, v)
	// SearchFloat64s returns the first edge >= v; an exact hit belongs to the bin it opens
	if i < len(edges) && edges[i] == v {
		if i == bins {
			return bins - 1
		}
		return i
	}
	return i - 1
}

// MeanSquaredDisplacement is the mean of x²+y² over final positions; for an unbiased
// unit-step walk it equals the step count in expectation.
func MeanSquaredDisplacement(finals []walk.Position) (float64, error) {
	if len(finals) == 0 {
		return math.NaN(), core.ErrEmptyBatch
	}
	sq := make([]float64, len(finals))
	for i, p := range finals {
		sq[i] = float64(p.SquaredDistance())
	}
	return stat.Mean(sq, nil), nil
}
