package ports

import (
	"context"

	"frogwalk/domain/walk"
)

// TrajectorySink renders one walk as ordered (iteration, position) pairs
type TrajectorySink interface {
	RenderTrajectory(ctx context.Context, d walk.Dimension, points []walk.Point) error
}

// DistributionSink renders an unordered collection of final positions
type DistributionSink interface {
	RenderDistribution(ctx context.Context, d walk.Dimension, finals []walk.Position) error
}
