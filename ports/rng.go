package ports

import (
	"frogwalk/domain/walk"
)

// RNGPort provides seeded uniform streams for walks
type RNGPort interface {
	// Stream creates a fresh deterministic stream for one run. Two calls with the same
	// seed must yield identical sequences.
	Stream(seed uint64) walk.Source

	// BaseSeed returns a seed for batches that did not specify one
	BaseSeed() uint64
}
