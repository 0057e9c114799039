package ports

import (
	"time"
)

// Measurement is what the metrics harness observed around one call
type Measurement struct {
	Name         string        `json:"name"`
	Elapsed      time.Duration `json:"elapsed"`
	CurrentBytes uint64        `json:"current_bytes"`
	PeakBytes    uint64        `json:"peak_bytes"`
}

// MetricsPort receives measurements taken around batch executions
type MetricsPort interface {
	Record(m Measurement)
}
