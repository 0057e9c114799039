package profiling

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"frogwalk/internal"
	"frogwalk/ports"
)

// samplingInterval is how often the heap is polled while a measured call runs
const samplingInterval = 2 * time.Millisecond

// Measure runs fn, returning its result unchanged together with the elapsed time and
// heap usage observed while it ran. Peak is sampled, so very short spikes can be missed.
func Measure[T any](name string, fn func() T) (T, ports.Measurement) {
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	var (
		result  T
		elapsed time.Duration
		peak    uint64
	)
	func() {
		sampler := startHeapSampler(before.HeapAlloc)
		defer func() { peak = sampler.stop() }()
		start := time.Now()
		result = fn()
		elapsed = time.Since(start)
	}()

	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	if after.HeapAlloc > peak {
		peak = after.HeapAlloc
	}

	return result, ports.Measurement{
		Name:         name,
		Elapsed:      elapsed,
		CurrentBytes: delta(after.HeapAlloc, before.HeapAlloc),
		PeakBytes:    delta(peak, before.HeapAlloc),
	}
}

// MeasureErr is Measure for calls that can fail
func MeasureErr[T any](name string, fn func() (T, error)) (T, ports.Measurement, error) {
	type outcome struct {
		value T
		err   error
	}
	out, m := Measure(name, func() outcome {
		v, err := fn()
		return outcome{value: v, err: err}
	})
	return out.value, m, out.err
}

// Format renders a measurement as two human-readable lines
func Format(m ports.Measurement) string {
	seconds := m.Elapsed.Seconds()
	return fmt.Sprintf("Elapsed: %.4f s (%.2f min)\nMemory: %.4f MB; peak: %.4f MB",
		seconds, seconds/60, float64(m.CurrentBytes)/1e6, float64(m.PeakBytes)/1e6)
}

// LogRecorder writes every measurement to a logger
type LogRecorder struct {
	logger *internal.Logger
}

// NewLogRecorder creates a recorder that logs at INFO
func NewLogRecorder(logger *internal.Logger) *LogRecorder {
	return &LogRecorder{logger: logger.WithComponent("metrics")}
}

func (r *LogRecorder) Record(m ports.Measurement) {
	r.logger.Info("%s took %s, heap %.4f MB (peak %.4f MB)",
		m.Name, m.Elapsed, float64(m.CurrentBytes)/1e6, float64(m.PeakBytes)/1e6)
}

// Collector keeps measurements in memory
type Collector struct {
	mu           sync.Mutex
	measurements []ports.Measurement
}

func (c *Collector) Record(m ports.Measurement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.measurements = append(c.measurements, m)
}

// Measurements returns a copy of everything recorded so far
func (c *Collector) Measurements() []ports.Measurement {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ports.Measurement, len(c.measurements))
	copy(out, c.measurements)
	return out
}

type heapSampler struct {
	done chan struct{}
	peak chan uint64
}

func startHeapSampler(initial uint64) *heapSampler {
	s := &heapSampler{done: make(chan struct{}), peak: make(chan uint64, 1)}
	go func() {
		peak := initial
		ticker := time.NewTicker(samplingInterval)
		defer ticker.Stop()
		var ms runtime.MemStats
		for {
			select {
			case <-s.done:
				s.peak <- peak
				return
			case <-ticker.C:
				runtime.ReadMemStats(&ms)
				if ms.HeapAlloc > peak {
					peak = ms.HeapAlloc
				}
			}
		}
	}()
	return s
}

func (s *heapSampler) stop() uint64 {
	close(s.done)
	return <-s.peak
}

func delta(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
