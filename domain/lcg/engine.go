// Package lcg implements the linear congruential generator that drives every walk:
//
//	X_{n+1} = (a*X_n + c) mod m,  R_n = X_n / m
//
// with the Numerical Recipes constants a = 1664525, c = 1013904223, m = 2^32.
package lcg

// Generator constants
const (
	Multiplier uint64 = 1664525
	Increment  uint64 = 1013904223
	Modulus    uint64 = 1 << 32
)

// Engine is the generator state. It is a plain value: copying an Engine forks the stream.
type Engine struct {
	seed uint32
}

// New creates an engine from any seed, reduced modulo 2^32
func New(seed uint64) Engine {
	return Engine{seed: uint32(seed % Modulus)}
}

// State returns the current X_n
func (e Engine) State() uint32 {
	return e.seed
}

// Next returns the advanced engine and the normalized draw in [0, 1).
// The receiver is not modified.
func (e Engine) Next() (Engine, float64) {
	next := step(e.seed)
	return Engine{seed: next}, Normalize(next)
}

// Uniform advances the engine in place and returns the draw in [0, 1)
func (e *Engine) Uniform() float64 {
	next, r := e.Next()
	*e = next
	return r
}

// Scaled advances the engine and maps the draw linearly onto [lo, hi)
func (e *Engine) Scaled(lo, hi float64) float64 {
	return lo + (hi-lo)*e.Uniform()
}

// Normalize maps a state onto [0, 1). Division by a power of two is exact in float64
// for every 32-bit state.
func Normalize(x uint32) float64 {
	return float64(x) / float64(Modulus)
}

// Iterate applies the recurrence n times to seed and returns the resulting state
// without constructing an Engine.
func Iterate(seed uint64, n int) uint32 {
	x := uint32(seed % Modulus)
	for i := 0; i < n; i++ {
		x = step(x)
	}
	return x
}

// step is a single application of the recurrence, widened to 64 bits so a*x cannot
// overflow before reduction.
func step(x uint32) uint32 {
	return uint32((Multiplier*uint64(x) + Increment) % Modulus)
}
