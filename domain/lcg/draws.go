package lcg

// Draw is one value of a bounded draw sequence together with the unit draw it came from
type Draw struct {
	Index  int     `json:"index"`
	Unit   float64 `json:"unit"`
	Scaled float64 `json:"scaled"`
}

// Draws produces n consecutive draws from seed, each also scaled onto [lo, hi)
func Draws(seed uint64, n int, lo, hi float64) []Draw {
	if n <= 0 {
		return nil
	}
	engine := New(seed)
	draws := make([]Draw, n)
	for i := range draws {
		var r float64
		engine, r = engine.Next()
		draws[i] = Draw{
			Index:  i,
			Unit:   r,
			Scaled: lo + (hi-lo)*r,
		}
	}
	return draws
}

// Sequence returns the first n unit draws for seed
func Sequence(seed uint64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	engine := New(seed)
	out := make([]float64, n)
	for i := range out {
		out[i] = engine.Uniform()
	}
	return out
}
