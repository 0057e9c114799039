package rng

import (
	"time"

	"frogwalk/domain/lcg"
	"frogwalk/domain/walk"
)

// seedModulus bounds clock-derived seeds to [0, 2^32-1)
const seedModulus = 1<<32 - 1

// LCGAdapter hands out fresh LCG engines, one per run
type LCGAdapter struct {
	now func() time.Time
}

// NewLCGAdapter creates an adapter that derives default seeds from the wall clock
func NewLCGAdapter() *LCGAdapter {
	return &LCGAdapter{now: time.Now}
}

// NewLCGAdapterWithClock is NewLCGAdapter with an injectable clock
func NewLCGAdapterWithClock(now func() time.Time) *LCGAdapter {
	return &LCGAdapter{now: now}
}

func (a *LCGAdapter) Stream(seed uint64) walk.Source {
	engine := lcg.New(seed)
	return &engine
}

// BaseSeed derives a seed from the current time in microseconds
func (a *LCGAdapter) BaseSeed() uint64 {
	return SeedFromTime(a.now())
}

// SeedFromTime maps a time to a seed in [0, 2^32-1)
func SeedFromTime(t time.Time) uint64 {
	micros := t.UnixMicro()
	if micros < 0 {
		micros = -micros
	}
	return uint64(micros) % seedModulus
}
