package rng

import (
	"time"

	"go.uber.org/zap"
)

// Sampler wraps a Source with the sampling operations the simulation needs.
// Draws that steer pacing decisions are logged at debug level so a session
// trace can be replayed against its decisions.
type Sampler struct {
	src    Source
	logger *zap.Logger
}

// NewSampler creates a Sampler drawing from src and logging to logger.
//
// Precondition: src and logger must be non-nil.
func NewSampler(src Source, logger *zap.Logger) *Sampler {
	return &Sampler{src: src, logger: logger}
}

// Intn returns a random int in [0, n).
//
// Precondition: n > 0.
func (s *Sampler) Intn(n int) int {
	return s.src.Intn(n)
}

// Float64 returns a random float64 in [0, 1).
func (s *Sampler) Float64() float64 {
	const resolution = 1 << 24
	return float64(s.src.Intn(resolution)) / resolution
}

// Range returns a uniform random float64 in [min, max].
//
// Precondition: min <= max.
// Postcondition: min <= result <= max.
func (s *Sampler) Range(min, max float64) float64 {
	if min >= max {
		return min
	}
	return min + s.Float64()*(max-min)
}

// Duration returns a uniform random duration in [min, max], logged at debug
// level with the bounds and the draw.
//
// Precondition: min <= max.
// Postcondition: min <= result <= max.
func (s *Sampler) Duration(min, max time.Duration) time.Duration {
	if min >= max {
		return min
	}
	d := min + time.Duration(s.Float64()*float64(max-min))
	s.logger.Debug("duration draw",
		zap.Duration("min", min),
		zap.Duration("max", max),
		zap.Duration("drawn", d),
	)
	return d
}

// Pick returns a random valid index into a collection of length n, or -1 if
// n <= 0. Used for animation-sequence, sound, and probe-start selection.
//
// Postcondition: -1 <= result < n.
func (s *Sampler) Pick(n int) int {
	if n <= 0 {
		return -1
	}
	return s.src.Intn(n)
}
