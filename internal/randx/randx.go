// Package randx provides independently seeded random streams. Each figure
// owns one stream derived from (seed, stream id), so figures can run in any
// order, or alone, and still produce identical numbers.
package randx

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Stream is a deterministic PCG-backed source of draws. It is not safe for
// concurrent use; derive a child stream per goroutine instead.
type Stream struct {
	rng *rand.Rand
}

// New returns the stream identified by (seed, id).
func New(seed, id uint64) *Stream {
	return &Stream{rng: rand.New(rand.NewPCG(seed, id))}
}

// Derive returns a child stream seeded from the next value of s. Calling
// Derive in a fixed order yields children that do not depend on how they
// are later scheduled.
func (s *Stream) Derive(id uint64) *Stream {
	return New(s.rng.Uint64(), id)
}

// Rand exposes the underlying generator for APIs that take a rand.Source.
func (s *Stream) Rand() *rand.Rand { return s.rng }

// Float64 returns a uniform draw in [0, 1).
func (s *Stream) Float64() float64 { return s.rng.Float64() }

// IntN returns a uniform draw in [0, n).
func (s *Stream) IntN(n int) int { return s.rng.IntN(n) }

// Perm returns a random permutation of [0, n).
func (s *Stream) Perm(n int) []int { return s.rng.Perm(n) }

// Shuffle permutes idx in place.
func (s *Stream) Shuffle(idx []int) {
	s.rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
}

// Normal draws one value from N(mu, sigma²).
func (s *Stream) Normal(mu, sigma float64) float64 {
	if sigma == 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.rng}.Rand()
}

// NormalN draws n values from N(mu, sigma²).
func (s *Stream) NormalN(n int, mu, sigma float64) []float64 {
	out := make([]float64, n)
	if sigma == 0 {
		for i := range out {
			out[i] = mu
		}
		return out
	}
	d := distuv.Normal{Mu: mu, Sigma: sigma, Src: s.rng}
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}

// Uniform draws one value from U[lo, hi).
func (s *Stream) Uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: s.rng}.Rand()
}

// UniformN draws n values from U[lo, hi).
func (s *Stream) UniformN(n int, lo, hi float64) []float64 {
	d := distuv.Uniform{Min: lo, Max: hi, Src: s.rng}
	out := make([]float64, n)
	for i := range out {
		out[i] = d.Rand()
	}
	return out
}

// Jitter returns ys with N(0, sigma²) noise added element-wise.
func (s *Stream) Jitter(ys []float64, sigma float64) []float64 {
	out := make([]float64, len(ys))
	for i, y := range ys {
		out[i] = y + s.Normal(0, sigma)
	}
	return out
}
