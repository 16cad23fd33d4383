// Package random provides the deterministic seeded randomness used to generate a run.
//
// Every generative decision draws from a single Source so that a seed reproduces
// an identical artwork.
package random

import (
	"math"
	"math/rand/v2"
)

// Source is the set of draws the sketch needs.
type Source interface {
	// Int returns an integer in [min, max], both inclusive.
	Int(min, max int) int
	// Num returns a float in [min, max).
	Num(min, max float64) float64
	// Exp returns a float in [min, max) distributed evenly in log space.
	Exp(min, max float64) float64
	// Bool returns a fair coin flip.
	Bool() bool
	// Float64 returns a float in [0, 1).
	Float64() float64
}

// PCG is a Source backed by math/rand/v2's PCG generator.
type PCG struct {
	r    *rand.Rand
	seed int64
}

// New creates a deterministic source from seed.
func New(seed int64) *PCG {
	return &PCG{r: rand.New(rand.NewPCG(uint64(seed), 0)), seed: seed}
}

// Seed returns the seed the source was created with.
func (p *PCG) Seed() int64 { return p.seed }

func (p *PCG) Float64() float64 { return p.r.Float64() }

func (p *PCG) Int(min, max int) int {
	if max <= min {
		return min
	}
	return min + p.r.IntN(max-min+1)
}

func (p *PCG) Num(min, max float64) float64 {
	return min + p.r.Float64()*(max-min)
}

func (p *PCG) Exp(min, max float64) float64 {
	if min <= 0 || max <= min {
		return p.Num(min, max)
	}
	return min * math.Pow(max/min, p.r.Float64())
}

func (p *PCG) Bool() bool {
	return p.r.IntN(2) == 1
}

// Choice returns one element of list. It returns the zero value for an empty list.
func Choice[T any](src Source, list []T) T {
	var zero T
	if len(list) == 0 {
		return zero
	}
	return list[src.Int(0, len(list)-1)]
}
