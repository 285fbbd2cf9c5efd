// rand/rand.go
// Copyright(c) 2024-2025 drakula contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"time"

	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

// Rand is a PCG32 generator. Games are replayed exactly from the seed of
// the *Rand they are given.
type Rand struct {
	r    *pcg.PCG32
	seed int64
}

const pcgIncrement = 0xda3e39cb94b95bdb

// Make returns a generator seeded from the clock.
func Make() *Rand {
	return MakeSeeded(time.Now().UnixNano())
}

// MakeSeeded returns a generator that produces the same sequence every
// time for a given seed.
func MakeSeeded(seed int64) *Rand {
	r := &Rand{r: pcg.NewPCG32()}
	r.Seed(seed)
	return r
}

func (r *Rand) Seed(s int64) {
	r.seed = s
	r.r.Seed(uint64(s), pcgIncrement)
}

// SeedValue returns the seed that was last passed to Seed.
func (r *Rand) SeedValue() int64 {
	return r.seed
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

// Float64 returns a value in [0,1).
func (r *Rand) Float64() float64 {
	return float64(r.r.Random()) / (1 << 32)
}

// SampleIndex returns the index of an element of weights chosen with
// probability proportional to its weight. Non-positive weights are never
// chosen; -1 is returned if no weight is positive.
func (r *Rand) SampleIndex(weights []float64) int {
	var sum float64
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum == 0 {
		return -1
	}

	u := r.Float64() * sum
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		if u < w {
			return i
		}
		u -= w
		last = i
	}
	// Round-off can leave a sliver at the end.
	return last
}

// SampleFiltered uniformly randomly samples a slice, returning the index
// of the sampled item, using provided predicate function to filter the
// items that may be sampled.  An index of -1 is returned if the slice is
// empty or the predicate returns false for all items.
func SampleFiltered[T any](r *Rand, slice []T, pred func(T) bool) int {
	idx := -1
	candidates := 0
	for i, v := range slice {
		if pred(v) {
			candidates++
			if r.Intn(candidates) == 0 {
				idx = i
			}
		}
	}
	return idx
}

// ShuffleSlice shuffles the slice in place (Fisher-Yates).
func ShuffleSlice[Slice ~[]E, E any](s Slice, r *Rand) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
