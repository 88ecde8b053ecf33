package env

import (
	"math/rand/v2"

	"github.com/vovakirdan/gym2048/internal/engine"
)

// Discrete is a space of n integer actions {0, ..., n-1}.
type Discrete struct {
	N int
}

// Contains reports whether a is a member of the space.
func (d Discrete) Contains(a int) bool {
	return a >= 0 && a < d.N
}

// Sample draws a uniformly random action from r.
func (d Discrete) Sample(r *rand.Rand) int {
	return r.IntN(d.N)
}

// SamplerStream selects the PCG stream of action samplers so that a
// sampler and an engine built from the same seed draw different numbers.
const SamplerStream = 0x2048

// NewSampler returns the random source used to sample actions for seed.
func NewSampler(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, SamplerStream))
}

// Box is a bounded space of integer vectors of a fixed length.
type Box struct {
	Low   int
	High  int
	Shape int
}

// Contains reports whether v has the right length and every element lies
// in [Low, High].
func (b Box) Contains(v []int) bool {
	if len(v) != b.Shape {
		return false
	}
	for _, x := range v {
		if x < b.Low || x > b.High {
			return false
		}
	}
	return true
}

// ActionSpace is the space of moves: 0=left, 1=right, 2=up, 3=down.
func ActionSpace() Discrete {
	return Discrete{N: engine.NumDirections}
}

// ObservationSpace is the flattened board. The game ends when a cell
// reaches engine.WinTile, so that is the highest observable value.
func ObservationSpace() Box {
	return Box{Low: 0, High: engine.WinTile, Shape: engine.Cells}
}
