package engine

import (
	"fmt"
	"math/rand/v2"
)

// Spawn weights: a new tile is a 2 three times out of four, otherwise a 4.
const (
	spawnWeightTwo  = 3
	spawnWeightFour = 1
)

// Source is the engine's owned random generator. It is backed by a PCG
// whose full state can be serialized, so a snapshot reproduces every
// later draw exactly.
type Source struct {
	pcg *rand.PCG
	r   *rand.Rand
}

// NewSource creates a source seeded with seed.
func NewSource(seed uint64) *Source {
	pcg := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Source{pcg: pcg, r: rand.New(pcg)}
}

// Seed resets the generator to the state produced by seed.
func (s *Source) Seed(seed uint64) {
	s.pcg.Seed(seed, seed^0x9e3779b97f4a7c15)
}

// Coord draws a uniformly random board coordinate.
func (s *Source) Coord() Cell {
	return Cell{Row: s.r.IntN(Size), Col: s.r.IntN(Size)}
}

// TileValue draws the value of a spawned tile: 2 or 4 with 3:1 odds.
func (s *Source) TileValue() int {
	if s.r.IntN(spawnWeightTwo+spawnWeightFour) < spawnWeightFour {
		return 4
	}
	return 2
}

// MarshalBinary returns the generator's internal state.
func (s *Source) MarshalBinary() ([]byte, error) {
	return s.pcg.MarshalBinary()
}

// UnmarshalBinary restores state produced by MarshalBinary.
func (s *Source) UnmarshalBinary(data []byte) error {
	if s.pcg == nil {
		s.pcg = rand.NewPCG(0, 0)
		s.r = rand.New(s.pcg)
	}
	if err := s.pcg.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("engine: cannot restore random source: %w", err)
	}
	return nil
}

// Clone returns an independent source in the same state.
func (s *Source) Clone() *Source {
	pcg := *s.pcg
	return &Source{pcg: &pcg, r: rand.New(&pcg)}
}
