package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is returned by Restore for snapshots that cannot
// describe a real game.
var ErrInvalidSnapshot = errors.New("engine: invalid snapshot")

// Snapshot is a deep copy of everything that determines future play:
// board, score, move count and the random source's internal state.
type Snapshot struct {
	Board  Board  `json:"board"`
	Score  int    `json:"score"`
	Moves  int    `json:"moves"`
	Seed   uint64 `json:"seed"`
	Source []byte `json:"source"`
}

// Snapshot captures the engine state.
func (e *Engine) Snapshot() Snapshot {
	// PCG state marshaling cannot fail.
	state, _ := e.src.MarshalBinary()
	return Snapshot{
		Board:  e.board,
		Score:  e.score,
		Moves:  e.moves,
		Seed:   e.seed,
		Source: state,
	}
}

// Restore replaces the engine state with the snapshot. The engine is left
// unchanged if the snapshot is invalid.
func (e *Engine) Restore(s Snapshot) error {
	if err := s.Board.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if s.Score < 0 || s.Moves < 0 {
		return fmt.Errorf("%w: negative score or move count", ErrInvalidSnapshot)
	}

	src := &Source{}
	if err := src.UnmarshalBinary(s.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	e.board = s.Board
	e.score = s.Score
	e.moves = s.Moves
	e.seed = s.Seed
	e.src = src
	return nil
}

// FromSnapshot builds a new engine from a snapshot.
func FromSnapshot(s Snapshot) (*Engine, error) {
	e := &Engine{}
	if err := e.Restore(s); err != nil {
		return nil, err
	}
	return e, nil
}
