// Package env adapts the board engine to a reinforcement-learning style
// interface: Reset and Step over a discrete action space, a flattened board
// observation, a scalar reward and a done flag.
package env

import (
	"github.com/vovakirdan/gym2048/internal/engine"
)

// Observation is the board flattened in row-major order.
type Observation = [engine.Cells]int

// Info carries diagnostic values alongside each step.
type Info struct {
	Score   int
	Moves   int
	MaxTile int
	Legal   bool // whether the action changed the board
	Outcome engine.Outcome
}

// StepResult is returned by Step.
type StepResult struct {
	Observation Observation
	Reward      float64
	Done        bool
	Info        Info
}

// Environment is satisfied by Env and by its wrappers.
type Environment interface {
	ID() string
	Reset() Observation
	Step(action int) (StepResult, error)
	Seed(seed uint64) uint64
	Board() engine.Board
	Score() int
	Outcome() engine.Outcome
	IsTerminal() (reward float64, done bool)
	GetState() State
	SetState(s State) (Observation, error)
}

// Env exposes one engine as an environment. The engine's own reward is
// emitted only on the terminal transition: 1.0 for a win, 0 otherwise.
type Env struct {
	id  string
	eng *engine.Engine
}

// ID of the plain environment in the registry.
const ID = "2048-v0"

// New creates an environment whose engine is seeded with seed.
func New(seed uint64) *Env {
	return &Env{id: ID, eng: engine.New(seed)}
}

// ID returns the registry identifier.
func (e *Env) ID() string {
	return e.id
}

// Reset starts a new game and returns its observation.
func (e *Env) Reset() Observation {
	return e.eng.Reset()
}

// Step applies action (0=left, 1=right, 2=up, 3=down). Actions outside the
// action space fail with engine.ErrInvalidDirection; stepping a finished
// game fails with engine.ErrGameOver.
func (e *Env) Step(action int) (StepResult, error) {
	legal := false
	if d, err := engine.DirectionFromAction(action); err == nil {
		legal = e.eng.CanMove(d)
	}

	obs, reward, done, err := e.eng.Step(action)
	if err != nil {
		return StepResult{Observation: obs, Reward: reward, Done: done, Info: e.info(false)}, err
	}
	return StepResult{
		Observation: obs,
		Reward:      reward,
		Done:        done,
		Info:        e.info(legal),
	}, nil
}

func (e *Env) info(legal bool) Info {
	return Info{
		Score:   e.eng.Score(),
		Moves:   e.eng.Moves(),
		MaxTile: e.eng.Board().MaxTile(),
		Legal:   legal,
		Outcome: e.eng.Outcome(),
	}
}

// Seed re-seeds the engine's random source and returns the seed used. The
// next Reset starts from it.
func (e *Env) Seed(seed uint64) uint64 {
	e.eng.Seed(seed)
	return seed
}

// Board returns a copy of the current board.
func (e *Env) Board() engine.Board {
	return e.eng.Board()
}

// Score returns the cumulative merge score.
func (e *Env) Score() int {
	return e.eng.Score()
}

// Moves returns the number of legal moves in the current game.
func (e *Env) Moves() int {
	return e.eng.Moves()
}

// Outcome classifies the current board.
func (e *Env) Outcome() engine.Outcome {
	return e.eng.Outcome()
}

// IsTerminal returns the engine's (reward, done) pair for the board.
func (e *Env) IsTerminal() (reward float64, done bool) {
	return e.eng.IsTerminal()
}

// Snapshot returns a deep copy of the engine state.
func (e *Env) Snapshot() engine.Snapshot {
	return e.eng.Snapshot()
}

// Restore replaces the engine state and returns the new observation.
func (e *Env) Restore(s engine.Snapshot) (Observation, error) {
	if err := e.eng.Restore(s); err != nil {
		return e.eng.Observation(), err
	}
	return e.eng.Observation(), nil
}

// GetState captures the engine. A plain environment has no running reward.
func (e *Env) GetState() State {
	return State{Snapshot: e.Snapshot()}
}

// SetState restores the engine from s and ignores its running reward.
func (e *Env) SetState(s State) (Observation, error) {
	return e.Restore(s.Snapshot)
}
