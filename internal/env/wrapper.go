package env

import (
	"github.com/vovakirdan/gym2048/internal/engine"
)

// AccumulatingID is the registry identifier of the accumulating wrapper.
const AccumulatingID = "2048-acc-v0"

// State is a deep copy of a wrapped environment: the engine snapshot plus
// the running reward.
type State struct {
	Snapshot      engine.Snapshot `json:"snapshot"`
	RunningReward float64         `json:"running_reward"`
}

// Accumulating wraps an Env so that reward is summed over the episode and
// paid out only on the step that ends it; every other step reports 0.
type Accumulating struct {
	inner   *Env
	running float64
}

// NewAccumulating wraps a fresh environment seeded with seed.
func NewAccumulating(seed uint64) *Accumulating {
	inner := New(seed)
	inner.id = AccumulatingID
	return &Accumulating{inner: inner}
}

// ID returns the registry identifier.
func (a *Accumulating) ID() string {
	return a.inner.ID()
}

// Reset zeroes the running reward and starts a new game.
func (a *Accumulating) Reset() Observation {
	a.running = 0
	return a.inner.Reset()
}

// Step forwards to the inner environment and applies the accumulation
// policy to the reward.
func (a *Accumulating) Step(action int) (StepResult, error) {
	res, err := a.inner.Step(action)
	if err != nil {
		res.Reward = 0
		return res, err
	}
	a.running += res.Reward
	if res.Done {
		res.Reward = a.running
	} else {
		res.Reward = 0
	}
	return res, nil
}

// ActionMask marks every action as available. Illegal moves are no-ops,
// never errors, so nothing is masked.
func (a *Accumulating) ActionMask() [engine.NumDirections]uint8 {
	var mask [engine.NumDirections]uint8
	for i := range mask {
		mask[i] = 1
	}
	return mask
}

// RunningReward returns the reward accumulated so far in this episode.
func (a *Accumulating) RunningReward() float64 {
	return a.running
}

// GetState captures the engine and the running reward.
func (a *Accumulating) GetState() State {
	return State{Snapshot: a.inner.Snapshot(), RunningReward: a.running}
}

// SetState restores a state captured by GetState.
func (a *Accumulating) SetState(s State) (Observation, error) {
	obs, err := a.inner.Restore(s.Snapshot)
	if err != nil {
		return obs, err
	}
	a.running = s.RunningReward
	return obs, nil
}

// Seed re-seeds the inner environment.
func (a *Accumulating) Seed(seed uint64) uint64 {
	return a.inner.Seed(seed)
}

// Board returns a copy of the current board.
func (a *Accumulating) Board() engine.Board {
	return a.inner.Board()
}

// Score returns the cumulative merge score.
func (a *Accumulating) Score() int {
	return a.inner.Score()
}

// Outcome classifies the current board.
func (a *Accumulating) Outcome() engine.Outcome {
	return a.inner.Outcome()
}

// IsTerminal returns the engine's (reward, done) pair for the board.
func (a *Accumulating) IsTerminal() (reward float64, done bool) {
	return a.inner.IsTerminal()
}
