// Package runner drives environments with uniformly random actions, the
// way a smoke-test agent would: it plays episodes to the end (or a move
// cap), optionally traces every step, and records results.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/gym2048/internal/engine"
	"github.com/vovakirdan/gym2048/internal/env"
	"github.com/vovakirdan/gym2048/internal/registry"
	"github.com/vovakirdan/gym2048/internal/storage"
)

// Recorder persists finished episodes. *storage.Store satisfies it.
type Recorder interface {
	SaveEpisode(ctx context.Context, e storage.Episode) (string, error)
}

// Options configures a run.
type Options struct {
	EnvID    string
	Episodes int
	Workers  int
	MaxMoves int    // actions per episode, 0 = until done
	Seed     uint64 // episode i uses Seed+i
	Trace    io.Writer
}

// Result describes one played episode.
type Result struct {
	Episode int
	EnvID   string
	Seed    uint64
	Score   int
	MaxTile int
	Moves   int     // legal moves
	Steps   int     // actions taken
	Reward  float64 // sum of rewards returned by the environment
	Outcome engine.Outcome
	State   env.State
}

// Runner plays episodes.
type Runner struct {
	opts     Options
	logger   *log.Logger
	recorder Recorder

	traceMu sync.Mutex
}

// New creates a runner. logger and recorder may be nil.
func New(opts Options, logger *log.Logger, recorder Recorder) (*Runner, error) {
	if !registry.Exists(opts.EnvID) {
		return nil, fmt.Errorf("runner: unknown environment %q", opts.EnvID)
	}
	if opts.Episodes < 1 {
		return nil, fmt.Errorf("runner: episodes must be at least 1, got %d", opts.Episodes)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Workers > opts.Episodes {
		opts.Workers = opts.Episodes
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Runner{opts: opts, logger: logger, recorder: recorder}, nil
}

// Run plays all episodes and returns their results in episode order.
// Cancelling ctx stops every worker after its current step; the results
// finished so far are returned along with ctx.Err().
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	jobs := make(chan int)
	results := make([]Result, r.opts.Episodes)
	done := make([]bool, r.opts.Episodes)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for range r.opts.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res, err := r.runEpisode(ctx, i)
				mu.Lock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
				} else {
					results[i] = res
					done[i] = true
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := range r.opts.Episodes {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	finished := make([]Result, 0, len(results))
	for i, ok := range done {
		if ok {
			finished = append(finished, results[i])
		}
	}

	if firstErr == nil && ctx.Err() != nil {
		firstErr = ctx.Err()
	}
	return finished, firstErr
}

func (r *Runner) runEpisode(ctx context.Context, i int) (Result, error) {
	seed := r.opts.Seed + uint64(i)
	e, err := registry.Create(r.opts.EnvID, seed)
	if err != nil {
		return Result{}, err
	}
	e.Reset()

	r.logger.Debug("episode started", "episode", i, "env", r.opts.EnvID, "seed", seed)

	res, err := r.Play(ctx, e, env.NewSampler(seed), i)
	if err != nil {
		return res, err
	}
	res.Seed = seed

	r.logger.Info("episode finished",
		"episode", i,
		"seed", seed,
		"score", res.Score,
		"max_tile", res.MaxTile,
		"moves", res.Moves,
		"outcome", res.Outcome,
	)
	r.record(ctx, res)
	return res, nil
}

// Play drives e with random actions from sampler until it is done, the
// move cap is hit or ctx is cancelled. e must already be reset (or
// restored from a checkpoint).
func (r *Runner) Play(ctx context.Context, e env.Environment, sampler *rand.Rand, episode int) (Result, error) {
	res := Result{Episode: episode, EnvID: e.ID()}
	space := env.ActionSpace()

	r.trace(episode, 0, e.Board().Flatten(), -1, 0, e.Score(), false)

	_, done := e.IsTerminal()
	for !done {
		if r.opts.MaxMoves > 0 && res.Steps >= r.opts.MaxMoves {
			break
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}

		action := space.Sample(sampler)
		step, err := e.Step(action)
		if err != nil {
			return res, fmt.Errorf("runner: episode %d step %d: %w", episode, res.Steps, err)
		}
		res.Steps++
		res.Reward += step.Reward
		res.Moves = step.Info.Moves
		done = step.Done

		r.trace(episode, res.Steps, step.Observation, action, step.Reward, step.Info.Score, step.Done)
	}

	res.Score = e.Score()
	res.MaxTile = e.Board().MaxTile()
	res.Outcome = e.Outcome()
	res.State = e.GetState()
	res.Moves = res.State.Snapshot.Moves
	return res, nil
}

// trace writes one line per step in the form
// "#move: k, obs: [...], action: a, reward: r, score: s, done: d".
func (r *Runner) trace(episode, k int, obs env.Observation, action int, reward float64, score int, done bool) {
	if r.opts.Trace == nil {
		return
	}
	actionStr := "None"
	if action >= 0 {
		actionStr = fmt.Sprint(action)
	}

	r.traceMu.Lock()
	defer r.traceMu.Unlock()

	prefix := ""
	if r.opts.Episodes > 1 {
		prefix = fmt.Sprintf("[ep %d] ", episode)
	}
	fmt.Fprintf(r.opts.Trace, "%s#move: %d, obs: %v, action: %s, reward: %g, score: %d, done: %t\n",
		prefix, k, obs, actionStr, reward, score, done)
}

// record saves the episode. Failures are logged, not returned: a run is
// still useful without its database.
func (r *Runner) record(ctx context.Context, res Result) {
	if r.recorder == nil {
		return
	}
	id, err := r.recorder.SaveEpisode(ctx, ToEpisode(res))
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.Warn("could not record episode", "episode", res.Episode, "error", err)
		}
		return
	}
	r.logger.Debug("episode recorded", "episode", res.Episode, "id", id)
}

// ToEpisode converts a result to its stored form.
func ToEpisode(res Result) storage.Episode {
	return storage.Episode{
		EnvID:   res.EnvID,
		Seed:    res.Seed,
		Score:   res.Score,
		MaxTile: res.MaxTile,
		Moves:   res.Moves,
		Outcome: res.Outcome.String(),
	}
}
