package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gym2048/internal/engine"
	"github.com/vovakirdan/gym2048/internal/runner"
	"github.com/vovakirdan/gym2048/internal/storage"
)

var (
	flagEnv        string
	flagEpisodes   int
	flagWorkers    int
	flagMaxMoves   int
	flagVerbose    bool
	flagCheckpoint string
	flagNoRecord   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Play episodes with uniformly random actions",
	Long: `Plays episodes of an environment with uniformly random actions and
records each one in the database. Episode i is seeded with seed+i, so a run
is reproducible from the logged seed.

With --verbose every step is printed as
  #move: k, obs: [...], action: a, reward: r, score: s, done: d

With --checkpoint the final state of the last episode is saved under the
given name; combine it with --max-moves to stop mid-game and resume later.

Examples:
  gym2048 run
  gym2048 run --env 2048-acc-v0 --episodes 1000 --workers 8
  gym2048 run --seed 42 --verbose
  gym2048 run --max-moves 100 --checkpoint opening`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagEnv, "env", "", "Environment ID (default from config)")
	runCmd.Flags().IntVarP(&flagEpisodes, "episodes", "n", 0, "Episodes to play (default from config)")
	runCmd.Flags().IntVarP(&flagWorkers, "workers", "w", 0, "Environments played in parallel (default from config)")
	runCmd.Flags().IntVar(&flagMaxMoves, "max-moves", 0, "Stop each episode after this many actions (0 = play to the end)")
	runCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print every step")
	runCmd.Flags().StringVar(&flagCheckpoint, "checkpoint", "", "Save the last episode's final state under this name")
	runCmd.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not record episodes in the database")
}

// runnerOptions merges run flags over the runner config.
func (a *app) runnerOptions(cmd *cobra.Command) runner.Options {
	opts := runner.Options{
		EnvID:    a.cfg.Runner.Env,
		Episodes: a.cfg.Runner.Episodes,
		Workers:  a.cfg.Runner.Workers,
		MaxMoves: a.cfg.Runner.MaxMoves,
		Seed:     a.seed,
	}
	flags := cmd.Flags()
	if flags.Changed("env") {
		opts.EnvID = flagEnv
	}
	if flags.Changed("episodes") {
		opts.Episodes = flagEpisodes
	}
	if flags.Changed("workers") {
		opts.Workers = flagWorkers
	}
	if flags.Changed("max-moves") {
		opts.MaxMoves = flagMaxMoves
	}
	if flagVerbose {
		opts.Trace = cmd.OutOrStdout()
	}
	return opts
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *storage.Store
	if !flagNoRecord || flagCheckpoint != "" {
		store, err = a.openStore()
		if err != nil {
			if flagCheckpoint != "" {
				return fmt.Errorf("checkpoint needs the database: %w", err)
			}
			// Continue without storage - episodes are still printed
			a.logger.Warn("could not open database, episodes will not be recorded", "error", err)
		} else {
			defer store.Close()
		}
	}

	var recorder runner.Recorder
	if store != nil && !flagNoRecord {
		recorder = store
	}

	opts := a.runnerOptions(cmd)
	r, err := runner.New(opts, a.logger, recorder)
	if err != nil {
		return err
	}

	a.logger.Info("run started",
		"env", opts.EnvID,
		"episodes", opts.Episodes,
		"workers", opts.Workers,
		"seed", opts.Seed,
	)

	results, runErr := r.Run(ctx)
	printSummary(cmd.OutOrStdout(), results)

	if errors.Is(runErr, context.Canceled) {
		a.logger.Warn("run interrupted", "finished", len(results), "episodes", opts.Episodes)
		runErr = nil
	}
	if runErr != nil {
		return runErr
	}

	if flagCheckpoint != "" && len(results) > 0 {
		last := results[len(results)-1]
		// The signal context may be done already; the save should still happen.
		cp, err := store.SaveCheckpoint(context.WithoutCancel(ctx), flagCheckpoint, last.EnvID, last.State)
		if err != nil {
			return err
		}
		a.logger.Info("checkpoint saved",
			"name", cp.Name,
			"episode", last.Episode,
			"score", last.Score,
			"outcome", last.Outcome,
		)
	}
	return nil
}

func printSummary(out io.Writer, results []runner.Result) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No episodes finished.")
		return
	}

	var (
		wins      int
		best      = results[0]
		total     int
		bestTile  int
		totalStep int
	)
	for _, res := range results {
		if res.Outcome == engine.Won {
			wins++
		}
		if res.Score > best.Score {
			best = res
		}
		total += res.Score
		totalStep += res.Steps
		bestTile = max(bestTile, res.MaxTile)
	}

	fmt.Fprintln(out)
	if len(results) <= 20 {
		fmt.Fprintf(out, "  %-4s  %-20s  %-8s  %-6s  %-6s  %s\n", "Ep", "Seed", "Score", "Max", "Moves", "Result")
		fmt.Fprintf(out, "  %-4s  %-20s  %-8s  %-6s  %-6s  %s\n", "--", "----", "-----", "---", "-----", "------")
		for _, res := range results {
			fmt.Fprintf(out, "  %-4d  %-20d  %-8d  %-6d  %-6d  %s\n",
				res.Episode, res.Seed, res.Score, res.MaxTile, res.Moves, res.Outcome)
		}
		fmt.Fprintln(out)
	}

	n := len(results)
	fmt.Fprintf(out, "Episodes: %d  Wins: %d  Best score: %d (episode %d)  Avg score: %.1f  Best tile: %d  Avg steps: %.1f\n",
		n, wins, best.Score, best.Episode, float64(total)/float64(n), bestTile, float64(totalStep)/float64(n))
}
