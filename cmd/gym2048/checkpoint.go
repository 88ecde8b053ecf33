package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gym2048/internal/env"
	"github.com/vovakirdan/gym2048/internal/platform/tui"
	"github.com/vovakirdan/gym2048/internal/registry"
	"github.com/vovakirdan/gym2048/internal/runner"
	"github.com/vovakirdan/gym2048/internal/storage"
)

var (
	flagResumeVerbose  bool
	flagResumeMaxMoves int
	flagResumeWatch    bool
	flagResumeSave     bool
)

var checkpointCmd = &cobra.Command{
	Use:     "checkpoint",
	Aliases: []string{"cp"},
	Short:   "Manage saved environment states",
	Long: `Checkpoints are named environment states: the board, score, move
count, random source and running reward. Resuming a checkpoint replays the
exact same tile spawns for the same actions.`,
}

var checkpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "List checkpoints",
	Args:  cobra.NoArgs,
	RunE:  runCheckpointList,
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a checkpoint's board",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointShow,
}

var checkpointDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckpointDelete,
}

var checkpointResumeCmd = &cobra.Command{
	Use:   "resume <name>",
	Short: "Continue a checkpoint with random actions",
	Long: `Restores the checkpoint and plays random actions from it until the
game ends or --max-moves actions were taken. With --watch the game is shown
in the terminal instead. With --save the checkpoint is overwritten by the
state the game ended in.

Examples:
  gym2048 checkpoint resume opening --verbose
  gym2048 checkpoint resume opening --max-moves 50 --save
  gym2048 checkpoint resume opening --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runCheckpointResume,
}

func init() {
	checkpointResumeCmd.Flags().BoolVarP(&flagResumeVerbose, "verbose", "v", false, "Print every step")
	checkpointResumeCmd.Flags().IntVar(&flagResumeMaxMoves, "max-moves", 0, "Stop after this many actions (0 = play to the end)")
	checkpointResumeCmd.Flags().BoolVar(&flagResumeWatch, "watch", false, "Watch the resumed game in the terminal")
	checkpointResumeCmd.Flags().BoolVar(&flagResumeSave, "save", false, "Overwrite the checkpoint with the final state")

	checkpointCmd.AddCommand(checkpointListCmd)
	checkpointCmd.AddCommand(checkpointShowCmd)
	checkpointCmd.AddCommand(checkpointDeleteCmd)
	checkpointCmd.AddCommand(checkpointResumeCmd)
}

// withStore runs fn with an open store. Checkpoint commands cannot work
// without one.
func withStore(cmd *cobra.Command, fn func(a *app, store *storage.Store) error) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(a, store)
}

// restoreCheckpoint creates the checkpoint's environment and loads its state.
func restoreCheckpoint(a *app, cp storage.Checkpoint) (env.Environment, error) {
	e, err := registry.Create(cp.EnvID, a.seed)
	if err != nil {
		return nil, err
	}
	if _, err := e.SetState(cp.State); err != nil {
		return nil, fmt.Errorf("checkpoint %q: %w", cp.Name, err)
	}
	a.logger.Debug("checkpoint restored", "name", cp.Name, "env", cp.EnvID, "score", e.Score())
	return e, nil
}

func runCheckpointList(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(a *app, store *storage.Store) error {
		infos, err := store.ListCheckpoints(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintln(out, "No checkpoints saved.")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Run 'gym2048 run --max-moves 50 --checkpoint <name>' to save one.")
			return nil
		}

		fmt.Fprintf(out, "  %-20s  %-12s  %-8s  %s\n", "Name", "Env", "Score", "Saved")
		fmt.Fprintf(out, "  %-20s  %-12s  %-8s  %s\n", "----", "---", "-----", "-----")
		for _, info := range infos {
			fmt.Fprintf(out, "  %-20s  %-12s  %-8d  %s\n",
				info.Name, info.EnvID, info.Score, info.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	})
}

func runCheckpointShow(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(a *app, store *storage.Store) error {
		cp, err := store.LoadCheckpoint(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		e, err := restoreCheckpoint(a, cp)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		snap := cp.State.Snapshot
		fmt.Fprintf(out, "Checkpoint %s (%s)\n", cp.Name, cp.EnvID)
		fmt.Fprintf(out, "Saved:          %s\n", cp.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Seed:           %d\n", snap.Seed)
		fmt.Fprintf(out, "Score:          %d\n", snap.Score)
		fmt.Fprintf(out, "Moves:          %d\n", snap.Moves)
		fmt.Fprintf(out, "Running reward: %g\n", cp.State.RunningReward)
		fmt.Fprintf(out, "Outcome:        %s\n", e.Outcome())
		fmt.Fprintln(out)
		fmt.Fprintln(out, snap.Board)
		return nil
	})
}

func runCheckpointDelete(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(a *app, store *storage.Store) error {
		if err := store.DeleteCheckpoint(cmd.Context(), args[0]); err != nil {
			return err
		}
		a.logger.Info("checkpoint deleted", "name", args[0])
		return nil
	})
}

func runCheckpointResume(cmd *cobra.Command, args []string) error {
	if flagResumeWatch {
		if err := requireTerminal(); err != nil {
			return err
		}
	}
	return withStore(cmd, func(a *app, store *storage.Store) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cp, err := store.LoadCheckpoint(ctx, args[0])
		if err != nil {
			return err
		}
		e, err := restoreCheckpoint(a, cp)
		if err != nil {
			return err
		}

		var final env.Environment
		if flagResumeWatch {
			final, err = tui.Run(e, store, tui.Options{Autoplay: true, Delay: a.cfg.Watch.Delay(), Seed: a.seed})
			if err != nil {
				return err
			}
			logFinal(a, final)
		} else {
			final, err = resumeRandom(ctx, cmd, a, store, e)
			if err != nil {
				return err
			}
		}

		if flagResumeSave {
			if _, err := store.SaveCheckpoint(context.WithoutCancel(ctx), cp.Name, final.ID(), final.GetState()); err != nil {
				return err
			}
			a.logger.Info("checkpoint updated", "name", cp.Name, "score", final.Score())
		}
		return nil
	})
}

// resumeRandom plays random actions from e and records the episode.
func resumeRandom(ctx context.Context, cmd *cobra.Command, a *app, store *storage.Store, e env.Environment) (env.Environment, error) {
	opts := runner.Options{
		EnvID:    e.ID(),
		Episodes: 1,
		MaxMoves: flagResumeMaxMoves,
		Seed:     a.seed,
	}
	if flagResumeVerbose {
		opts.Trace = cmd.OutOrStdout()
	}
	r, err := runner.New(opts, a.logger, nil)
	if err != nil {
		return nil, err
	}

	res, err := r.Play(ctx, e, env.NewSampler(a.seed), 0)
	if errors.Is(err, context.Canceled) {
		a.logger.Warn("resume interrupted", "steps", res.Steps)
		return e, nil
	}
	if err != nil {
		return nil, err
	}
	res.Seed = e.GetState().Snapshot.Seed

	if _, err := store.SaveEpisode(ctx, runner.ToEpisode(res)); err != nil {
		a.logger.Warn("could not record episode", "error", err)
	}
	printSummary(cmd.OutOrStdout(), []runner.Result{res})
	return e, nil
}
