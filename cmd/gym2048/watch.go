package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gym2048/internal/env"
	"github.com/vovakirdan/gym2048/internal/platform/tui"
	"github.com/vovakirdan/gym2048/internal/registry"
	"github.com/vovakirdan/gym2048/internal/storage"
)

var (
	flagWatchEnv   string
	flagWatchDelay time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch random play in the terminal",
	Long: `Renders an environment and plays a uniformly random action every
--delay. Finished games are recorded in the database.

Controls:
  Space/P    - Pause or resume autoplay
  Arrows/WASD - Move by hand
  R          - New game
  Q/Esc      - Quit

Examples:
  gym2048 watch
  gym2048 watch --delay 100ms --seed 7`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&flagWatchEnv, "env", "", "Environment ID (default from config)")
	watchCmd.Flags().DurationVar(&flagWatchDelay, "delay", 0, "Delay between random moves (default from config)")
}

var errNotTerminal = errors.New("this command needs an interactive terminal")

func requireTerminal() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errNotTerminal
	}
	return nil
}

// newEnv creates and resets the environment selected by flag or config.
func (a *app) newEnv(cmd *cobra.Command, flag string) (env.Environment, error) {
	id := a.cfg.Runner.Env
	if cmd.Flags().Changed("env") {
		id = flag
	}
	e, err := registry.Create(id, a.seed)
	if err != nil {
		return nil, err
	}
	e.Reset()
	return e, nil
}

// tuiRecorder opens the store for a TUI session. A failure is logged and
// the session runs without recording.
func (a *app) tuiRecorder() (tui.Recorder, func()) {
	store, err := a.openStore()
	if err != nil {
		a.logger.Warn("could not open database, games will not be recorded", "error", err)
		return nil, func() {}
	}
	return store, func() { store.Close() }
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	e, err := a.newEnv(cmd, flagWatchEnv)
	if err != nil {
		return err
	}

	delay := a.cfg.Watch.Delay()
	if cmd.Flags().Changed("delay") {
		delay = flagWatchDelay
	}

	recorder, closeStore := a.tuiRecorder()
	defer closeStore()

	final, err := tui.Run(e, recorder, tui.Options{Autoplay: true, Delay: delay, Seed: a.seed})
	if err != nil {
		return err
	}
	logFinal(a, final)
	return nil
}

// logFinal reports where the session ended, after the TUI has released the
// terminal.
func logFinal(a *app, e env.Environment) {
	st := e.GetState()
	a.logger.Info("session ended",
		"env", e.ID(),
		"score", e.Score(),
		"max_tile", e.Board().MaxTile(),
		"moves", st.Snapshot.Moves,
		"outcome", e.Outcome(),
	)
}

var _ tui.Recorder = (*storage.Store)(nil)
