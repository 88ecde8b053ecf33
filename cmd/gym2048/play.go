package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gym2048/internal/engine"
	"github.com/vovakirdan/gym2048/internal/platform/tui"
)

var (
	flagPlayEnv    string
	flagPlaySave   string
	flagPlayResume string
	flagPlayAuto   bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play 2048 with the keyboard",
	Long: `Starts a game you control with the keyboard.

Controls:
  Arrows/WASD/HJKL - Move
  Space/P          - Toggle random autoplay
  R                - New game
  Q/Esc            - Quit

Examples:
  gym2048 play
  gym2048 play --save lunch
  gym2048 play --resume lunch`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagPlayEnv, "env", "", "Environment ID (default from config)")
	playCmd.Flags().StringVar(&flagPlaySave, "save", "", "Save the game as a checkpoint when quitting")
	playCmd.Flags().StringVar(&flagPlayResume, "resume", "", "Continue from a saved checkpoint")
	playCmd.Flags().BoolVar(&flagPlayAuto, "autoplay", false, "Start with autoplay on (default from config)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	if err := requireTerminal(); err != nil {
		return err
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store, err := a.openStore()
	if err != nil {
		if flagPlaySave != "" || flagPlayResume != "" {
			return fmt.Errorf("checkpoints need the database: %w", err)
		}
		// Continue without storage - game still works
		a.logger.Warn("could not open database, games will not be recorded", "error", err)
	} else {
		defer store.Close()
	}

	e, err := a.newEnv(cmd, flagPlayEnv)
	if err != nil {
		return err
	}
	if flagPlayResume != "" {
		cp, err := store.LoadCheckpoint(ctx, flagPlayResume)
		if err != nil {
			return err
		}
		if e, err = restoreCheckpoint(a, cp); err != nil {
			return err
		}
	}

	autoplay := a.cfg.Watch.Autoplay
	if cmd.Flags().Changed("autoplay") {
		autoplay = flagPlayAuto
	}

	var recorder tui.Recorder
	if store != nil {
		recorder = store
	}
	final, err := tui.Run(e, recorder, tui.Options{
		Autoplay: autoplay,
		Delay:    a.cfg.Watch.Delay(),
		Seed:     a.seed,
	})
	if err != nil {
		return err
	}
	logFinal(a, final)

	if flagPlaySave == "" {
		return nil
	}
	if final.Outcome() != engine.Playing {
		a.logger.Warn("game is over, checkpoint saved anyway", "name", flagPlaySave)
	}
	if _, err := store.SaveCheckpoint(context.WithoutCancel(ctx), flagPlaySave, final.ID(), final.GetState()); err != nil {
		return err
	}
	a.logger.Info("checkpoint saved", "name", flagPlaySave, "score", final.Score())
	return nil
}
