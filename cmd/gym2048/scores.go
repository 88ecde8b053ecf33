package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/gym2048/internal/platform/tui"
	"github.com/vovakirdan/gym2048/internal/registry"
	"github.com/vovakirdan/gym2048/internal/storage"
)

var (
	flagScoresEnv   string
	flagScoresLimit int
	flagScoresTUI   bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show recorded episodes",
	Long: `Display the best recorded episodes of an environment together with
aggregate statistics.

Examples:
  gym2048 scores
  gym2048 scores --env 2048-acc-v0 --limit 25
  gym2048 scores --tui
  gym2048 scores --clear`,
	Args: cobra.NoArgs,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().StringVar(&flagScoresEnv, "env", "", "Environment ID (default from config)")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Episodes to show")
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Browse episodes in an interactive scoreboard")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all recorded episodes of the environment")
}

func runScores(cmd *cobra.Command, args []string) error {
	return withStore(cmd, func(a *app, store *storage.Store) error {
		envID := a.cfg.Runner.Env
		if cmd.Flags().Changed("env") {
			envID = flagScoresEnv
		}
		if !registry.Exists(envID) {
			return fmt.Errorf("unknown environment %q, run 'gym2048 envs' to see available ones", envID)
		}

		if flagScoresClear {
			if err := store.ClearEpisodes(cmd.Context(), envID); err != nil {
				return err
			}
			a.logger.Info("episodes cleared", "env", envID)
			return nil
		}

		if flagScoresTUI {
			if err := requireTerminal(); err != nil {
				return err
			}
			width, height := 80, 24 // Defaults
			if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
				width = w
				height = h
			}
			return tui.RunScoreboard(store, envID, width, height)
		}

		return printScores(cmd, store, envID)
	})
}

func printScores(cmd *cobra.Command, store *storage.Store, envID string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	episodes, err := store.TopEpisodes(ctx, envID, flagScoresLimit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Best episodes - %s\n", envID)
	fmt.Fprintln(out)

	if len(episodes) == 0 {
		fmt.Fprintln(out, "No episodes recorded yet.")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Run 'gym2048 run --env %s' to record some!\n", envID)
		return nil
	}

	fmt.Fprintf(out, "  %-4s  %-8s  %-6s  %-6s  %-7s  %-20s  %s\n", "Rank", "Score", "Max", "Moves", "Result", "Seed", "Date")
	fmt.Fprintf(out, "  %-4s  %-8s  %-6s  %-6s  %-7s  %-20s  %s\n", "----", "-----", "---", "-----", "------", "----", "----")
	for i, e := range episodes {
		fmt.Fprintf(out, "  %-4d  %-8d  %-6d  %-6d  %-7s  %-20d  %s\n",
			i+1, e.Score, e.MaxTile, e.Moves, e.Outcome, e.Seed, e.CreatedAt.Format("2006-01-02 15:04"))
	}

	st, err := store.EpisodeStats(ctx, envID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Episodes: %d  Wins: %d  Best score: %d  Avg score: %.1f  Best tile: %d\n",
		st.Episodes, st.Wins, st.BestScore, st.AvgScore, st.BestTile)
	return nil
}
