package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/gym2048/internal/env"
	"github.com/vovakirdan/gym2048/internal/registry"
)

var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List registered environments",
	Long:  `Shows every environment ID that run, watch and play accept.`,
	Args:  cobra.NoArgs,
	RunE:  runEnvs,
}

func runEnvs(cmd *cobra.Command, args []string) error {
	envs := registry.List()
	out := cmd.OutOrStdout()

	if len(envs) == 0 {
		fmt.Fprintln(out, "No environments registered.")
		return nil
	}

	fmt.Fprintln(out, "Registered environments:")
	fmt.Fprintln(out)

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, e := range envs {
		if len(e.ID) > maxIDLen {
			maxIDLen = len(e.ID)
		}
	}

	fmt.Fprintf(out, "  %-*s  %s\n", maxIDLen, "ID", "Description")
	fmt.Fprintf(out, "  %-*s  %s\n", maxIDLen, "--", "-----------")
	for _, e := range envs {
		fmt.Fprintf(out, "  %-*s  %s\n", maxIDLen, e.ID, e.Description)
	}

	action, obs := env.ActionSpace(), env.ObservationSpace()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Action space:      Discrete(%d)  0=left 1=right 2=up 3=down\n", action.N)
	fmt.Fprintf(out, "Observation space: Box(%d, %d, (%d,))\n", obs.Low, obs.High, obs.Shape)
	return nil
}
