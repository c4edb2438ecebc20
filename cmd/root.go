// Package cmd holds the vinom-evolve command line.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vinom-evolve",
	Short: "Evolve agents that learn to walk out of a maze",
	Long: `vinom-evolve carves a random maze and evolves a population of agents whose
genomes are sequences of impulses. Each generation breeds from the agents that
got closest to the exit.`,
	SilenceUsage: true,
}

// Execute runs the command selected on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
