package main

import (
	"os"

	"github.com/mattsolo1/grove-pilot/cli"
	"github.com/mattsolo1/grove-pilot/cmd"
	"github.com/mattsolo1/grove-pilot/version"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"pilot",
		"Session orchestrator for AI-assisted coding",
	)
	rootCmd.Version = version.Version

	// Add subcommands
	rootCmd.AddCommand(cmd.NewStartCmd())
	rootCmd.AddCommand(cmd.NewCheckpointCmd())
	rootCmd.AddCommand(cmd.NewCloseCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewCleanCmd())
	rootCmd.AddCommand(cmd.NewSchemaCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cmd.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
