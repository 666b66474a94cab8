package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-pilot/cli"
)

func NewStartCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a new session",
		Long: `Start a new session for the current project.

Detects the project environment, registers the configured capability
servers, runs the startup hook, and persists the session under .pilot/.
Only one session can be active at a time; use --force to discard the
current session and start over.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			lifecycle, err := buildLifecycle(cmd)
			if err != nil {
				return handler.Handle(err)
			}

			sess, err := lifecycle.Start(force)
			if err != nil {
				return handler.Handle(err)
			}

			if opts.JSONOutput {
				data, err := json.MarshalIndent(sess, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Discard any active session and start a new one")
	return cmd
}
