package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-pilot/cli"
)

func NewCheckpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint [message...]",
		Short: "Capture a checkpoint of the active session",
		Long: `Capture an immutable snapshot of the active session and the current
system state (working directory, environment, tracked processes, git
status) and append it to the session's checkpoint history.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			lifecycle, err := buildLifecycle(cmd)
			if err != nil {
				return handler.Handle(err)
			}

			cp, err := lifecycle.Checkpoint(strings.Join(args, " "))
			if err != nil {
				return handler.Handle(err)
			}

			if opts.JSONOutput {
				data, err := json.MarshalIndent(cp, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			return nil
		},
	}
	return cmd
}
