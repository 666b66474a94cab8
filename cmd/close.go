package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-pilot/cli"
)

func NewCloseCmd() *cobra.Command {
	var noSave bool

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close the active session",
		Long: `Close the active session: take a final checkpoint, terminate tracked
capability server processes, and mark the session closed. Closing when
no session is active is a no-op.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			lifecycle, err := buildLifecycle(cmd)
			if err != nil {
				return handler.Handle(err)
			}

			if err := lifecycle.Close(!noSave); err != nil {
				return handler.Handle(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noSave, "no-save", false, "Skip the final checkpoint")
	return cmd
}
