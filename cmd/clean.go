package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-pilot/cli"
)

func NewCleanCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Archive all session history",
		Long: `Move all persisted sessions and checkpoints into a timestamped backup
directory under .pilot/backup/. History is user data, so --force is
required.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			lifecycle, err := buildLifecycle(cmd)
			if err != nil {
				return handler.Handle(err)
			}

			if err := lifecycle.CleanHistory(force); err != nil {
				return handler.Handle(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Confirm archiving the session history")
	return cmd
}
