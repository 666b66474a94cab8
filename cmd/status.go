package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-pilot/cli"
)

func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.GetOptions(cmd)
			handler := cli.NewErrorHandler(opts.Verbose)

			lifecycle, err := buildLifecycle(cmd)
			if err != nil {
				return handler.Handle(err)
			}

			status := lifecycle.Status()

			if opts.JSONOutput {
				data, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			out := cmd.OutOrStdout()
			if !status.Active {
				fmt.Fprintln(out, "No active session.")
				return nil
			}

			sess := status.Session
			fmt.Fprintf(out, "Session:     %s\n", sess.Name)
			fmt.Fprintf(out, "  ID:          %s\n", sess.ID)
			fmt.Fprintf(out, "  Started:     %s\n", sess.StartTime.Format(time.RFC3339))
			fmt.Fprintf(out, "  Duration:    %s\n", status.Duration)
			fmt.Fprintf(out, "  Checkpoints: %d\n", status.CheckpointCount)

			connected := 0
			for _, sv := range sess.MCPServers {
				if sv.Connected {
					connected++
				}
			}
			fmt.Fprintf(out, "  Servers:     %d/%d connected\n", connected, len(sess.MCPServers))
			fmt.Fprintf(out, "  Agents:      %d\n", len(sess.Agents))
			return nil
		},
	}
	return cmd
}
