package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-pilot/pkg/paths"
)

// PathsOutput represents the XDG-compliant paths used by pilot.
type PathsOutput struct {
	ConfigDir string `json:"config_dir"`
	DataDir   string `json:"data_dir"`
	StateDir  string `json:"state_dir"`
	CacheDir  string `json:"cache_dir"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the XDG-compliant paths used by pilot",
		Long: `Print the XDG-compliant paths used by pilot, in JSON for easy
consumption from scripts.

Per-project session state lives under .pilot/ at the project root; these
paths hold user-level configuration and caches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir: paths.ConfigDir(),
				DataDir:   paths.DataDir(),
				StateDir:  paths.StateDir(),
				CacheDir:  paths.CacheDir(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}

	return cmd
}
