package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-pilot/cli"
	"github.com/mattsolo1/grove-pilot/config"
	"github.com/mattsolo1/grove-pilot/hook"
	"github.com/mattsolo1/grove-pilot/session"
	"github.com/mattsolo1/grove-pilot/util/pathutil"
)

// pilotDirName is the per-project state directory at the project root.
const pilotDirName = ".pilot"

// loadConfig resolves and loads the configuration for a command, honoring
// the --config flag and falling back to the walk-up search plus defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	opts := cli.GetOptions(cmd)

	if opts.ConfigFile != "" {
		cfg, err := config.Load(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		if cfg.Project.Root == "" {
			cfg.Project.Root = filepath.Dir(opts.ConfigFile)
		}
		return cfg, nil
	}

	return config.LoadDefault()
}

// buildLifecycle wires a session lifecycle for the project the command runs
// in: config, environment detection, store, capture, process table, and the
// startup hook runner.
func buildLifecycle(cmd *cobra.Command) (*session.Lifecycle, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	root := cfg.Project.Root
	if root == "" {
		root, err = os.Getwd()
		if err != nil {
			return nil, err
		}
	} else {
		// Roots may be configured as ~/... or contain env vars.
		root, err = pathutil.Expand(root)
		if err != nil {
			return nil, err
		}
	}

	env := config.DetectEnvironment(root, cfg)
	base := filepath.Join(root, pilotDirName)

	store := session.NewStore(base)
	procs := session.NewProcessTable()
	capture := session.NewCapture(root, env.HasGit, procs)

	runner := hook.NewRunner(hookPath(cfg, base), hookOptions(cfg)...)

	return session.NewLifecycle(cfg, env, store, capture, procs,
		session.WithOutput(cmd.OutOrStdout()),
		session.WithHookRunner(runner),
	), nil
}

// hookPath resolves the startup hook executable: the configured path
// (relative paths resolve against the pilot directory), or the default
// hooks/session-start location.
func hookPath(cfg *config.Config, base string) string {
	path := cfg.Hook.Path
	if path == "" {
		return filepath.Join(base, "hooks", "session-start")
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(base, path)
	}
	return path
}

func hookOptions(cfg *config.Config) []hook.RunnerOption {
	var opts []hook.RunnerOption
	if cfg.Hook.TimeoutSeconds > 0 {
		opts = append(opts, hook.WithTimeout(time.Duration(cfg.Hook.TimeoutSeconds)*time.Second))
	}
	return opts
}
