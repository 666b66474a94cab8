// Package paths provides XDG-compliant path resolution for Pilot.
//
// Resolution order:
// 1. PILOT_HOME (portable root) -> $PILOT_HOME/{config,data,state,cache}
// 2. XDG env vars -> $XDG_*_HOME/pilot
// 3. Platform defaults -> ~/.config/pilot, ~/.local/share/pilot, etc.
package paths

import (
	"os"
	"path/filepath"
)

func getConfigHome() string {
	if pilotHome := os.Getenv("PILOT_HOME"); pilotHome != "" {
		return filepath.Join(pilotHome, "config")
	}
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return xdgConfigHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config")
	}
	return ""
}

func getDataHome() string {
	if pilotHome := os.Getenv("PILOT_HOME"); pilotHome != "" {
		return filepath.Join(pilotHome, "data")
	}
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return xdgDataHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "share")
	}
	return ""
}

func getStateHome() string {
	if pilotHome := os.Getenv("PILOT_HOME"); pilotHome != "" {
		return filepath.Join(pilotHome, "state")
	}
	if xdgStateHome := os.Getenv("XDG_STATE_HOME"); xdgStateHome != "" {
		return xdgStateHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".local", "state")
	}
	return ""
}

func getCacheHome() string {
	if pilotHome := os.Getenv("PILOT_HOME"); pilotHome != "" {
		return filepath.Join(pilotHome, "cache")
	}
	if xdgCacheHome := os.Getenv("XDG_CACHE_HOME"); xdgCacheHome != "" {
		return xdgCacheHome
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".cache")
	}
	return ""
}

// ConfigDir returns the Pilot configuration directory.
// Used for the global pilot.yml.
func ConfigDir() string {
	base := getConfigHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "pilot")
}

// DataDir returns the Pilot data directory.
// Used for hooks and installed capability-server assets.
func DataDir() string {
	base := getDataHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "pilot")
}

// StateDir returns the Pilot state directory.
// Used for runtime state and logs.
func StateDir() string {
	base := getStateHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "pilot")
}

// CacheDir returns the Pilot cache directory.
func CacheDir() string {
	base := getCacheHome()
	if base == "" {
		return ""
	}
	return filepath.Join(base, "pilot")
}

// EnsureDirs creates all Pilot directories if they don't exist.
func EnsureDirs() error {
	dirs := []string{
		ConfigDir(),
		DataDir(),
		StateDir(),
		CacheDir(),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
