package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Priority tiers for capability servers. Primary servers are reported first
// and are expected to be essential to the session; fallback servers are
// best-effort extras.
const (
	PriorityPrimary   = "primary"
	PrioritySecondary = "secondary"
	PriorityFallback  = "fallback"
)

// Config is the root of a pilot.yml (or pilot.toml) document.
type Config struct {
	Version string        `yaml:"version" toml:"version" jsonschema:"description=Config file format version"`
	Project ProjectConfig `yaml:"project" toml:"project"`
	Hook    HookConfig    `yaml:"hook" toml:"hook"`
	Servers []ServerConfig `yaml:"servers" toml:"servers"`
	Agents  []AgentConfig  `yaml:"agents" toml:"agents"`

	// Extensions holds config sections owned by other tools in the ecosystem
	// (e.g. "logging"). They are captured as raw maps and decoded on demand
	// via UnmarshalExtension.
	Extensions map[string]interface{} `yaml:"-" toml:"-"`
}

// ProjectConfig describes the project the session operates on.
type ProjectConfig struct {
	Name string `yaml:"name" toml:"name" jsonschema:"description=Human-readable project name"`
	Root string `yaml:"root,omitempty" toml:"root,omitempty" jsonschema:"description=Project root directory (defaults to the config file location)"`
}

// HookConfig configures the session startup hook.
type HookConfig struct {
	// Path to the hook executable, relative to the capability directory
	// unless absolute. Empty means the default hooks/session-start.
	Path string `yaml:"path,omitempty" toml:"path,omitempty"`

	// TimeoutSeconds bounds hook execution. Zero means the 30s default.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty" toml:"timeout_seconds,omitempty"`
}

// ServerConfig describes one MCP capability server.
type ServerConfig struct {
	Name     string            `yaml:"name" toml:"name" jsonschema:"description=Unique server name"`
	Enabled  bool              `yaml:"enabled" toml:"enabled"`
	Priority string            `yaml:"priority,omitempty" toml:"priority,omitempty" jsonschema:"description=Priority tier: primary/secondary/fallback"`
	Command  string            `yaml:"command,omitempty" toml:"command,omitempty" jsonschema:"description=Launch command for the server process"`
	Args     []string          `yaml:"args,omitempty" toml:"args,omitempty"`
	Env      map[string]string `yaml:"env,omitempty" toml:"env,omitempty"`
}

// AgentConfig describes one specialized assistant agent.
type AgentConfig struct {
	Name         string   `yaml:"name" toml:"name" json:"name"`
	Capabilities []string `yaml:"capabilities,omitempty" toml:"capabilities,omitempty" json:"capabilities,omitempty"`
	Priority     int      `yaml:"priority,omitempty" toml:"priority,omitempty" json:"priority,omitempty"`
	Enabled      bool     `yaml:"enabled" toml:"enabled" json:"enabled"`
}

// Tier returns the server's priority tier, defaulting to primary.
func (s ServerConfig) Tier() string {
	switch s.Priority {
	case PrioritySecondary, PriorityFallback:
		return s.Priority
	default:
		return PriorityPrimary
	}
}

// EnabledServers returns the servers with the enabled flag set.
func (c *Config) EnabledServers() []ServerConfig {
	var out []ServerConfig
	for _, s := range c.Servers {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}

// EnabledAgents returns the agents with the enabled flag set.
func (c *Config) EnabledAgents() []AgentConfig {
	var out []AgentConfig
	for _, a := range c.Agents {
		if a.Enabled {
			out = append(out, a)
		}
	}
	return out
}

// UnmarshalExtension decodes a specific extension's configuration from the
// Extensions map into the given target struct.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	if c.Extensions == nil {
		return nil
	}

	raw, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	// Use mapstructure to decode the generic map into the typed target,
	// honoring the same yaml tags the rest of the config uses.
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "yaml",
		Result:  target,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("failed to decode extension %q: %w", key, err)
	}

	return nil
}
