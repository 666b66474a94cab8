package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-pilot/errors"
)

// Config file names searched for, in order of preference.
var configFileNames = []string{"pilot.yml", "pilot.yaml", "pilot.toml"}

// knownKeys are the top-level sections owned by this package. Anything else
// in the document is captured as an extension.
var knownKeys = map[string]bool{
	"version": true,
	"project": true,
	"hook":    true,
	"servers": true,
	"agents":  true,
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads and parses a Pilot configuration file. The format is chosen
// from the file extension (.toml vs .yml/.yaml).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	if strings.HasSuffix(path, ".toml") {
		return LoadFromTOMLBytes(data)
	}
	return LoadFromBytes(data)
}

// LoadDefault finds and loads the configuration starting from the current
// working directory, falling back to built-in defaults when no config file
// exists. A missing file is not an error: a session can start in a project
// that has never been configured.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}
	return LoadFrom(cwd)
}

// LoadFrom loads configuration starting from the given directory, walking up
// toward the filesystem root.
func LoadFrom(startDir string) (*Config, error) {
	path, err := FindConfigFile(startDir)
	if err != nil {
		cfg := DefaultConfig()
		cfg.Project.Root = startDir
		return cfg, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Project.Root == "" {
		cfg.Project.Root = filepath.Dir(path)
	}
	return cfg, nil
}

// FindConfigFile searches for a config file in dir and its ancestors.
func FindConfigFile(dir string) (string, error) {
	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.ConfigNotFound(filepath.Join(dir, configFileNames[0]))
		}
		dir = parent
	}
}

// DefaultConfig returns the configuration used when no pilot.yml exists.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
	}
}

// LoadFromBytes parses a YAML configuration document.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML config")
	}

	return fromRaw(raw)
}

// LoadFromTOMLBytes parses a TOML configuration document.
func LoadFromTOMLBytes(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var raw map[string]interface{}
	if err := toml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML config")
	}

	return fromRaw(raw)
}

// fromRaw decodes the generic document map into a Config, splitting out
// unknown top-level keys as extensions.
func fromRaw(raw map[string]interface{}) (*Config, error) {
	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "yaml",
		Result:  &cfg,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create config decoder")
	}

	known := make(map[string]interface{}, len(raw))
	extensions := make(map[string]interface{})
	for key, value := range raw {
		if knownKeys[key] {
			known[key] = value
		} else {
			extensions[key] = value
		}
	}

	if err := decoder.Decode(known); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode config")
	}

	if len(extensions) > 0 {
		cfg.Extensions = extensions
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate applies the structural rules the lifecycle depends on.
func validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Servers))
	for _, s := range cfg.Servers {
		if s.Name == "" {
			return errors.ConfigInvalid("server entries must have a name")
		}
		if seen[s.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("duplicate server name: %s", s.Name))
		}
		seen[s.Name] = true

		switch s.Priority {
		case "", PriorityPrimary, PrioritySecondary, PriorityFallback:
		default:
			return errors.ConfigInvalid(fmt.Sprintf("server %s has unknown priority tier: %s", s.Name, s.Priority))
		}
	}

	for _, a := range cfg.Agents {
		if a.Name == "" {
			return errors.ConfigInvalid("agent entries must have a name")
		}
	}

	return nil
}

// expandEnvVars substitutes ${VAR} references with environment values.
// Unset variables expand to the empty string.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		name := envVarRegex.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
