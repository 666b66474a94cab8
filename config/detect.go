package config

import (
	"os"
	"path/filepath"
	"sort"
)

// LanguageInfo is one detected language with a confidence score in [0, 1].
type LanguageInfo struct {
	Name       string  `json:"name" yaml:"name"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// EnvironmentInfo is the snapshot of the detected project environment taken
// once at session start.
type EnvironmentInfo struct {
	RootPath   string         `json:"root_path"`
	Name       string         `json:"name"`
	Languages  []LanguageInfo `json:"languages,omitempty"`
	Frameworks []string       `json:"frameworks,omitempty"`
	Tools      []string       `json:"tools,omitempty"`
	HasGit     bool           `json:"has_git"`
	HasMCP     bool           `json:"has_mcp"`
	HasAgents  bool           `json:"has_agents"`
}

// languageMarkers maps a marker file to the language it indicates and the
// confidence that marker carries. Lock files and toolchain manifests score
// higher than loose convention files.
var languageMarkers = []struct {
	file       string
	language   string
	confidence float64
}{
	{"go.mod", "Go", 0.95},
	{"go.sum", "Go", 0.6},
	{"package.json", "JavaScript", 0.8},
	{"tsconfig.json", "TypeScript", 0.9},
	{"pyproject.toml", "Python", 0.9},
	{"requirements.txt", "Python", 0.7},
	{"setup.py", "Python", 0.6},
	{"Cargo.toml", "Rust", 0.95},
	{"pom.xml", "Java", 0.9},
	{"build.gradle", "Java", 0.8},
	{"Gemfile", "Ruby", 0.9},
	{"composer.json", "PHP", 0.9},
}

var frameworkMarkers = map[string]string{
	"next.config.js":    "Next.js",
	"next.config.mjs":   "Next.js",
	"vite.config.js":    "Vite",
	"vite.config.ts":    "Vite",
	"angular.json":      "Angular",
	"svelte.config.js":  "Svelte",
	"webpack.config.js": "Webpack",
	"manage.py":         "Django",
}

var toolMarkers = map[string]string{
	"Dockerfile":          "docker",
	"docker-compose.yml":  "docker-compose",
	"Makefile":            "make",
	".pre-commit-config.yaml": "pre-commit",
	".golangci.yml":       "golangci-lint",
}

// DetectEnvironment inspects the project root and returns a best-effort
// environment snapshot. It never fails: an unreadable root simply yields an
// empty snapshot.
func DetectEnvironment(root string, cfg *Config) EnvironmentInfo {
	env := EnvironmentInfo{
		RootPath: root,
		Name:     projectName(root, cfg),
	}

	if cfg != nil {
		env.HasMCP = len(cfg.EnabledServers()) > 0
		env.HasAgents = len(cfg.EnabledAgents()) > 0
	}

	if info, err := os.Stat(filepath.Join(root, ".git")); err == nil && info.IsDir() {
		env.HasGit = true
	}

	byLanguage := make(map[string]float64)
	for _, marker := range languageMarkers {
		if _, err := os.Stat(filepath.Join(root, marker.file)); err != nil {
			continue
		}
		if marker.confidence > byLanguage[marker.language] {
			byLanguage[marker.language] = marker.confidence
		}
	}
	for name, confidence := range byLanguage {
		env.Languages = append(env.Languages, LanguageInfo{Name: name, Confidence: confidence})
	}
	// Highest confidence first; name as tiebreak for stable output.
	sort.Slice(env.Languages, func(i, j int) bool {
		if env.Languages[i].Confidence != env.Languages[j].Confidence {
			return env.Languages[i].Confidence > env.Languages[j].Confidence
		}
		return env.Languages[i].Name < env.Languages[j].Name
	})

	for file, framework := range frameworkMarkers {
		if _, err := os.Stat(filepath.Join(root, file)); err == nil {
			env.Frameworks = append(env.Frameworks, framework)
		}
	}
	sort.Strings(env.Frameworks)

	for file, tool := range toolMarkers {
		if _, err := os.Stat(filepath.Join(root, file)); err == nil {
			env.Tools = append(env.Tools, tool)
		}
	}
	sort.Strings(env.Tools)

	return env
}

// projectName picks the configured name, falling back to the root directory.
func projectName(root string, cfg *Config) string {
	if cfg != nil && cfg.Project.Name != "" {
		return cfg.Project.Name
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}
