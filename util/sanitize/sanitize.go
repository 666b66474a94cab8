package sanitize

import (
	"regexp"
	"strings"
)

var (
	multiDashRegex       = regexp.MustCompile(`-+`)
	multiUnderscoreRegex = regexp.MustCompile(`_+`)
	nonKebabRegex        = regexp.MustCompile(`[^a-z0-9-]+`)
	nonEnvKeyRegex       = regexp.MustCompile(`[^A-Z0-9_]+`)
)

// ForFilename sanitizes a string for use in a filename (kebab-case).
func ForFilename(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonKebabRegex.ReplaceAllString(s, "")
	s = multiDashRegex.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 { // Truncate long names
		s = s[:50]
	}
	return s
}

// ForEnvironmentKey sanitizes a string for use as an environment variable key.
// Environment keys must contain only uppercase letters, numbers, and underscores.
func ForEnvironmentKey(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToUpper(s)
	s = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(s)
	s = nonEnvKeyRegex.ReplaceAllString(s, "_")
	s = multiUnderscoreRegex.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	// Ensure it starts with a letter
	if len(s) > 0 && (s[0] < 'A' || s[0] > 'Z') {
		s = "ENV_" + s
	}

	return s
}
