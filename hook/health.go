package hook

// Tier summarizes the outcome of environment detection and collaborator checks.
type Tier string

const (
	TierHealthy Tier = "healthy"
	TierWarning Tier = "warning"
	TierError   Tier = "error"
)

// CategoryResult is one per-category check line in a health report.
type CategoryResult struct {
	Name   string `json:"name"`
	Status Tier   `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Report is the tiered health summary produced by the startup hook. It is
// consumed for display only; no lifecycle decision depends on it.
type Report struct {
	Overall    Tier             `json:"overall"`
	Categories []CategoryResult `json:"categories,omitempty"`

	// Output holds the hook's stdout, treated as opaque log lines.
	Output []string `json:"output,omitempty"`
}

// Degraded builds the report used when the hook is absent, fails, or times
// out. Session start continues with this result rather than aborting.
func Degraded(reason string) Report {
	return Report{
		Overall: TierWarning,
		Categories: []CategoryResult{
			{Name: "startup-hook", Status: TierWarning, Detail: reason},
		},
	}
}
