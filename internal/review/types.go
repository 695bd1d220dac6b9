// Package review mines structured findings out of free-text LLM reviewer
// output and renders them as JSON, Markdown, or ANSI terminal text.
//
// Parsing is deliberately precision-over-recall: a candidate block is only
// kept as an issue when it carries an explicit severity signal (a
// "CRITICAL:"-style prefix or a matched keyword), so prose never produces
// false positives. Unclassifiable text is silently dropped, never an error.
package review

// Severity levels, most severe first.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
	SeverityInfo     = "info"
)

// Issue categories assigned by keyword classification.
const (
	CategorySecurity    = "security"
	CategoryPerformance = "performance"
	CategoryBug         = "bug"
	CategoryTesting     = "testing"
	CategoryStyle       = "style"
	CategoryOther       = "other"
)

// Issue is a single finding extracted from reviewer output. Identity is
// parse order; ID is 1-based.
type Issue struct {
	ID         int    `json:"id"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Content    string `json:"content"`
	File       string `json:"file,omitempty"`
	Line       int    `json:"line,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Result is the structured output of parsing reviewer text.
type Result struct {
	Issues          []Issue  `json:"issues"`
	Recommendations []string `json:"recommendations"`
	ActionItems     []string `json:"actionItems"`
}

// severityOrder ranks severities for sorting and summaries.
// Lower is more severe.
func severityOrder(severity string) int {
	switch severity {
	case SeverityCritical:
		return 0
	case SeverityMajor:
		return 1
	case SeverityMinor:
		return 2
	case SeverityInfo:
		return 3
	default:
		return 4
	}
}

// IsValidSeverity checks if the severity string is a known level.
func IsValidSeverity(severity string) bool {
	return severityOrder(severity) < 4
}

// IsValidCategory checks if the category string is a known category.
func IsValidCategory(category string) bool {
	switch category {
	case CategorySecurity, CategoryPerformance, CategoryBug, CategoryTesting, CategoryStyle, CategoryOther:
		return true
	default:
		return false
	}
}

// CountBySeverity tallies issues per severity level.
func CountBySeverity(issues []Issue) map[string]int {
	counts := make(map[string]int, 4)

	for _, issue := range issues {
		counts[issue.Severity]++
	}

	return counts
}
