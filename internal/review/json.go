package review

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports a result that violates the output invariants.
type ValidationError struct {
	IssueID int
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid review result: issue %d: %s: %s", e.IssueID, e.Field, e.Reason)
}

// ValidateResult checks the invariants every serialized result must hold:
// sequential IDs starting at 1, known severities and categories, non-empty
// content, and non-negative line numbers.
func ValidateResult(result Result) error {
	for i, issue := range result.Issues {
		if issue.ID != i+1 {
			return &ValidationError{IssueID: issue.ID, Field: "id", Reason: fmt.Sprintf("want %d", i+1)}
		}

		if !IsValidSeverity(issue.Severity) {
			return &ValidationError{IssueID: issue.ID, Field: "severity", Reason: fmt.Sprintf("unknown value %q", issue.Severity)}
		}

		if !IsValidCategory(issue.Category) {
			return &ValidationError{IssueID: issue.ID, Field: "category", Reason: fmt.Sprintf("unknown value %q", issue.Category)}
		}

		if issue.Content == "" {
			return &ValidationError{IssueID: issue.ID, Field: "content", Reason: "empty"}
		}

		if issue.Line < 0 {
			return &ValidationError{IssueID: issue.ID, Field: "line", Reason: "negative"}
		}

		if issue.Line > 0 && issue.File == "" {
			return &ValidationError{IssueID: issue.ID, Field: "line", Reason: "set without a file"}
		}
	}

	return nil
}

// jsonSummary is the minimal-verbosity JSON shape.
type jsonSummary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Info     int `json:"info"`
}

// jsonIssue is the normal-verbosity issue shape: suggestions are dropped.
type jsonIssue struct {
	ID       int    `json:"id"`
	Severity string `json:"severity"`
	Category string `json:"category"`
	Content  string `json:"content"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

func formatJSON(result Result, verbosity string) (string, error) {
	if err := ValidateResult(result); err != nil {
		return "", err
	}

	var payload any

	switch verbosity {
	case VerbosityMinimal:
		counts := CountBySeverity(result.Issues)
		payload = jsonSummary{
			Total:    len(result.Issues),
			Critical: counts[SeverityCritical],
			Major:    counts[SeverityMajor],
			Minor:    counts[SeverityMinor],
			Info:     counts[SeverityInfo],
		}
	case VerbosityNormal:
		issues := make([]jsonIssue, len(result.Issues))
		for i, issue := range result.Issues {
			issues[i] = jsonIssue{
				ID:       issue.ID,
				Severity: issue.Severity,
				Category: issue.Category,
				Content:  issue.Content,
				File:     issue.File,
				Line:     issue.Line,
			}
		}

		payload = struct {
			Issues []jsonIssue `json:"issues"`
		}{Issues: issues}
	default:
		// Detailed output is the full result and round-trips through
		// json.Unmarshal back into a Result.
		payload = result
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal review result: %w", err)
	}

	return string(data) + "\n", nil
}
