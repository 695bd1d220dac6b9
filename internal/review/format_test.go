package review

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() Result {
	return Result{
		Issues: []Issue{
			{
				ID:         1,
				Severity:   SeverityCritical,
				Category:   CategorySecurity,
				Content:    "SQL injection in the search endpoint\nUser input reaches the query unescaped.",
				File:       "db/query.go",
				Line:       42,
				Suggestion: "use parameterized queries",
			},
			{
				ID:       2,
				Severity: SeverityMinor,
				Category: CategoryStyle,
				Content:  "inconsistent receiver names",
			},
		},
		Recommendations: []string{"add fuzz tests for the parser"},
		ActionItems:     []string{"fix the injection before release"},
	}
}

func TestFormatJSONDetailedRoundTrips(t *testing.T) {
	t.Parallel()

	want := sampleResult()

	out, err := Format(want, Options{Format: FormatJSON, Verbosity: VerbosityDetailed})
	require.NoError(t, err)

	var got Result
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("detailed JSON did not round-trip (-want +got):\n%s", diff)
	}
}

func TestFormatJSONMinimalCounts(t *testing.T) {
	t.Parallel()

	out, err := Format(sampleResult(), Options{Format: FormatJSON, Verbosity: VerbosityMinimal})
	require.NoError(t, err)

	var got jsonSummary
	require.NoError(t, json.Unmarshal([]byte(out), &got))

	assert.Equal(t, jsonSummary{Total: 2, Critical: 1, Minor: 1}, got)
}

func TestFormatJSONNormalDropsSuggestions(t *testing.T) {
	t.Parallel()

	out, err := Format(sampleResult(), Options{Format: FormatJSON, Verbosity: VerbosityNormal})
	require.NoError(t, err)

	assert.NotContains(t, out, "suggestion")
	assert.Contains(t, out, "db/query.go")
}

func TestFormatJSONValidatesInvariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Result)
		field  string
	}{
		{"non-sequential ids", func(r *Result) { r.Issues[1].ID = 7 }, "id"},
		{"unknown severity", func(r *Result) { r.Issues[0].Severity = "catastrophic" }, "severity"},
		{"unknown category", func(r *Result) { r.Issues[0].Category = "vibes" }, "category"},
		{"empty content", func(r *Result) { r.Issues[0].Content = "" }, "content"},
		{"negative line", func(r *Result) { r.Issues[0].Line = -1 }, "line"},
		{"line without file", func(r *Result) { r.Issues[0].File = "" }, "line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := sampleResult()
			tt.mutate(&result)

			_, err := Format(result, Options{Format: FormatJSON, Verbosity: VerbosityDetailed})
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFormatMarkdown(t *testing.T) {
	t.Parallel()

	out, err := Format(sampleResult(), Options{Format: FormatMarkdown, Verbosity: VerbosityDetailed})
	require.NoError(t, err)

	assert.Contains(t, out, "# Review Summary")
	assert.Contains(t, out, "2 issue(s) found (1 critical, 1 minor)")
	assert.Contains(t, out, "### 1. [CRITICAL] SQL injection in the search endpoint")
	assert.Contains(t, out, "`db/query.go:42`")
	assert.Contains(t, out, "> Suggestion: use parameterized queries")
	assert.Contains(t, out, "- [ ] fix the injection before release")
}

func TestFormatMarkdownMinimalOmitsIssues(t *testing.T) {
	t.Parallel()

	out, err := Format(sampleResult(), Options{Format: FormatMarkdown, Verbosity: VerbosityMinimal})
	require.NoError(t, err)

	assert.Contains(t, out, "2 issue(s) found")
	assert.NotContains(t, out, "## Issues")
}

func TestFormatTerminalPlain(t *testing.T) {
	t.Parallel()

	out, err := Format(sampleResult(), Options{Format: FormatTerminal, Verbosity: VerbosityNormal, Color: false})
	require.NoError(t, err)

	// No ANSI escapes without color.
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "2 issue(s)")
	assert.Contains(t, out, "CRITICAL")
	assert.Contains(t, out, "db/query.go:42")

	// Normal verbosity hides bodies and suggestions.
	assert.NotContains(t, out, "parameterized")
}

func TestFormatTerminalSeverityTable(t *testing.T) {
	t.Parallel()

	want := strings.Join([]string{
		"2 issue(s)",
		"┌──────────┬───┐",
		"│ critical │ 1 │",
		"│ minor    │ 1 │",
		"└──────────┴───┘",
	}, "\n") + "\n"

	// The bordered count table opens the summary at every verbosity.
	for _, verbosity := range []string{VerbosityMinimal, VerbosityNormal, VerbosityDetailed} {
		out, err := Format(sampleResult(), Options{Format: FormatTerminal, Verbosity: verbosity, Color: false})
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, want), "verbosity %s output:\n%s", verbosity, out)
	}

	// Color changes cell styling, never the box drawing.
	out, err := Format(sampleResult(), Options{Format: FormatTerminal, Verbosity: VerbosityMinimal, Color: true})
	require.NoError(t, err)
	assert.Contains(t, out, "┌──────────┬───┐")
	assert.Contains(t, out, "└──────────┴───┘")
}

func TestFormatTerminalDetailedShowsSuggestion(t *testing.T) {
	t.Parallel()

	out, err := Format(sampleResult(), Options{Format: FormatTerminal, Verbosity: VerbosityDetailed, Color: false})
	require.NoError(t, err)

	assert.Contains(t, out, "suggestion: use parameterized queries")
	assert.Contains(t, out, "User input reaches the query unescaped.")
}

func TestFormatTerminalEmptyResult(t *testing.T) {
	t.Parallel()

	out, err := Format(Result{}, Options{Format: FormatTerminal, Verbosity: VerbosityNormal})
	require.NoError(t, err)

	assert.Equal(t, "No issues found.\n", out)
}

func TestFormatRejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := Format(Result{}, Options{Format: "yaml"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid format"))

	_, err = Format(Result{}, Options{Format: FormatJSON, Verbosity: "chatty"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid verbosity"))
}
