package review

import (
	"fmt"
	"strings"
)

func formatMarkdown(result Result, verbosity string) string {
	var b strings.Builder

	b.WriteString("# Review Summary\n\n")
	writeMarkdownCounts(&b, result)

	if verbosity == VerbosityMinimal {
		return b.String()
	}

	if len(result.Issues) > 0 {
		b.WriteString("\n## Issues\n")

		for _, issue := range result.Issues {
			writeMarkdownIssue(&b, issue, verbosity)
		}
	}

	if len(result.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")

		for _, rec := range result.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	if len(result.ActionItems) > 0 {
		b.WriteString("\n## Action Items\n\n")

		for _, item := range result.ActionItems {
			fmt.Fprintf(&b, "- [ ] %s\n", item)
		}
	}

	return b.String()
}

func writeMarkdownCounts(b *strings.Builder, result Result) {
	counts := CountBySeverity(result.Issues)

	fmt.Fprintf(b, "%d issue(s) found", len(result.Issues))

	if len(result.Issues) > 0 {
		parts := make([]string, 0, 4)

		for _, severity := range []string{SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo} {
			if n := counts[severity]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, severity))
			}
		}

		fmt.Fprintf(b, " (%s)", strings.Join(parts, ", "))
	}

	b.WriteString("\n")
}

func writeMarkdownIssue(b *strings.Builder, issue Issue, verbosity string) {
	title := issue.Content
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}

	fmt.Fprintf(b, "\n### %d. [%s] %s\n\n", issue.ID, strings.ToUpper(issue.Severity), title)
	fmt.Fprintf(b, "- Category: %s\n", issue.Category)

	if issue.File != "" {
		if issue.Line > 0 {
			fmt.Fprintf(b, "- Location: `%s:%d`\n", issue.File, issue.Line)
		} else {
			fmt.Fprintf(b, "- Location: `%s`\n", issue.File)
		}
	}

	if verbosity != VerbosityDetailed {
		return
	}

	if body := issueBody(issue); body != "" {
		fmt.Fprintf(b, "\n%s\n", body)
	}

	if issue.Suggestion != "" {
		fmt.Fprintf(b, "\n> Suggestion: %s\n", issue.Suggestion)
	}
}

// issueBody returns the content below the first line, if any.
func issueBody(issue Issue) string {
	idx := strings.IndexByte(issue.Content, '\n')
	if idx < 0 {
		return ""
	}

	return strings.TrimSpace(issue.Content[idx+1:])
}
