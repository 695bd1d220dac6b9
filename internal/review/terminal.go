package review

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var severityStyles = map[string]lipgloss.Style{
	SeverityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	SeverityMajor:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	SeverityMinor:    lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	SeverityInfo:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
}

var headingStyle = lipgloss.NewStyle().Bold(true)

func formatTerminal(result Result, verbosity string, color bool) string {
	var b strings.Builder

	writeTerminalSummary(&b, result, color)

	if verbosity == VerbosityMinimal {
		return b.String()
	}

	if len(result.Issues) > 0 {
		b.WriteString("\n")
		writeTerminalIssues(&b, result.Issues, verbosity, color)
	}

	if len(result.Recommendations) > 0 {
		b.WriteString("\n")
		b.WriteString(styled("Recommendations", headingStyle, color))
		b.WriteString("\n")

		for _, rec := range result.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}

	if len(result.ActionItems) > 0 {
		b.WriteString("\n")
		b.WriteString(styled("Action Items", headingStyle, color))
		b.WriteString("\n")

		for _, item := range result.ActionItems {
			fmt.Fprintf(&b, "  [ ] %s\n", item)
		}
	}

	return b.String()
}

func writeTerminalSummary(b *strings.Builder, result Result, color bool) {
	if len(result.Issues) == 0 {
		b.WriteString("No issues found.\n")

		return
	}

	fmt.Fprintf(b, "%d issue(s)\n", len(result.Issues))
	writeSeverityTable(b, CountBySeverity(result.Issues), color)
}

// writeSeverityTable draws a small bordered severity/count table. The box is
// drawn by hand from the lipgloss border set so plain output stays
// byte-stable regardless of the detected color profile.
func writeSeverityTable(b *strings.Builder, counts map[string]int, color bool) {
	type row struct {
		severity string
		count    string
	}

	rows := make([]row, 0, 4)
	sevWidth, countWidth := 0, 1

	for _, severity := range []string{SeverityCritical, SeverityMajor, SeverityMinor, SeverityInfo} {
		n := counts[severity]
		if n == 0 {
			continue
		}

		r := row{severity: severity, count: strconv.Itoa(n)}
		sevWidth = max(sevWidth, runewidth.StringWidth(r.severity))
		countWidth = max(countWidth, runewidth.StringWidth(r.count))
		rows = append(rows, r)
	}

	border := lipgloss.NormalBorder()

	edge := func(left, line, mid, right string) {
		b.WriteString(left)
		b.WriteString(strings.Repeat(line, sevWidth+2))
		b.WriteString(mid)
		b.WriteString(strings.Repeat(line, countWidth+2))
		b.WriteString(right)
		b.WriteString("\n")
	}

	edge(border.TopLeft, border.Top, border.MiddleTop, border.TopRight)

	for _, r := range rows {
		fmt.Fprintf(b, "%s %s %s %s %s\n",
			border.Left,
			styled(pad(r.severity, sevWidth), severityStyles[r.severity], color),
			border.Left,
			pad(r.count, countWidth),
			border.Left,
		)
	}

	edge(border.BottomLeft, border.Bottom, border.MiddleBottom, border.BottomRight)
}

func writeTerminalIssues(b *strings.Builder, issues []Issue, verbosity string, color bool) {
	sevWidth := 0
	catWidth := 0

	for _, issue := range issues {
		sevWidth = max(sevWidth, runewidth.StringWidth(issue.Severity))
		catWidth = max(catWidth, runewidth.StringWidth(issue.Category))
	}

	for _, issue := range issues {
		title := issue.Content
		if idx := strings.IndexByte(title, '\n'); idx >= 0 {
			title = title[:idx]
		}

		sev := pad(strings.ToUpper(issue.Severity), sevWidth)

		fmt.Fprintf(b, "%3d  %s  %s  %s\n",
			issue.ID,
			styled(sev, severityStyles[issue.Severity], color),
			pad(issue.Category, catWidth),
			title,
		)

		indent := strings.Repeat(" ", 5+sevWidth+2+catWidth+2)

		if issue.File != "" {
			loc := issue.File
			if issue.Line > 0 {
				loc = fmt.Sprintf("%s:%d", issue.File, issue.Line)
			}

			fmt.Fprintf(b, "%s%s\n", indent, loc)
		}

		if verbosity == VerbosityDetailed {
			for _, line := range strings.Split(issueBody(issue), "\n") {
				if line = strings.TrimSpace(line); line != "" {
					fmt.Fprintf(b, "%s%s\n", indent, line)
				}
			}

			if issue.Suggestion != "" {
				fmt.Fprintf(b, "%ssuggestion: %s\n", indent, issue.Suggestion)
			}
		}
	}
}

// styled applies a lipgloss style only when color output is enabled; plain
// output stays byte-stable for tests and pipes.
func styled(s string, style lipgloss.Style, color bool) string {
	if !color {
		return s
	}

	return style.Render(s)
}

func pad(s string, width int) string {
	if gap := width - runewidth.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}

	return s
}
