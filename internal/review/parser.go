package review

import (
	"regexp"
	"strconv"
	"strings"
)

// Hard caps bounding pathological input. The parser truncates rather than
// failing closed.
const (
	maxInputBytes   = 10 << 20 // 10MB
	maxIssues       = 100
	maxLines        = 100_000
	maxCandidateLen = 500
)

// separatorRe matches "---" style horizontal rules used between issue blocks.
var separatorRe = regexp.MustCompile(`^\s*-{3,}\s*$`)

// bulletRe matches leading list markers: "-", "*", "•", "1.", "2)".
var bulletRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)

// severityPrefixRe matches explicit severity markers at the start of a line,
// e.g. "CRITICAL: SQL injection in handler.go".
var severityPrefixRe = regexp.MustCompile(`(?i)^[*_]{0,2}(critical|blocker|high|major|medium|minor|low|info|note|nit)[*_]{0,2}\s*:\s*`)

// severityFromPrefix normalizes an explicit prefix to a severity level.
var severityFromPrefix = map[string]string{
	"critical": SeverityCritical,
	"blocker":  SeverityCritical,
	"high":     SeverityCritical,
	"major":    SeverityMajor,
	"medium":   SeverityMajor,
	"minor":    SeverityMinor,
	"low":      SeverityMinor,
	"info":     SeverityInfo,
	"note":     SeverityInfo,
	"nit":      SeverityInfo,
}

// classifier maps a keyword pattern to a severity and category.
// The list is ordered; the first match wins.
type classifier struct {
	re       *regexp.Regexp
	severity string
	category string
}

var classifiers = []classifier{
	{
		re:       regexp.MustCompile(`(?i)\b(security|vulnerab\w*|exploit\w*|injection|xss|csrf|sanitiz\w*|unsafe|secret\w*|credential\w*|privilege|auth(entication|orization)?\s+bypass)\b`),
		severity: SeverityCritical,
		category: CategorySecurity,
	},
	{
		re:       regexp.MustCompile(`(?i)\b(performance|slow\w*|latency|inefficien\w*|n\+1|memory\s+leak|alloc\w*|quadratic|throughput|blocking\s+call)\b`),
		severity: SeverityMajor,
		category: CategoryPerformance,
	},
	{
		re:       regexp.MustCompile(`(?i)\b(bug|crash\w*|panic\w*|nil\s+pointer|null\s+(pointer|deref\w*)|race\s+condition|deadlock|data\s+race|incorrect\w*|off[- ]by[- ]one|overflow|leak\w*|error\s+handling)\b`),
		severity: SeverityMajor,
		category: CategoryBug,
	},
	{
		re:       regexp.MustCompile(`(?i)\b(test\w*|coverage|assert\w*|mock\w*|fixture\w*|untested)\b`),
		severity: SeverityMinor,
		category: CategoryTesting,
	},
	{
		re:       regexp.MustCompile(`(?i)\b(style|styling|naming|format\w*|lint\w*|typo\w*|readab\w*|convention\w*|indent\w*|whitespace|doc\s+comment\w*|documentation)\b`),
		severity: SeverityMinor,
		category: CategoryStyle,
	},
}

// markerRunes are leading emoji/status markers stripped from issue headers.
var markerRunes = map[rune]bool{
	'🔴': true, '🟠': true, '🟡': true, '🟢': true, '🔵': true,
	'⚠': true, '❗': true, '❌': true, '✅': true, '✔': true,
	'ℹ': true, '💡': true, '🚨': true, '🔒': true, '🐛': true,
	'️': true, // variation selector left behind by emoji
}

// File reference extraction, tried in order.
var filePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?i)\\b(?:in|at|line)\\s+`?([\\w./\\-]+)`?:(\\d+)"),
	regexp.MustCompile("(?i)\\b(?:in|at)\\s+`?([\\w./\\-]+\\.[a-zA-Z]{1,5})`?\\b"),
	regexp.MustCompile("(?i)\\bfile\\s+`?([\\w./\\-]+\\.[a-zA-Z]{1,5})`?\\b"),
}

// suggestionRe pulls an inline suggestion out of an issue body.
var suggestionRe = regexp.MustCompile(`(?im)^\s*(?:suggestion|fix|consider)\s*:\s*(.+)$`)

// allowedExtensions limits extracted file references to plausible source
// files, filtering out prose that happens to look like a path.
var allowedExtensions = map[string]bool{
	"go": true, "js": true, "jsx": true, "ts": true, "tsx": true,
	"py": true, "rb": true, "rs": true, "java": true, "kt": true,
	"c": true, "h": true, "cc": true, "cpp": true, "hpp": true,
	"cs": true, "php": true, "swift": true, "sql": true, "sh": true,
	"yml": true, "yaml": true, "json": true, "toml": true, "md": true,
	"txt": true, "css": true, "html": true, "vue": true, "proto": true,
	"tf": true, "mod": true, "sum": true,
}

const maxPathLen = 260

// Parse mines structured issues, recommendations, and action items out of
// raw reviewer output. It never fails: unparseable input yields an empty
// result and oversized input is truncated at the hard caps.
func Parse(raw string) Result {
	if len(raw) > maxInputBytes {
		raw = raw[:maxInputBytes]
	}

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	result := Result{
		Issues:          []Issue{},
		Recommendations: []string{},
		ActionItems:     []string{},
	}

	// Pull out the recommendation / action-item sections first so their
	// bullets are not re-mined as issues.
	issueLines := extractSections(lines, &result)

	if hasSeparator(issueLines) {
		result.Issues = parseBlocks(issueLines)
	} else {
		result.Issues = parseLines(issueLines)
	}

	for i := range result.Issues {
		result.Issues[i].ID = i + 1
	}

	return result
}

func hasSeparator(lines []string) bool {
	for _, line := range lines {
		if separatorRe.MatchString(line) {
			return true
		}
	}

	return false
}

// Section headers for recommendations and action items.
var (
	recommendationsHeaderRe = regexp.MustCompile(`(?i)^#{0,6}\s*\**\s*recommendations?\s*\**\s*:?\s*$`)
	actionItemsHeaderRe     = regexp.MustCompile(`(?i)^#{0,6}\s*\**\s*(?:action\s*items?|next\s*steps?)\s*\**\s*:?\s*$`)
	anyHeaderRe             = regexp.MustCompile(`^#{1,6}\s+\S`)
)

// extractSections collects bullets under "Recommendations" and
// "Action Items" headers into the result and returns the remaining lines.
func extractSections(lines []string, result *Result) []string {
	remaining := make([]string, 0, len(lines))

	var target *[]string

	for _, line := range lines {
		switch {
		case recommendationsHeaderRe.MatchString(line):
			target = &result.Recommendations

			continue
		case actionItemsHeaderRe.MatchString(line):
			target = &result.ActionItems

			continue
		case anyHeaderRe.MatchString(line) || separatorRe.MatchString(line):
			// Any other header or separator ends the section.
			target = nil
		}

		if target != nil {
			if item := stripMarkers(line); item != "" {
				*target = append(*target, truncate(item, maxCandidateLen))
			}

			continue
		}

		remaining = append(remaining, line)
	}

	return remaining
}

// parseBlocks splits the text on "---" separators and treats each block as
// one issue candidate: the first non-empty line is the header, the rest is
// the body.
func parseBlocks(lines []string) []Issue {
	var issues []Issue

	var block []string

	flush := func() {
		if len(issues) >= maxIssues {
			block = nil

			return
		}

		if issue, ok := candidateFromBlock(block); ok {
			issues = append(issues, issue)
		}

		block = nil
	}

	for _, line := range lines {
		if separatorRe.MatchString(line) {
			flush()

			continue
		}

		block = append(block, line)
	}

	flush()

	return issues
}

// parseLines is the fallback strategy: every bullet or severity-prefixed
// line is its own issue candidate.
func parseLines(lines []string) []Issue {
	var issues []Issue

	for _, line := range lines {
		if len(issues) >= maxIssues {
			break
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if !bulletRe.MatchString(line) && !severityPrefixRe.MatchString(trimmed) && !hasMarkerPrefix(trimmed) {
			continue
		}

		if issue, ok := candidate(trimmed, ""); ok {
			issues = append(issues, issue)
		}
	}

	return issues
}

func candidateFromBlock(block []string) (Issue, bool) {
	header := ""
	bodyStart := 0

	for i, line := range block {
		if strings.TrimSpace(line) != "" {
			header = strings.TrimSpace(line)
			bodyStart = i + 1

			break
		}
	}

	if header == "" {
		return Issue{}, false
	}

	body := strings.TrimSpace(strings.Join(block[bodyStart:], "\n"))

	return candidate(header, body)
}

// candidate classifies a header/body pair. The issue is kept only when an
// explicit severity signal is present: a severity prefix on the header or a
// matched keyword pattern.
func candidate(header, body string) (Issue, bool) {
	header = stripMarkers(truncate(header, maxCandidateLen))

	explicit := ""

	if m := severityPrefixRe.FindStringSubmatch(header); m != nil {
		explicit = severityFromPrefix[strings.ToLower(m[1])]
		header = stripMarkers(header[len(m[0]):])
	}

	if header == "" {
		return Issue{}, false
	}

	combined := header
	if body != "" {
		combined += "\n" + body
	}

	severity, category, matched := classify(combined)

	switch {
	case explicit != "" && matched:
		severity = explicit
	case explicit != "":
		severity, category = explicit, CategoryOther
	case !matched:
		// No explicit severity signal: drop rather than guess.
		return Issue{}, false
	}

	issue := Issue{
		Severity: severity,
		Category: category,
		Content:  combined,
	}

	issue.File, issue.Line = extractFileRef(combined)

	if m := suggestionRe.FindStringSubmatch(body); m != nil {
		issue.Suggestion = strings.TrimSpace(m[1])
	}

	return issue, true
}

// classify scans the ordered keyword patterns; the first match wins.
func classify(text string) (severity, category string, ok bool) {
	for _, c := range classifiers {
		if c.re.MatchString(text) {
			return c.severity, c.category, true
		}
	}

	return SeverityInfo, CategoryOther, false
}

// stripMarkers removes bullet, numeric, and emoji markers plus surrounding
// markdown emphasis from a candidate line.
func stripMarkers(line string) string {
	line = strings.TrimSpace(line)

	for {
		next := bulletRe.ReplaceAllString(line, "")
		next = strings.TrimLeftFunc(next, func(r rune) bool {
			return markerRunes[r] || r == ' ' || r == '\t'
		})

		for _, box := range []string{"[ ]", "[x]", "[X]"} {
			next = strings.TrimSpace(strings.TrimPrefix(next, box))
		}

		if next == line {
			break
		}

		line = next
	}

	return strings.TrimSpace(strings.Trim(line, "*_ "))
}

// hasMarkerPrefix reports whether a line starts with an emoji status marker.
func hasMarkerPrefix(line string) bool {
	for _, r := range line {
		return markerRunes[r]
	}

	return false
}

// extractFileRef tries the file reference patterns in order and sanitizes
// the match. Returns empty values when nothing plausible is found.
func extractFileRef(text string) (string, int) {
	for i, re := range filePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}

		path := m[1]
		if !validPath(path) {
			continue
		}

		line := 0

		if i == 0 {
			line, _ = strconv.Atoi(m[2])
		}

		return path, line
	}

	return "", 0
}

// validPath rejects traversal, absolute paths, oversized paths, and
// implausible extensions.
func validPath(path string) bool {
	if path == "" || len(path) > maxPathLen {
		return false
	}

	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, "\\") {
		return false
	}

	for _, part := range strings.Split(path, "/") {
		if part == ".." {
			return false
		}
	}

	idx := strings.LastIndexByte(path, '.')
	if idx < 0 || idx == len(path)-1 {
		return false
	}

	return allowedExtensions[strings.ToLower(path[idx+1:])]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n]
}
