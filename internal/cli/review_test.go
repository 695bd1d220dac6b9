package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

const reviewInput = `- CRITICAL: SQL injection in db/query.go:42
- minor: typo in the README
`

func TestReviewFromStdinJSON(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout, stderr, code := r.RunWithInput(reviewInput, "review", "--format", "json")

	if code != 0 {
		t.Fatalf("exit code = %d\nstderr: %s", code, stderr)
	}

	var payload struct {
		Issues []struct {
			ID       int    `json:"id"`
			Severity string `json:"severity"`
			Category string `json:"category"`
			File     string `json:"file"`
			Line     int    `json:"line"`
		} `json:"issues"`
	}

	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, stdout)
	}

	if len(payload.Issues) != 2 {
		t.Fatalf("issues = %d, want 2", len(payload.Issues))
	}

	first := payload.Issues[0]
	if first.ID != 1 || first.Severity != "critical" || first.Category != "security" {
		t.Errorf("first issue = %+v", first)
	}

	if first.File != "db/query.go" || first.Line != 42 {
		t.Errorf("first issue location = %s:%d", first.File, first.Line)
	}
}

func TestReviewFromFile(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	path := filepath.Join(r.Dir, "notes.txt")
	if err := os.WriteFile(path, []byte(reviewInput), 0o600); err != nil {
		t.Fatal(err)
	}

	out := r.MustRun("review", path, "--no-color")
	AssertContains(t, out, "2 issue(s)")
	AssertContains(t, out, "│ critical │ 1 │")
	AssertContains(t, out, "│ minor")
	AssertContains(t, out, "SQL injection")
}

func TestReviewMissingFile(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stderr := r.MustFail("review", filepath.Join(r.Dir, "nope.txt"))
	AssertContains(t, stderr, "read review file")
}

func TestReviewWritesOutputFile(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	path := filepath.Join(r.Dir, "review.md")

	stdout, _, code := r.RunWithInput(reviewInput, "review", "--format", "markdown", "-o", path)
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	AssertContains(t, stdout, "wrote "+path)

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	AssertContains(t, string(content), "# Review Summary")
	AssertContains(t, string(content), "[CRITICAL]")
}

func TestReviewPlainOutputHasNoANSI(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout, _, code := r.RunWithInput(reviewInput, "review", "--no-color")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	AssertNotContains(t, stdout, "\x1b[")
}

func TestReviewEmptyInput(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout, _, code := r.RunWithInput("", "review", "--no-color")
	if code != 0 {
		t.Fatalf("exit code = %d", code)
	}

	AssertContains(t, stdout, "No issues found.")
}

func TestReviewRejectsBadFormat(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout, stderr, code := r.RunWithInput("x", "review", "--format", "yaml")

	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}

	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}

	AssertContains(t, stderr, "invalid format")
}
