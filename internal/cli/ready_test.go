package cli

import (
	"fmt"
	"strings"
	"testing"
)

// readyFixture writes a plan file with one task so it can become ready.
func readyFixture(r *CLI, id int, title, status string, priority int, deps string) {
	depLine := ""
	if deps != "" {
		depLine = "dependencies: [" + deps + "]\n"
	}

	name := fmt.Sprintf("%d-%s.plan.md", id, strings.ReplaceAll(strings.ToLower(title), " ", "-"))
	r.WritePlanFile(name, fmt.Sprintf(`---
schema_version: 1
id: %d
title: %s
status: %s
priority: %d
%stasks:
  - title: work
---
`, id, title, status, priority, depLine))
}

func TestReadySortsByPriorityThenID(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	readyFixture(r, 1, "Low urgency", "pending", 3, "")
	readyFixture(r, 2, "Urgent fix", "pending", 1, "")
	readyFixture(r, 3, "Also urgent", "pending", 1, "")

	out := r.MustRun("ready")

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("ready output = %q, want 3 lines", out)
	}

	AssertContains(t, lines[0], "2  [P1]")
	AssertContains(t, lines[1], "3  [P1]")
	AssertContains(t, lines[2], "1  [P3]")
}

func TestReadyExcludesBlockedAndTasklessPlans(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	readyFixture(r, 1, "Blocker", "pending", 2, "")
	readyFixture(r, 2, "Blocked", "pending", 2, "1")
	readyFixture(r, 3, "Running", "in_progress", 2, "")
	r.MustRun("create", "taskless") // no tasks, never ready

	out := r.MustRun("ready")

	AssertContains(t, out, "Blocker")
	AssertNotContains(t, out, "Blocked")
	AssertNotContains(t, out, "Running")
	AssertNotContains(t, out, "taskless")
}

func TestReadyUnblocksWhenDepsDone(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	readyFixture(r, 1, "Blocker", "done", 2, "")
	readyFixture(r, 2, "Blocked", "pending", 2, "1")

	out := r.MustRun("ready")
	AssertContains(t, out, "Blocked")
}

func TestReadyFieldAndLimit(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	readyFixture(r, 1, "Second", "pending", 2, "")
	readyFixture(r, 2, "First", "pending", 1, "")

	if got := r.MustRun("ready", "--field", "id", "--limit", "1"); got != "2" {
		t.Errorf("ready --field id --limit 1 = %q, want %q", got, "2")
	}

	if got := r.MustRun("ready", "--field", "id", "--json"); got != "[2,1]" {
		t.Errorf("ready --field id --json = %q, want %q", got, "[2,1]")
	}

	if got := r.MustRun("ready", "--field", "title", "--limit", "1"); got != "First" {
		t.Errorf("ready --field title --limit 1 = %q, want %q", got, "First")
	}
}

func TestReadyRejectsInvalidField(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stderr := r.MustFail("ready", "--field", "color")
	AssertContains(t, stderr, "invalid field")
}

func TestReadyEmptyGoesToStderr(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stdout, stderr, code := r.Run("ready")

	if code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}

	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}

	AssertContains(t, stderr, "no plans ready for pickup")
}

func TestNextFindsReadyDependency(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	readyFixture(r, 1, "Epic", "pending", 2, "2,3")
	readyFixture(r, 2, "Finished", "done", 2, "")
	readyFixture(r, 3, "Up next", "pending", 2, "")

	out := r.MustRun("next", "1")
	AssertContains(t, out, "plan 3 is ready: Up next")
}

func TestNextPrefersInProgress(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	readyFixture(r, 1, "Epic", "pending", 2, "2,3")
	readyFixture(r, 2, "Active", "in_progress", 2, "")
	readyFixture(r, 3, "Waiting", "pending", 2, "")

	out := r.MustRun("next", "1")
	AssertContains(t, out, "plan 2 is in progress: Active")
}

func TestNextJSON(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	readyFixture(r, 1, "Epic", "pending", 2, "2")
	readyFixture(r, 2, "Dep", "pending", 2, "")

	out := r.MustRun("next", "1", "--json")
	AssertContains(t, out, `"found":true`)
	AssertContains(t, out, `"plan_id":2`)
	AssertContains(t, out, `"message":"plan 2 is ready: Dep"`)
}

func TestNextNoDependencies(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	readyFixture(r, 1, "Loner", "pending", 2, "")

	out := r.MustRun("next", "1")
	AssertContains(t, out, "plan 1 has no dependencies")
}

func TestNextMissingPlan(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	out := r.MustRun("next", "7")
	AssertContains(t, out, "plan 7 not found")
}
