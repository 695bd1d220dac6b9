package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCreatePrintsID(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	out := r.MustRun("create", "My first plan")
	if out != "1" {
		t.Errorf("create output = %q, want 1", out)
	}

	path := filepath.Join(r.PlanDir(), "1-my-first-plan.plan.md")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("plan file not written: %v", err)
	}

	content := r.ReadPlanFile("1-my-first-plan.plan.md")
	AssertContains(t, content, "title: My first plan")
	AssertContains(t, content, "status: pending")
	AssertContains(t, content, "schema_version: 1")
}

func TestCreateSequentialIDs(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	if got := r.MustRun("create", "first"); got != "1" {
		t.Errorf("first ID = %q", got)
	}

	if got := r.MustRun("create", "second"); got != "2" {
		t.Errorf("second ID = %q", got)
	}
}

func TestCreateWithFlags(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	r.MustRun("create", "parent plan")
	r.MustRun("create", "a dep")

	out := r.MustRun("create",
		"-t", "full plan",
		"-g", "ship it",
		"-p", "1",
		"--parent", "1",
		"--depends-on", "2",
	)
	if out != "3" {
		t.Fatalf("create output = %q, want 3", out)
	}

	content := r.ReadPlanFile("3-full-plan.plan.md")
	AssertContains(t, content, "goal: ship it")
	AssertContains(t, content, "priority: 1")
	AssertContains(t, content, "parent: 1")
	AssertContains(t, content, "- 2")
}

func TestCreateRequiresTitle(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stderr := r.MustFail("create")
	AssertContains(t, stderr, "title is required")
}

func TestCreateRejectsMissingParent(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stderr := r.MustFail("create", "orphan", "--parent", "9")
	AssertContains(t, stderr, "parent plan not found")
}

func TestCreateRejectsDoneParent(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	r.MustRun("create", "parent plan")
	r.MustRun("start", "1")
	r.MustRun("done", "1")

	stderr := r.MustFail("create", "late child", "--parent", "1")
	AssertContains(t, stderr, "parent plan is already done")
}

func TestCreateRejectsMissingDependency(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stderr := r.MustFail("create", "plan", "--depends-on", "5")
	AssertContains(t, stderr, "plan not found")
}

func TestCreateRejectsBadPriority(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stderr := r.MustFail("create", "plan", "-p", "9")
	AssertContains(t, stderr, "invalid priority")
}

func TestCreateWithPlanDirOverride(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	r.MustRun("--plan-dir", "work/queue", "create", "custom dir plan")

	path := filepath.Join(r.Dir, "work", "queue", "1-custom-dir-plan.plan.md")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("plan not written to overridden dir: %v", err)
	}
}
