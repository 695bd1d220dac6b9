package plan

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// node builds a summary for graph tests. tasks is the number of tasks, all
// counted as not done.
func node(id int, status string, tasks int, deps []int, parent int) *Summary {
	return &Summary{
		ID:           id,
		Title:        "plan " + string(rune('a'+id%26)),
		Status:       status,
		Priority:     DefaultPriority,
		Dependencies: deps,
		Parent:       parent,
		TaskCount:    tasks,
	}
}

func graphOf(nodes ...*Summary) *Graph {
	plans := make(map[int]*Summary, len(nodes))

	for _, n := range nodes {
		plans[n.ID] = n
	}

	return NewGraph(plans)
}

func TestFindNextReadyReturnsReadyDependency(t *testing.T) {
	t.Parallel()

	// 1 depends on [2, 3]; 2 is done, 3 is pending with a task.
	g := graphOf(
		node(1, StatusPending, 1, []int{2, 3}, 0),
		node(2, StatusDone, 1, nil, 0),
		node(3, StatusPending, 1, nil, 0),
	)

	got := FindNextReady(1, g)

	if !got.Found {
		t.Fatalf("expected a result, got message %q", got.Message)
	}

	if got.PlanID != 3 {
		t.Errorf("PlanID = %d, want 3", got.PlanID)
	}
}

func TestFindNextReadyPrefersInProgress(t *testing.T) {
	t.Parallel()

	// Both deps are actionable but 2 is already being worked on.
	g := graphOf(
		node(1, StatusPending, 1, []int{2, 3}, 0),
		node(2, StatusInProgress, 0, nil, 0),
		node(3, StatusPending, 1, nil, 0),
	)

	got := FindNextReady(1, g)

	if got.PlanID != 2 {
		t.Errorf("PlanID = %d, want in-progress plan 2", got.PlanID)
	}

	AssertContainsString(t, got.Message, "in progress")
}

func TestFindNextReadyNeverReturnsDone(t *testing.T) {
	t.Parallel()

	g := graphOf(
		node(1, StatusPending, 1, []int{2}, 0),
		node(2, StatusDone, 1, nil, 0),
	)

	got := FindNextReady(1, g)

	if got.Found {
		t.Fatalf("done plan should never be returned, got plan %d", got.PlanID)
	}

	want := "no ready dependency found for plan 1"
	if got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestFindNextReadyTraversesThroughDone(t *testing.T) {
	t.Parallel()

	// 2 is done but its own dependency 3 is still actionable.
	g := graphOf(
		node(1, StatusPending, 1, []int{2}, 0),
		node(2, StatusDone, 1, []int{3}, 0),
		node(3, StatusPending, 2, nil, 0),
	)

	got := FindNextReady(1, g)

	if got.PlanID != 3 {
		t.Errorf("PlanID = %d, want 3 (reached through done plan 2)", got.PlanID)
	}
}

func TestFindNextReadyZeroTaskPendingIsNotReady(t *testing.T) {
	t.Parallel()

	g := graphOf(
		node(1, StatusPending, 1, []int{2}, 0),
		node(2, StatusPending, 0, nil, 0),
	)

	got := FindNextReady(1, g)

	if got.Found {
		t.Fatalf("pending plan with zero tasks should not be ready, got plan %d", got.PlanID)
	}
}

func TestFindNextReadyCycleDoesNotLoop(t *testing.T) {
	t.Parallel()

	// 1 -> 2 -> 3 -> 1: none ready, traversal must terminate.
	g := graphOf(
		node(1, StatusPending, 0, []int{2}, 0),
		node(2, StatusPending, 0, []int{3}, 0),
		node(3, StatusPending, 0, []int{1}, 0),
	)

	got := FindNextReady(1, g)

	if got.Found {
		t.Fatalf("nothing in the cycle is ready, got plan %d", got.PlanID)
	}

	want := "no ready dependency found for plan 1"
	if got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestFindNextReadyStartNotFound(t *testing.T) {
	t.Parallel()

	g := graphOf(node(1, StatusPending, 1, nil, 0))

	got := FindNextReady(42, g)

	if got.Found {
		t.Fatal("missing start plan must not produce a result")
	}

	want := "plan 42 not found"
	if got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestFindNextReadyNoDependencies(t *testing.T) {
	t.Parallel()

	g := graphOf(node(1, StatusPending, 1, nil, 0))

	got := FindNextReady(1, g)

	want := "plan 1 has no dependencies"
	if got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestFindNextReadyDanglingReferenceIgnored(t *testing.T) {
	t.Parallel()

	// 99 does not exist; 3 is still reachable and ready.
	g := graphOf(
		node(1, StatusPending, 1, []int{99, 3}, 0),
		node(3, StatusPending, 1, nil, 0),
	)

	got := FindNextReady(1, g)

	if got.PlanID != 3 {
		t.Errorf("PlanID = %d, want 3", got.PlanID)
	}
}

func TestFindNextReadyOnlyDanglingReferences(t *testing.T) {
	t.Parallel()

	g := graphOf(node(1, StatusPending, 1, []int{99}, 0))

	got := FindNextReady(1, g)

	want := "plan 1 has no dependencies"
	if got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestFindNextReadyLevelOrder(t *testing.T) {
	t.Parallel()

	// Direct dep 2 is blocked; its dep 4 and direct dep 3 are both ready.
	// Level order means 3 (depth 1) wins over 4 (depth 2).
	g := graphOf(
		node(1, StatusPending, 1, []int{2, 3}, 0),
		node(2, StatusPending, 1, []int{4}, 0),
		node(3, StatusPending, 1, nil, 0),
		node(4, StatusPending, 1, nil, 0),
	)

	got := FindNextReady(1, g)

	if got.PlanID != 3 {
		t.Errorf("PlanID = %d, want direct dependency 3 before transitive 4", got.PlanID)
	}
}

func TestDependenciesUnionWithChildren(t *testing.T) {
	t.Parallel()

	// 1 lists [5, 3] explicitly; 2 and 4 are children via parent.
	g := graphOf(
		node(1, StatusPending, 1, []int{5, 3}, 0),
		node(2, StatusPending, 1, nil, 1),
		node(3, StatusDone, 1, nil, 0),
		node(4, StatusPending, 1, nil, 1),
		node(5, StatusDone, 1, nil, 0),
	)

	got := g.Dependencies(1)
	want := []int{5, 3, 2, 4} // explicit order first, then children ascending

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dependencies(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestDependenciesExcludesSelfAndDuplicates(t *testing.T) {
	t.Parallel()

	g := graphOf(
		node(1, StatusPending, 1, []int{1, 2, 2}, 0),
		node(2, StatusPending, 1, nil, 1), // also a child of 1
	)

	got := g.Dependencies(1)
	want := []int{2}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Dependencies(1) mismatch (-want +got):\n%s", diff)
	}
}

func TestIsReadyRequiresChildrenDone(t *testing.T) {
	t.Parallel()

	g := graphOf(
		node(1, StatusPending, 1, nil, 0),
		node(2, StatusPending, 1, nil, 1),
	)

	if g.IsReady(1) {
		t.Error("plan with a pending child must not be ready")
	}

	g.Plans[2].Status = StatusDone

	if !g.IsReady(1) {
		t.Error("plan with all children done should be ready")
	}
}

func TestIsReadyMissingDependencyBlocks(t *testing.T) {
	t.Parallel()

	g := graphOf(node(1, StatusPending, 1, []int{9}, 0))

	if g.IsReady(1) {
		t.Error("a dependency on a missing plan must count as unmet")
	}
}

func TestReadyPlansSortedByPriorityThenID(t *testing.T) {
	t.Parallel()

	p2 := node(2, StatusPending, 1, nil, 0)
	p2.Priority = 1
	p5 := node(5, StatusPending, 1, nil, 0)
	p5.Priority = 3
	p7 := node(7, StatusPending, 1, nil, 0)
	p7.Priority = 1

	g := graphOf(p2, p5, p7, node(9, StatusDone, 1, nil, 0))

	got := ReadyPlans(g)

	var ids []int
	for _, s := range got {
		ids = append(ids, s.ID)
	}

	want := []int{2, 7, 5}

	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("ReadyPlans order mismatch (-want +got):\n%s", diff)
	}
}

// AssertContainsString fails the test if content doesn't contain substr.
func AssertContainsString(t *testing.T, content, substr string) {
	t.Helper()

	if !strings.Contains(content, substr) {
		t.Errorf("content should contain %q\ncontent:\n%s", substr, content)
	}
}
