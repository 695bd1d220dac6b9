package plan

import (
	"fmt"
	"slices"
)

// Graph is an ID-keyed view of a plan directory with the implicit
// parent->child edges indexed. Edges are computed on the fly from the
// summaries; nothing is stored bidirectionally.
type Graph struct {
	Plans    map[int]*Summary
	children map[int][]int
}

// NewGraph indexes the implicit child edges of a plan map.
func NewGraph(plans map[int]*Summary) *Graph {
	children := make(map[int][]int)

	for id, s := range plans {
		if s.Parent != 0 && s.Parent != id {
			children[s.Parent] = append(children[s.Parent], id)
		}
	}

	// Deterministic sibling order.
	for parent := range children {
		slices.Sort(children[parent])
	}

	return &Graph{Plans: plans, children: children}
}

// Dependencies returns the direct dependencies of a plan: the union of its
// explicit dependencies list and its children, excluding self-references
// and duplicates. Explicit dependencies keep their listed order and come
// before children.
func (g *Graph) Dependencies(id int) []int {
	s, ok := g.Plans[id]
	if !ok {
		return nil
	}

	seen := map[int]bool{id: true}

	var deps []int

	for _, dep := range s.Dependencies {
		if !seen[dep] {
			seen[dep] = true

			deps = append(deps, dep)
		}
	}

	for _, child := range g.children[id] {
		if !seen[child] {
			seen[child] = true

			deps = append(deps, child)
		}
	}

	return deps
}

// depsDone reports whether every direct dependency of a plan exists and has
// status done. A reference to a missing plan counts as unmet.
func (g *Graph) depsDone(id int) bool {
	for _, dep := range g.Dependencies(id) {
		s, ok := g.Plans[dep]
		if !ok || s.Status != StatusDone {
			return false
		}
	}

	return true
}

// IsReady reports whether a plan is eligible to be worked on next: status
// pending, at least one task, and all direct dependencies done.
// A pending plan with zero tasks is never ready.
func (g *Graph) IsReady(id int) bool {
	s, ok := g.Plans[id]
	if !ok {
		return false
	}

	return s.Status == StatusPending && s.TaskCount > 0 && g.depsDone(id)
}

// TraverseResult is the outcome of a readiness traversal. When Found is
// false, Message explains why nothing was returned.
type TraverseResult struct {
	PlanID  int    `json:"plan_id,omitempty"`
	Found   bool   `json:"found"`
	Message string `json:"message"`
}

// FindNextReady performs a breadth-first search from startID over the
// dependency graph and returns the first dependency that is immediately
// actionable: an in_progress plan wins as soon as it is seen (it is already
// being worked), otherwise the first ready pending plan in level order.
// Done plans are skipped but traversed through so their own dependencies are
// still considered. A visited set bounds cycles; the search never loops.
func FindNextReady(startID int, g *Graph) TraverseResult {
	start, ok := g.Plans[startID]
	if !ok {
		return TraverseResult{Message: fmt.Sprintf("plan %d not found", startID)}
	}

	visited := map[int]bool{startID: true}
	queue := []int{startID}
	sawAny := false

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		for _, dep := range g.Dependencies(node) {
			if visited[dep] {
				continue
			}

			visited[dep] = true

			s, exists := g.Plans[dep]
			if !exists {
				// Dangling reference: nothing to do here or below it.
				continue
			}

			sawAny = true

			switch {
			case s.Status == StatusInProgress:
				return TraverseResult{
					PlanID:  dep,
					Found:   true,
					Message: fmt.Sprintf("plan %d is in progress: %s", dep, s.Title),
				}
			case s.Status == StatusPending && s.TaskCount > 0 && g.depsDone(dep):
				return TraverseResult{
					PlanID:  dep,
					Found:   true,
					Message: fmt.Sprintf("plan %d is ready: %s", dep, s.Title),
				}
			default:
				// Done plans are already satisfied; pending-but-blocked
				// plans may still lead to something actionable. Either way
				// keep traversing through them.
				queue = append(queue, dep)
			}
		}
	}

	if !sawAny {
		return TraverseResult{Message: fmt.Sprintf("plan %d has no dependencies", start.ID)}
	}

	return TraverseResult{Message: fmt.Sprintf("no ready dependency found for plan %d", startID)}
}

// TraverseDependencies loads the plan directory and finds the next
// actionable dependency of startID. A missing or empty directory yields a
// not-found result, not an error; only an unreadable directory errors.
func TraverseDependencies(startID int, planDir string) (TraverseResult, []Warning, error) {
	plans, warnings, err := LoadGraph(planDir)
	if err != nil {
		return TraverseResult{}, nil, err
	}

	return FindNextReady(startID, NewGraph(plans)), warnings, nil
}

// ReadyPlans returns every plan satisfying the readiness predicate, sorted
// by priority (P1 first) then by ID.
func ReadyPlans(g *Graph) []*Summary {
	var ready []*Summary

	for id, s := range g.Plans {
		if g.IsReady(id) {
			ready = append(ready, s)
		}
	}

	slices.SortFunc(ready, func(a, b *Summary) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}

		return a.ID - b.ID
	})

	return ready
}
