// Package spec defines an in-memory oracle for tim's observable plan semantics.
//
// This is the source of truth for what correct behavior looks like. If the real
// implementation disagrees with this model, the implementation is wrong. The
// model runs the whole plan lifecycle purely in memory: no YAML files, no
// caching, no filesystem. State-model tests drive the real CLI and this model
// with the same operation stream and compare the outcomes.
//
// Design principles:
//
//   - Simple over performant. The code should be obviously correct by
//     inspection; loop efficiency does not matter at model scale.
//
//   - Explicit over clever. If something is happening, it is visible in the
//     code.
//
//   - No dependencies beyond the standard library.
//
//   - Errors indicate invalid user input that the real implementation also
//     rejects. The model never panics on user input.
//
// Input conventions follow the CLI surface: all mutating methods accept
// struct inputs mirroring the command's arguments and flags, with zero values
// meaning "not specified".
package spec

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrCode is a stable error code for programmatic error handling.
type ErrCode string

const (
	ErrPlanNotFound     ErrCode = "plan_not_found"
	ErrTitleRequired    ErrCode = "title_required"
	ErrInvalidPriority  ErrCode = "invalid_priority"
	ErrInvalidID        ErrCode = "invalid_id"
	ErrParentNotFound   ErrCode = "parent_not_found"
	ErrParentDone       ErrCode = "parent_done"
	ErrDepNotFound      ErrCode = "dep_not_found"
	ErrDuplicateDep     ErrCode = "duplicate_dep"
	ErrNotPending       ErrCode = "not_pending"
	ErrAlreadyDone      ErrCode = "already_done"
	ErrNotInProgress    ErrCode = "not_in_progress"
	ErrNotDone          ErrCode = "not_done"
	ErrSelfDependency   ErrCode = "self_dependency"
	ErrAlreadyDependent ErrCode = "already_dependent"
	ErrNotDependent     ErrCode = "not_dependent"

	// ErrDepTargetMissing is special: the dependency IS recorded, but the
	// real CLI flags it as a warning and exits nonzero. Callers comparing
	// against the CLI must treat this as "state mutated, command failed".
	ErrDepTargetMissing ErrCode = "dep_target_missing"
)

// KV is a key-value pair for error context.
type KV struct {
	K string
	V string
}

// Error is a structured error with a code and context.
// All model methods return *Error (or nil on success).
type Error struct {
	Code    ErrCode
	Context []KV
}

// Error formats the error as logfmt: code=xxx key="value".
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("code=")
	b.WriteString(string(e.Code))

	for _, kv := range e.Context {
		b.WriteString(" ")
		b.WriteString(kv.K)
		b.WriteString("=")
		fmt.Fprintf(&b, "%q", kv.V)
	}

	return b.String()
}

func newErr(code ErrCode, kvs ...KV) *Error {
	return &Error{Code: code, Context: kvs}
}

func kv(k, v string) KV {
	return KV{K: k, V: v}
}

// Status values mirror the plan lifecycle.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// DefaultPriority is applied when a create specifies no priority.
const DefaultPriority = 2

// Plan represents the complete observable state of a single plan.
type Plan struct {
	ID           int
	Title        string
	Goal         string
	Priority     int
	Status       string
	Parent       int // zero if no parent
	Dependencies []int
	TaskCount    int
}

// Model tracks the expected state of all plans, keyed by ID.
type Model struct {
	plans map[int]*Plan
}

// New returns a new empty model.
func New() *Model {
	return &Model{plans: make(map[int]*Plan)}
}

// CreateInput mirrors the create command's arguments and flags.
//
// Zero values mean "not specified": Priority 0 uses DefaultPriority, Parent 0
// means no parent.
type CreateInput struct {
	Title     string
	Goal      string
	Priority  int
	Parent    int
	DependsOn []int
}

// Create validates the input, assigns the smallest unused positive ID, and
// stores a new pending plan with no tasks. Returns the assigned ID.
//
// Returns an error if:
//   - Title is empty or whitespace-only
//   - Priority is non-zero and outside 1-4
//   - Parent is non-zero and missing, or references a done plan
//   - any DependsOn ID is non-positive, missing, or repeated
func (m *Model) Create(in CreateInput) (int, *Error) {
	if strings.TrimSpace(in.Title) == "" {
		return 0, newErr(ErrTitleRequired)
	}

	priority := in.Priority
	if priority == 0 {
		priority = DefaultPriority
	}

	if priority < 1 || priority > 4 {
		return 0, newErr(ErrInvalidPriority, kv("priority", strconv.Itoa(in.Priority)))
	}

	if in.Parent != 0 {
		parent, ok := m.plans[in.Parent]
		if !ok {
			return 0, newErr(ErrParentNotFound, kv("parent", strconv.Itoa(in.Parent)))
		}

		if parent.Status == StatusDone {
			return 0, newErr(ErrParentDone, kv("parent", strconv.Itoa(in.Parent)))
		}
	}

	deps := make([]int, 0, len(in.DependsOn))

	for _, dep := range in.DependsOn {
		if dep <= 0 {
			return 0, newErr(ErrInvalidID, kv("dep", strconv.Itoa(dep)))
		}

		if _, ok := m.plans[dep]; !ok {
			return 0, newErr(ErrDepNotFound, kv("dep", strconv.Itoa(dep)))
		}

		if slices.Contains(deps, dep) {
			return 0, newErr(ErrDuplicateDep, kv("dep", strconv.Itoa(dep)))
		}

		deps = append(deps, dep)
	}

	id := m.nextID()

	m.plans[id] = &Plan{
		ID:           id,
		Title:        in.Title,
		Goal:         in.Goal,
		Priority:     priority,
		Status:       StatusPending,
		Parent:       in.Parent,
		Dependencies: deps,
	}

	return id, nil
}

// nextID returns the smallest unused positive plan ID.
func (m *Model) nextID() int {
	for id := 1; ; id++ {
		if _, used := m.plans[id]; !used {
			return id
		}
	}
}

// Start transitions a plan from pending to in_progress.
func (m *Model) Start(id int) *Error {
	p, err := m.lookup(id)
	if err != nil {
		return err
	}

	if p.Status != StatusPending {
		return newErr(ErrNotPending, kv("id", strconv.Itoa(id)), kv("status", p.Status))
	}

	p.Status = StatusInProgress

	return nil
}

// Done transitions a plan to done. The plan must be in_progress unless force
// is set; a plan that is already done is rejected either way.
func (m *Model) Done(id int, force bool) *Error {
	p, err := m.lookup(id)
	if err != nil {
		return err
	}

	if p.Status == StatusDone {
		return newErr(ErrAlreadyDone, kv("id", strconv.Itoa(id)))
	}

	if p.Status != StatusInProgress && !force {
		return newErr(ErrNotInProgress, kv("id", strconv.Itoa(id)), kv("status", p.Status))
	}

	p.Status = StatusDone

	return nil
}

// Reopen transitions a plan from done back to pending.
func (m *Model) Reopen(id int) *Error {
	p, err := m.lookup(id)
	if err != nil {
		return err
	}

	if p.Status != StatusDone {
		return newErr(ErrNotDone, kv("id", strconv.Itoa(id)), kv("status", p.Status))
	}

	p.Status = StatusPending

	return nil
}

// Dep records that plan id depends on depID.
//
// Self-dependency is checked before existence, matching the CLI. A dependency
// on a plan that does not exist is recorded anyway and ErrDepTargetMissing is
// returned: the state mutates but the command exits nonzero.
func (m *Model) Dep(id, depID int) *Error {
	if id == depID {
		return newErr(ErrSelfDependency, kv("id", strconv.Itoa(id)))
	}

	p, err := m.lookup(id)
	if err != nil {
		return err
	}

	if depID <= 0 {
		return newErr(ErrInvalidID, kv("dep", strconv.Itoa(depID)))
	}

	if slices.Contains(p.Dependencies, depID) {
		return newErr(ErrAlreadyDependent, kv("id", strconv.Itoa(id)), kv("dep", strconv.Itoa(depID)))
	}

	p.Dependencies = append(p.Dependencies, depID)

	if _, ok := m.plans[depID]; !ok {
		return newErr(ErrDepTargetMissing, kv("id", strconv.Itoa(id)), kv("dep", strconv.Itoa(depID)))
	}

	return nil
}

// Undep removes depID from plan id's dependency list.
func (m *Model) Undep(id, depID int) *Error {
	p, err := m.lookup(id)
	if err != nil {
		return err
	}

	idx := slices.Index(p.Dependencies, depID)
	if idx == -1 {
		return newErr(ErrNotDependent, kv("id", strconv.Itoa(id)), kv("dep", strconv.Itoa(depID)))
	}

	p.Dependencies = slices.Delete(p.Dependencies, idx, idx+1)

	return nil
}

// Show returns a copy of the plan state.
func (m *Model) Show(id int) (Plan, *Error) {
	p, err := m.lookup(id)
	if err != nil {
		return Plan{}, err
	}

	return m.clone(p), nil
}

// lookup resolves an ID the way the CLI does: non-positive IDs and unknown
// IDs both fail the command.
func (m *Model) lookup(id int) (*Plan, *Error) {
	if id <= 0 {
		return nil, newErr(ErrInvalidID, kv("id", strconv.Itoa(id)))
	}

	p, ok := m.plans[id]
	if !ok {
		return nil, newErr(ErrPlanNotFound, kv("id", strconv.Itoa(id)))
	}

	return p, nil
}

// IDs returns all known plan IDs in ascending order.
func (m *Model) IDs() []int {
	ids := make([]int, 0, len(m.plans))
	for id := range m.plans {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// Plans returns copies of all plans in ascending ID order, the order the
// real listing uses.
func (m *Model) Plans() []Plan {
	plans := make([]Plan, 0, len(m.plans))

	for _, id := range m.IDs() {
		plans = append(plans, m.clone(m.plans[id]))
	}

	return plans
}

// Ready returns the IDs of plans that are ready to be worked on, sorted by
// priority (ascending) then ID.
//
// A plan is ready if its status is pending, it has at least one task, and
// every direct dependency (explicit list plus children) exists and is done.
// A dependency on a missing plan is unmet.
func (m *Model) Ready() []int {
	var ready []Plan

	for _, id := range m.IDs() {
		p := m.plans[id]
		if m.isReady(p) {
			ready = append(ready, *p)
		}
	}

	slices.SortStableFunc(ready, func(a, b Plan) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}

		return a.ID - b.ID
	})

	ids := make([]int, 0, len(ready))
	for _, p := range ready {
		ids = append(ids, p.ID)
	}

	return ids
}

func (m *Model) isReady(p *Plan) bool {
	if p.Status != StatusPending || p.TaskCount == 0 {
		return false
	}

	for _, dep := range m.directDeps(p) {
		target, ok := m.plans[dep]
		if !ok || target.Status != StatusDone {
			return false
		}
	}

	return true
}

// directDeps unions the explicit dependency list with implicit children
// (plans whose Parent is p.ID), excluding self-references and duplicates.
func (m *Model) directDeps(p *Plan) []int {
	var deps []int

	seen := map[int]bool{p.ID: true}

	for _, dep := range p.Dependencies {
		if !seen[dep] {
			seen[dep] = true
			deps = append(deps, dep)
		}
	}

	for _, id := range m.IDs() {
		if m.plans[id].Parent == p.ID && !seen[id] {
			seen[id] = true
			deps = append(deps, id)
		}
	}

	return deps
}

func (m *Model) clone(p *Plan) Plan {
	cp := *p
	cp.Dependencies = slices.Clone(p.Dependencies)

	return cp
}
