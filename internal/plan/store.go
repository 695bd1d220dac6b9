package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Summary contains the fields needed for listing and graph traversal,
// without the markdown body.
type Summary struct {
	ID           int
	Title        string
	Status       string
	Priority     int
	Dependencies []int
	Parent       int // 0 if no parent
	TaskCount    int
	TasksDone    int
	Created      string // RFC3339, kept as string for display
	Path         string
}

// Summarize extracts a summary from a parsed plan.
func Summarize(p *Plan, path string) Summary {
	done := 0

	for _, task := range p.Tasks {
		if task.Done {
			done++
		}
	}

	created := ""
	if !p.Created.IsZero() {
		created = p.Created.UTC().Format(time.RFC3339)
	}

	return Summary{
		ID:           p.ID,
		Title:        p.Title,
		Status:       p.Status,
		Priority:     p.Priority,
		Dependencies: slices.Clone(p.Dependencies),
		Parent:       p.Parent,
		TaskCount:    len(p.Tasks),
		TasksDone:    done,
		Created:      created,
		Path:         path,
	}
}

// Result holds the result of parsing a single plan file.
type Result struct {
	Summary *Summary
	Path    string
	Err     error
}

// ListOptions configures ListPlans behavior.
type ListOptions struct {
	Status    string // filter by status ("" = all)
	Priority  int    // filter by priority (0 = all)
	Parent    int    // filter by parent ID (0 = all)
	RootsOnly bool   // only plans without parent
	Limit     int    // max plans to return (0 = no limit)
	Offset    int    // skip first N matching plans
}

// ListPlans reads all plan files from a directory and returns parsed
// summaries sorted by ID. Uses parallel file reading with an mtime-based
// summary cache. Returns (nil, err) if the directory cannot be read.
// Returns (results, nil) if the directory was read - individual results may
// carry errors.
func ListPlans(planDir string, opts ListOptions) ([]Result, error) {
	results, err := readAllPlans(planDir)
	if err != nil {
		return nil, err
	}

	return filterResults(results, opts)
}

// readAllPlans parses every plan file in the directory, consulting and
// refreshing the summary cache.
func readAllPlans(planDir string) ([]Result, error) {
	entries, err := os.ReadDir(planDir)
	if os.IsNotExist(err) {
		// Directory doesn't exist = no plans.
		return []Result{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading plan directory: %w", err)
	}

	cache, cacheErr := LoadCache(planDir)
	if cacheErr != nil {
		// Cache missing, corrupt, or version mismatch - start fresh.
		cache = NewCache()
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !IsPlanFile(entry.Name()) {
			continue
		}

		names = append(names, entry.Name())
	}

	results := make([]Result, len(names))

	var (
		waitGroup sync.WaitGroup
		cacheMu   sync.Mutex
	)

	for idx, name := range names {
		waitGroup.Add(1)

		go func(idx int, name string) {
			defer waitGroup.Done()

			path := filepath.Join(planDir, name)

			info, infoErr := os.Stat(path)
			if infoErr != nil {
				results[idx] = Result{Path: path, Err: infoErr}

				return
			}

			mtime := info.ModTime()

			cacheMu.Lock()
			cached := cache.Lookup(name, mtime)
			cacheMu.Unlock()

			if cached != nil {
				summary := *cached
				summary.Path = path
				results[idx] = Result{Path: path, Summary: &summary}

				return
			}

			p, parseErr := ReadPlan(path)
			if parseErr != nil {
				results[idx] = Result{Path: path, Err: parseErr}

				return
			}

			summary := Summarize(p, path)
			results[idx] = Result{Path: path, Summary: &summary}

			cacheMu.Lock()
			cache.Update(name, mtime, summary)
			cacheMu.Unlock()
		}(idx, name)
	}

	waitGroup.Wait()

	cache.Prune(names)

	if cache.Dirty() {
		// Best effort: a failed cache write never fails the listing.
		_ = SaveCache(planDir, cache)
	}

	slices.SortFunc(results, func(a, b Result) int {
		switch {
		case a.Summary == nil && b.Summary == nil:
			return strings.Compare(a.Path, b.Path)
		case a.Summary == nil:
			return 1
		case b.Summary == nil:
			return -1
		default:
			// Duplicate IDs fall back to path order so the first file in
			// directory order deterministically wins in LoadGraph.
			if c := a.Summary.ID - b.Summary.ID; c != 0 {
				return c
			}

			return strings.Compare(a.Path, b.Path)
		}
	})

	return results, nil
}

// filterResults applies list filters, keeping parse errors as warnings
// regardless of pagination.
func filterResults(results []Result, opts ListOptions) ([]Result, error) {
	filtered := make([]Result, 0, len(results))
	matched := 0

	for _, result := range results {
		if result.Err != nil {
			// Always include parse errors as warnings.
			filtered = append(filtered, result)

			continue
		}

		s := result.Summary

		if opts.Status != "" && s.Status != opts.Status {
			continue
		}

		if opts.Priority != 0 && s.Priority != opts.Priority {
			continue
		}

		if opts.Parent != 0 && s.Parent != opts.Parent {
			continue
		}

		if opts.RootsOnly && s.Parent != 0 {
			continue
		}

		matched++

		if matched <= opts.Offset {
			continue
		}

		if opts.Limit > 0 && matched > opts.Offset+opts.Limit {
			continue
		}

		filtered = append(filtered, result)
	}

	if opts.Offset > 0 && matched > 0 && matched <= opts.Offset {
		return nil, ErrOffsetOutOfBounds
	}

	return filtered, nil
}

// LoadGraph loads every plan in the directory into an ID-keyed map.
// Per-file parse errors and duplicate IDs become warnings; the first file in
// directory order wins a duplicate ID.
func LoadGraph(planDir string) (map[int]*Summary, []Warning, error) {
	results, err := readAllPlans(planDir)
	if err != nil {
		return nil, nil, err
	}

	plans := make(map[int]*Summary, len(results))

	var warnings []Warning

	for _, result := range results {
		if result.Err != nil {
			warnings = append(warnings, Warning{
				Issue:  fmt.Sprintf("%s: %v", result.Path, result.Err),
				Action: "fix the plan file or delete it if invalid",
			})

			continue
		}

		s := result.Summary

		if existing, dup := plans[s.ID]; dup {
			warnings = append(warnings, Warning{
				Issue:  fmt.Sprintf("%s: %v %d (already used by %s)", s.Path, ErrDuplicateID, s.ID, existing.Path),
				Action: "renumber one of the plan files",
			})

			continue
		}

		plans[s.ID] = s
	}

	return plans, warnings, nil
}

// Warning is an actionable problem surfaced while reading the plan
// directory. Warnings never abort an operation.
type Warning struct {
	Issue  string
	Action string
}
