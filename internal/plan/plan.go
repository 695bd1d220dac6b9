// Package plan implements the plan file store for tim: one plan per file,
// markdown with YAML frontmatter (or bare YAML), with dependency links
// between plans and a readiness computation over the resulting graph.
package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// Plan represents a plan with all its fields.
type Plan struct {
	SchemaVersion int       `yaml:"schema_version"`
	ID            int       `yaml:"id"`
	Title         string    `yaml:"title"`
	Goal          string    `yaml:"goal,omitempty"`
	Status        string    `yaml:"status"`
	Priority      int       `yaml:"priority"`
	Dependencies  []int     `yaml:"dependencies,omitempty"`
	Parent        int       `yaml:"parent,omitempty"`
	Tasks         []Task    `yaml:"tasks,omitempty"`
	Created       time.Time `yaml:"created"`
	Updated       time.Time `yaml:"updated"`

	// Details is the markdown body after the frontmatter. For bare-YAML
	// plan files it comes from a "details" key instead.
	Details string `yaml:"-"`
}

// Task is a unit of work inside a plan.
type Task struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Steps       []Step `yaml:"steps,omitempty"`
	Done        bool   `yaml:"done,omitempty"`
}

// Step is a single executor prompt inside a task.
type Step struct {
	Prompt string `yaml:"prompt"`
	Done   bool   `yaml:"done,omitempty"`
}

// CurrentSchemaVersion is written to new plan files.
const CurrentSchemaVersion = 1

// Priority bounds.
const (
	MinPriority     = 1
	MaxPriority     = 4
	DefaultPriority = 2

	dirPerms  = 0o750
	filePerms = 0o600
)

// validStatuses are the allowed plan statuses.
var validStatuses = []string{StatusPending, StatusInProgress, StatusDone}

// IsValidStatus checks if the status is valid.
func IsValidStatus(status string) bool {
	return slices.Contains(validStatuses, status)
}

// IsValidPriority checks if priority is in valid range.
func IsValidPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}

// Validate checks the structural invariants of a plan before writing.
func (p *Plan) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidID
	}

	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleEmpty
	}

	if !IsValidStatus(p.Status) {
		return fmt.Errorf("%w: %s", ErrStatusInvalid, p.Status)
	}

	if !IsValidPriority(p.Priority) {
		return ErrPriorityInvalid
	}

	return nil
}

// slugRe strips everything that is not allowed in a filename slug.
var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugLen = 40

// Slug derives the filename slug from a plan title.
// "Add retry logic!" becomes "add-retry-logic".
func Slug(title string) string {
	slug := slugRe.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")

	if len(slug) > maxSlugLen {
		slug = strings.Trim(slug[:maxSlugLen], "-")
	}

	if slug == "" {
		slug = "plan"
	}

	return slug
}

// Filename returns the canonical filename for a plan: "<id>-<slug>.plan.md".
func Filename(id int, title string) string {
	return strconv.Itoa(id) + "-" + Slug(title) + ".plan.md"
}

// planFileID extracts the plan ID from a filename, or 0 if the name does not
// look like a plan file. Accepted forms: "<id>-<slug>.plan.md", "<id>.plan.md",
// "<id>.yml", "<id>.yaml".
func planFileID(name string) int {
	var idPart string

	switch {
	case strings.HasSuffix(name, ".plan.md"):
		idPart = strings.TrimSuffix(name, ".plan.md")
		if idx := strings.IndexByte(idPart, '-'); idx >= 0 {
			idPart = idPart[:idx]
		}
	case strings.HasSuffix(name, ".yml"):
		idPart = strings.TrimSuffix(name, ".yml")
	case strings.HasSuffix(name, ".yaml"):
		idPart = strings.TrimSuffix(name, ".yaml")
	default:
		return 0
	}

	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0
	}

	return id
}

// IsPlanFile reports whether a directory entry name looks like a plan file.
func IsPlanFile(name string) bool {
	return planFileID(name) != 0
}

// FindPath locates the file for a plan ID in the plan directory.
// Returns ErrPlanNotFound if no file matches.
func FindPath(planDir string, id int) (string, error) {
	entries, err := os.ReadDir(planDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %d", ErrPlanNotFound, id)
		}

		return "", fmt.Errorf("reading plan directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if planFileID(entry.Name()) == id {
			return filepath.Join(planDir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("%w: %d", ErrPlanNotFound, id)
}

// Exists checks if a plan ID exists in the plan directory.
func Exists(planDir string, id int) bool {
	_, err := FindPath(planDir, id)

	return err == nil
}

// NextID returns the smallest unused positive plan ID in the directory.
func NextID(planDir string) (int, error) {
	entries, err := os.ReadDir(planDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}

		return 0, fmt.Errorf("reading plan directory: %w", err)
	}

	used := make(map[int]bool)

	for _, entry := range entries {
		if id := planFileID(entry.Name()); id != 0 {
			used[id] = true
		}
	}

	next := 1
	for used[next] {
		next++
	}

	return next, nil
}

// WritePlan writes a new plan to the plan directory.
// Returns the full path of the created file.
func WritePlan(planDir string, p *Plan) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	mkdirErr := os.MkdirAll(planDir, dirPerms)
	if mkdirErr != nil {
		return "", fmt.Errorf("creating plan directory: %w", mkdirErr)
	}

	if Exists(planDir, p.ID) {
		return "", fmt.Errorf("%w: %d", ErrPlanFileExists, p.ID)
	}

	path := filepath.Join(planDir, Filename(p.ID, p.Title))

	content, err := Format(p)
	if err != nil {
		return "", err
	}

	writeErr := atomic.WriteFile(path, strings.NewReader(content))
	if writeErr != nil {
		return "", fmt.Errorf("writing plan file: %w", writeErr)
	}

	// Set file permissions (atomic.WriteFile doesn't set them for new files)
	chmodErr := os.Chmod(path, filePerms)
	if chmodErr != nil {
		return "", fmt.Errorf("setting file permissions: %w", chmodErr)
	}

	return path, nil
}

// CreatePlan allocates the next free ID and writes the plan atomically.
// Uses file locking to serialize concurrent creates in the same directory.
// Returns the assigned ID and file path.
func CreatePlan(planDir string, p *Plan) (int, string, error) {
	mkdirErr := os.MkdirAll(planDir, dirPerms)
	if mkdirErr != nil {
		return 0, "", fmt.Errorf("creating plan directory: %w", mkdirErr)
	}

	lockPath := filepath.Join(planDir, "create")

	var planPath string

	lockErr := WithLock(lockPath, func() error {
		id, idErr := NextID(planDir)
		if idErr != nil {
			return idErr
		}

		p.ID = id

		var writeErr error

		planPath, writeErr = WritePlan(planDir, p)

		return writeErr
	})
	if lockErr != nil {
		return 0, "", lockErr
	}

	return p.ID, planPath, nil
}

// ReadPlan reads and parses a plan file.
func ReadPlan(path string) (*Plan, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	p, parseErr := Parse(path, content)
	if parseErr != nil {
		return nil, parseErr
	}

	return p, nil
}

// UpdatePlan applies mutate to a plan file under its file lock and rewrites
// it atomically. The updated timestamp is bumped on success.
func UpdatePlan(path string, mutate func(p *Plan) error) (*Plan, error) {
	var updated *Plan

	err := WithLock(path, func() error {
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading plan: %w", readErr)
		}

		p, parseErr := Parse(path, content)
		if parseErr != nil {
			return parseErr
		}

		if mutateErr := mutate(p); mutateErr != nil {
			return mutateErr // check failed, no write
		}

		p.Updated = time.Now().UTC().Truncate(time.Second)

		formatted, fmtErr := Format(p)
		if fmtErr != nil {
			return fmtErr
		}

		writeErr := atomic.WriteFile(path, strings.NewReader(formatted))
		if writeErr != nil {
			return fmt.Errorf("writing plan: %w", writeErr)
		}

		updated = p

		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// ReadRaw reads and returns the raw contents of a plan file.
func ReadRaw(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading plan: %w", err)
	}

	return string(content), nil
}
