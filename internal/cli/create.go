package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

var (
	errTitleRequired = errors.New("title is required (pass it as an argument, -t, or use -i)")
	errEmptyValue    = errors.New("empty value not allowed")
	errPromptAborted = errors.New("prompt aborted")
)

// CreateCmd returns the create command.
func CreateCmd(cfg *plan.Config, env map[string]string) *Command {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.StringP("title", "t", "", "Plan title")
	fs.StringP("goal", "g", "", "Goal text")
	fs.StringP("details", "d", "", "Details body (markdown)")
	fs.IntP("priority", "p", plan.DefaultPriority, "Priority 1-4 (1=most urgent)")
	fs.Int("parent", 0, "Parent plan ID")
	fs.IntSlice("depends-on", nil, "Dependency plan ID (repeatable)")
	fs.Bool("edit", false, "Open the new plan in your editor")
	fs.BoolP("interactive", "i", false, "Prompt for missing title/goal")

	return &Command{
		Flags: fs,
		Usage: "create [<title>] [flags]",
		Short: "Create plan, prints ID",
		Long: `Create a new plan. Prints the plan ID on success.

If --parent is specified, the parent plan must exist and not be done.
Dependencies passed via --depends-on must exist. A new plan starts as
pending with no tasks; it will not show up as ready until it has at
least one task.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execCreate(io, cfg, fs, args, env)
		},
	}
}

func execCreate(io *IO, cfg *plan.Config, fs *flag.FlagSet, args []string, env map[string]string) error {
	title, _ := fs.GetString("title")
	if title == "" && len(args) > 0 {
		title = args[0]
	}

	goal, _ := fs.GetString("goal")
	interactive, _ := fs.GetBool("interactive")

	if interactive {
		var err error

		title, goal, err = promptMissing(title, goal)
		if err != nil {
			return err
		}
	}

	if strings.TrimSpace(title) == "" {
		return errTitleRequired
	}

	for _, name := range []string{"title", "goal", "details"} {
		v, _ := fs.GetString(name)
		if fs.Changed(name) && v == "" {
			return fmt.Errorf("%w: --%s", errEmptyValue, name)
		}
	}

	priority, _ := fs.GetInt("priority")
	if !plan.IsValidPriority(priority) {
		return plan.ErrPriorityInvalid
	}

	parent, _ := fs.GetInt("parent")
	if parent != 0 {
		if err := checkParent(cfg.PlanDirAbs, parent); err != nil {
			return err
		}
	}

	dependsOn, _ := fs.GetIntSlice("depends-on")
	deps := make([]int, 0, len(dependsOn))
	seen := make(map[int]bool)

	for _, dep := range dependsOn {
		if dep <= 0 {
			return fmt.Errorf("%w: %d", plan.ErrInvalidID, dep)
		}

		if !plan.Exists(cfg.PlanDirAbs, dep) {
			return fmt.Errorf("%w: %d", plan.ErrPlanNotFound, dep)
		}

		if seen[dep] {
			return fmt.Errorf("duplicate dependency: %d", dep)
		}

		seen[dep] = true
		deps = append(deps, dep)
	}

	details, _ := fs.GetString("details")
	now := time.Now()

	p := plan.Plan{
		SchemaVersion: plan.CurrentSchemaVersion,
		Title:         title,
		Goal:          goal,
		Status:        plan.StatusPending,
		Priority:      priority,
		Dependencies:  deps,
		Parent:        parent,
		Details:       details,
		Created:       now,
		Updated:       now,
	}

	planID, planPath, err := plan.CreatePlan(cfg.PlanDirAbs, &p)
	if err != nil {
		return fmt.Errorf("create plan: %w", err)
	}

	io.Println(planID)

	if edit, _ := fs.GetBool("edit"); edit {
		editor, err := resolveEditor(*cfg, env)
		if err != nil {
			return err
		}

		return runEditor(editor, planPath)
	}

	return nil
}

func checkParent(planDir string, parent int) error {
	path, err := plan.FindPath(planDir, parent)
	if err != nil {
		if errors.Is(err, plan.ErrPlanNotFound) {
			return fmt.Errorf("%w: %d", plan.ErrParentNotFound, parent)
		}

		return err
	}

	parentPlan, err := plan.ReadPlan(path)
	if err != nil {
		return fmt.Errorf("reading parent: %w", err)
	}

	if parentPlan.Status == plan.StatusDone {
		return fmt.Errorf("%w: %d", plan.ErrParentDone, parent)
	}

	return nil
}

// promptMissing asks for the title and goal on the terminal when they were
// not supplied. Only used with -i; scripted callers pass flags.
func promptMissing(title, goal string) (string, string, error) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	var err error

	if title == "" {
		title, err = prompt(line, "Title: ")
		if err != nil {
			return "", "", err
		}
	}

	if goal == "" {
		goal, err = prompt(line, "Goal (optional): ")
		if err != nil {
			return "", "", err
		}
	}

	return title, goal, nil
}

func prompt(line *liner.State, label string) (string, error) {
	value, err := line.Prompt(label)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", errPromptAborted
		}

		return "", fmt.Errorf("read prompt: %w", err)
	}

	return strings.TrimSpace(value), nil
}
