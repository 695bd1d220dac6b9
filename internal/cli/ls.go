package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// LsCmd returns the ls command.
func LsCmd(cfg *plan.Config) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.String("status", "", "Filter by status (pending|in_progress|done)")
	fs.Int("priority", 0, "Filter by priority 1-4")
	fs.Int("parent", 0, "Only children of this plan")
	fs.Bool("roots", false, "Only plans without a parent")
	fs.Int("limit", 0, "Maximum plans to show (0 = no limit)")
	fs.Int("offset", 0, "Skip the first N matching plans")
	fs.Bool("json", false, "Output as JSON array")

	return &Command{
		Flags: fs,
		Usage: "ls [flags]",
		Short: "List plans",
		Long: `List plans sorted by ID.

Unreadable plan files are reported as warnings and do not abort the
listing.`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execLs(io, cfg, fs)
		},
	}
}

func execLs(io *IO, cfg *plan.Config, fs *flag.FlagSet) error {
	status, _ := fs.GetString("status")
	if status != "" && !plan.IsValidStatus(status) {
		return fmt.Errorf("%w: %s", plan.ErrStatusInvalid, status)
	}

	priority, _ := fs.GetInt("priority")
	if priority != 0 && !plan.IsValidPriority(priority) {
		return plan.ErrPriorityInvalid
	}

	parent, _ := fs.GetInt("parent")
	roots, _ := fs.GetBool("roots")
	limit, _ := fs.GetInt("limit")
	offset, _ := fs.GetInt("offset")

	results, err := plan.ListPlans(cfg.PlanDirAbs, plan.ListOptions{
		Status:    status,
		Priority:  priority,
		Parent:    parent,
		RootsOnly: roots,
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		return err
	}

	summaries := make([]*plan.Summary, 0, len(results))

	for _, result := range results {
		if result.Err != nil {
			io.WarnLLM(
				fmt.Sprintf("%s: %v", result.Path, result.Err),
				"fix the plan file or delete it if invalid",
			)

			continue
		}

		summaries = append(summaries, result.Summary)
	}

	if jsonOutput, _ := fs.GetBool("json"); jsonOutput {
		return outputSummariesJSON(io, summaries)
	}

	if len(summaries) == 0 {
		io.ErrPrintln("no plans found")

		return nil
	}

	for _, summary := range summaries {
		io.Println(formatPlanLine(summary))
	}

	return nil
}

func formatPlanLine(summary *plan.Summary) string {
	var builder strings.Builder

	builder.WriteString(strconv.Itoa(summary.ID))
	builder.WriteString("  [P")
	builder.WriteString(strconv.Itoa(summary.Priority))
	builder.WriteString("][")
	builder.WriteString(summary.Status)
	builder.WriteString("] - ")
	builder.WriteString(summary.Title)

	if summary.TaskCount > 0 {
		fmt.Fprintf(&builder, " (%d/%d tasks)", summary.TasksDone, summary.TaskCount)
	}

	if len(summary.Dependencies) > 0 {
		deps := make([]string, len(summary.Dependencies))
		for i, dep := range summary.Dependencies {
			deps[i] = strconv.Itoa(dep)
		}

		fmt.Fprintf(&builder, " (deps: %s)", strings.Join(deps, ","))
	}

	if summary.Parent != 0 {
		fmt.Fprintf(&builder, " (parent: %d)", summary.Parent)
	}

	return builder.String()
}

// summaryJSON is the JSON representation of a plan summary.
type summaryJSON struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Priority     int    `json:"priority"`
	Dependencies []int  `json:"dependencies"`
	Parent       int    `json:"parent,omitempty"`
	TaskCount    int    `json:"task_count"`
	TasksDone    int    `json:"tasks_done"`
	Created      string `json:"created,omitempty"`
}

func outputSummariesJSON(io *IO, summaries []*plan.Summary) error {
	out := make([]summaryJSON, 0, len(summaries))

	for _, summary := range summaries {
		deps := summary.Dependencies
		if deps == nil {
			deps = []int{}
		}

		out = append(out, summaryJSON{
			ID:           summary.ID,
			Title:        summary.Title,
			Status:       summary.Status,
			Priority:     summary.Priority,
			Dependencies: deps,
			Parent:       summary.Parent,
			TaskCount:    summary.TaskCount,
			TasksDone:    summary.TasksDone,
			Created:      summary.Created,
		})
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	io.Println(string(data))

	return nil
}
