package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

const (
	fieldID       = "id"
	fieldPriority = "priority"
	fieldStatus   = "status"
	fieldTitle    = "title"
	fieldParent   = "parent"
	fieldCreated  = "created"
)

var errInvalidField = errors.New("invalid field (valid: id, priority, status, title, parent, created)")

// ReadyCmd returns the ready command.
func ReadyCmd(cfg *plan.Config) *Command {
	fs := flag.NewFlagSet("ready", flag.ContinueOnError)
	fs.Bool("json", false, "Output as JSON array")
	fs.Int("limit", 0, "Maximum plans to show (0 = no limit)")
	fs.String("field", "", "Output only this field (id|priority|status|title|parent|created)")

	return &Command{
		Flags: fs,
		Usage: "ready [flags]",
		Short: "List actionable plans (pending, deps done)",
		Long: `List plans that can be worked on now.

A plan is ready if:
  - Status is pending
  - It has at least one task
  - All dependencies (explicit deps and children) are done

Output sorted by priority (P1 first), then by ID.

Examples:
  tim ready                          # List all ready plans
  tim ready --limit 1                # Show only the top priority plan
  tim ready --field id --limit 1     # Get just the ID of the top plan
  tim ready --json                   # Output as JSON array

  # Start the highest priority ready plan:
  tim start $(tim ready --field id --limit 1)`,
		Exec: func(_ context.Context, io *IO, _ []string) error {
			jsonOutput, _ := fs.GetBool("json")
			limit, _ := fs.GetInt("limit")
			field, _ := fs.GetString("field")

			return execReady(io, cfg, jsonOutput, limit, field)
		},
	}
}

func execReady(io *IO, cfg *plan.Config, jsonOutput bool, limit int, field string) error {
	if field != "" && !isValidReadyField(field) {
		return errInvalidField
	}

	plans, warnings, err := plan.LoadGraph(cfg.PlanDirAbs)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}

	for _, w := range warnings {
		io.WarnLLM(w.Issue, w.Action)
	}

	ready := plan.ReadyPlans(plan.NewGraph(plans))

	if limit > 0 && len(ready) > limit {
		ready = ready[:limit]
	}

	if jsonOutput {
		if field != "" {
			return outputReadyFieldJSON(io, ready, field)
		}

		return outputSummariesJSON(io, ready)
	}

	if len(ready) == 0 {
		io.ErrPrintln("no plans ready for pickup")

		return nil
	}

	if field != "" {
		for _, summary := range ready {
			io.Println(getFieldValue(summary, field))
		}

		return nil
	}

	for _, summary := range ready {
		io.Println(formatPlanLine(summary))
	}

	return nil
}

func isValidReadyField(field string) bool {
	switch field {
	case fieldID, fieldPriority, fieldStatus, fieldTitle, fieldParent, fieldCreated:
		return true
	default:
		return false
	}
}

func getFieldValue(summary *plan.Summary, field string) string {
	switch field {
	case fieldID:
		return strconv.Itoa(summary.ID)
	case fieldPriority:
		return strconv.Itoa(summary.Priority)
	case fieldStatus:
		return summary.Status
	case fieldTitle:
		return summary.Title
	case fieldParent:
		return strconv.Itoa(summary.Parent)
	case fieldCreated:
		return summary.Created
	default:
		return ""
	}
}

func outputReadyFieldJSON(io *IO, ready []*plan.Summary, field string) error {
	values := make([]any, 0, len(ready))

	for _, summary := range ready {
		switch field {
		case fieldID:
			values = append(values, summary.ID)
		case fieldPriority:
			values = append(values, summary.Priority)
		case fieldParent:
			values = append(values, summary.Parent)
		default:
			values = append(values, getFieldValue(summary, field))
		}
	}

	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	io.Println(string(data))

	return nil
}
