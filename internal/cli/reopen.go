package cli

import (
	"context"
	"fmt"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// ReopenCmd returns the reopen command.
func ReopenCmd(cfg *plan.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("reopen", flag.ContinueOnError),
		Usage: "reopen <id>",
		Short: "Set a done plan back to pending",
		Long: `Reopen a done plan: status goes back to pending. Task and step
completion flags are left untouched so partial progress is preserved.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execReopen(io, cfg, args)
		},
	}
}

func execReopen(io *IO, cfg *plan.Config, args []string) error {
	planID, err := parseID(args)
	if err != nil {
		return err
	}

	path, err := plan.FindPath(cfg.PlanDirAbs, planID)
	if err != nil {
		return err
	}

	_, err = plan.UpdatePlan(path, func(p *plan.Plan) error {
		if p.Status != plan.StatusDone {
			return fmt.Errorf("%w (current status: %s)", plan.ErrPlanNotDone, p.Status)
		}

		p.Status = plan.StatusPending

		return nil
	})
	if err != nil {
		return err
	}

	io.Println("Reopened", planID)

	return nil
}
