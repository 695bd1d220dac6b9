package cli

import (
	"context"
	"fmt"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// StartCmd returns the start command.
func StartCmd(cfg *plan.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("start", flag.ContinueOnError),
		Usage: "start <id>",
		Short: "Set status to in_progress",
		Long:  "Set plan status to in_progress. Only works on pending plans.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execStart(io, cfg, args)
		},
	}
}

func execStart(io *IO, cfg *plan.Config, args []string) error {
	planID, err := parseID(args)
	if err != nil {
		return err
	}

	path, err := plan.FindPath(cfg.PlanDirAbs, planID)
	if err != nil {
		return err
	}

	// Check status and transition atomically under the plan's file lock.
	_, err = plan.UpdatePlan(path, func(p *plan.Plan) error {
		if p.Status != plan.StatusPending {
			return fmt.Errorf("%w (current status: %s)", plan.ErrPlanNotPending, p.Status)
		}

		p.Status = plan.StatusInProgress

		return nil
	})
	if err != nil {
		return err
	}

	io.Println("Started", planID)

	return nil
}
