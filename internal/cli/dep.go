package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// DepCmd returns the dep command.
func DepCmd(cfg *plan.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("dep", flag.ContinueOnError),
		Usage: "dep <id> <dep-id>",
		Short: "Add a dependency to a plan",
		Long: `Make plan <id> depend on plan <dep-id>. The plan cannot depend on
itself. A dependency on a plan that does not exist yet is recorded but
flagged as a warning.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execDep(io, cfg, args)
		},
	}
}

func execDep(io *IO, cfg *plan.Config, args []string) error {
	planID, depID, err := parseDepArgs(args)
	if err != nil {
		return err
	}

	if planID == depID {
		return fmt.Errorf("%w: %d", plan.ErrCannotDependOnSelf, planID)
	}

	path, err := plan.FindPath(cfg.PlanDirAbs, planID)
	if err != nil {
		return err
	}

	_, err = plan.UpdatePlan(path, func(p *plan.Plan) error {
		if slices.Contains(p.Dependencies, depID) {
			return fmt.Errorf("%w: %d", plan.ErrAlreadyDependentOn, depID)
		}

		p.Dependencies = append(p.Dependencies, depID)

		return nil
	})
	if err != nil {
		return err
	}

	if !plan.Exists(cfg.PlanDirAbs, depID) {
		io.WarnLLM(
			fmt.Sprintf("plan %d now depends on non-existent plan %d", planID, depID),
			"create the missing plan or remove the dependency with undep",
		)
	}

	io.Println(fmt.Sprintf("plan %d now depends on %d", planID, depID))

	return nil
}

// UndepCmd returns the undep command.
func UndepCmd(cfg *plan.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("undep", flag.ContinueOnError),
		Usage: "undep <id> <dep-id>",
		Short: "Remove a dependency from a plan",
		Long:  "Remove plan <dep-id> from plan <id>'s dependency list.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execUndep(io, cfg, args)
		},
	}
}

func execUndep(io *IO, cfg *plan.Config, args []string) error {
	planID, depID, err := parseDepArgs(args)
	if err != nil {
		return err
	}

	path, err := plan.FindPath(cfg.PlanDirAbs, planID)
	if err != nil {
		return err
	}

	_, err = plan.UpdatePlan(path, func(p *plan.Plan) error {
		idx := slices.Index(p.Dependencies, depID)
		if idx < 0 {
			return fmt.Errorf("%w %d", plan.ErrNotDependentOn, depID)
		}

		p.Dependencies = slices.Delete(p.Dependencies, idx, idx+1)

		return nil
	})
	if err != nil {
		return err
	}

	io.Println(fmt.Sprintf("plan %d no longer depends on %d", planID, depID))

	return nil
}

func parseDepArgs(args []string) (planID, depID int, err error) {
	planID, err = parseID(args)
	if err != nil {
		return 0, 0, err
	}

	if len(args) < 2 {
		return 0, 0, plan.ErrDepIDRequired
	}

	depID, err = parseIDArg(args[1])
	if err != nil {
		return 0, 0, err
	}

	return planID, depID, nil
}
