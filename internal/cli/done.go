package cli

import (
	"context"
	"fmt"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// DoneCmd returns the done command.
func DoneCmd(cfg *plan.Config) *Command {
	fs := flag.NewFlagSet("done", flag.ContinueOnError)
	fs.Bool("force", false, "Allow completing a plan that was never started")

	return &Command{
		Flags: fs,
		Usage: "done <id> [flags]",
		Short: "Set status to done",
		Long: `Mark a plan as done. The plan must be in_progress unless --force
is given. All tasks and steps are marked done. Plans that become ready
because of this completion are listed.`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			force, _ := fs.GetBool("force")

			return execDone(io, cfg, args, force)
		},
	}
}

func execDone(io *IO, cfg *plan.Config, args []string, force bool) error {
	planID, err := parseID(args)
	if err != nil {
		return err
	}

	path, err := plan.FindPath(cfg.PlanDirAbs, planID)
	if err != nil {
		return err
	}

	_, err = plan.UpdatePlan(path, func(p *plan.Plan) error {
		if p.Status == plan.StatusDone {
			return fmt.Errorf("%w: %d", plan.ErrPlanAlreadyDone, planID)
		}

		if p.Status != plan.StatusInProgress && !force {
			return fmt.Errorf("%w (current status: %s, use --force to complete anyway)",
				plan.ErrPlanNotInProgress, p.Status)
		}

		p.Status = plan.StatusDone

		for t := range p.Tasks {
			p.Tasks[t].Done = true

			for s := range p.Tasks[t].Steps {
				p.Tasks[t].Steps[s].Done = true
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	io.Println("Done", planID)

	reportUnblocked(io, cfg.PlanDirAbs, planID)

	return nil
}

// reportUnblocked lists plans that became ready now that planID is done.
// Failures here are advisory only; the completion already succeeded.
func reportUnblocked(io *IO, planDir string, planID int) {
	plans, warnings, err := plan.LoadGraph(planDir)
	if err != nil {
		return
	}

	for _, w := range warnings {
		io.WarnLLM(w.Issue, w.Action)
	}

	graph := plan.NewGraph(plans)

	for _, summary := range plan.ReadyPlans(graph) {
		if dependsOn(graph, summary.ID, planID) {
			io.Println(fmt.Sprintf("plan %d is now ready: %s", summary.ID, summary.Title))
		}
	}
}

func dependsOn(graph *plan.Graph, id, dep int) bool {
	for _, d := range graph.Dependencies(id) {
		if d == dep {
			return true
		}
	}

	return false
}
