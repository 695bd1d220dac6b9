package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// NextCmd returns the next command.
func NextCmd(cfg *plan.Config) *Command {
	fs := flag.NewFlagSet("next", flag.ContinueOnError)
	fs.Bool("json", false, "Output as JSON object")

	return &Command{
		Flags: fs,
		Usage: "next <id> [flags]",
		Short: "Find the next actionable dependency of a plan",
		Long: `Walk the dependency graph of plan <id> breadth-first and print the
first dependency that can be acted on: a dependency already in progress
wins, otherwise the first ready pending dependency. Done dependencies
are skipped but their own dependencies are still considered.

When nothing is actionable the reason is printed instead. With --json
the result is a JSON object with "found", "plan_id", and "message".`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			jsonOutput, _ := fs.GetBool("json")

			return execNext(io, cfg, args, jsonOutput)
		},
	}
}

func execNext(io *IO, cfg *plan.Config, args []string, jsonOutput bool) error {
	planID, err := parseID(args)
	if err != nil {
		return err
	}

	result, warnings, err := plan.TraverseDependencies(planID, cfg.PlanDirAbs)
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}

	for _, w := range warnings {
		io.WarnLLM(w.Issue, w.Action)
	}

	if jsonOutput {
		data, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			return fmt.Errorf("marshal json: %w", marshalErr)
		}

		io.Println(string(data))

		return nil
	}

	io.Println(result.Message)

	return nil
}
