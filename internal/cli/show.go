package cli

import (
	"context"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(cfg *plan.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("show", flag.ContinueOnError),
		Usage: "show <id>",
		Short: "Show plan details",
		Long:  "Display the full contents of a plan file.",
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execShow(io, cfg, args)
		},
	}
}

func execShow(io *IO, cfg *plan.Config, args []string) error {
	planID, err := parseID(args)
	if err != nil {
		return err
	}

	path, err := plan.FindPath(cfg.PlanDirAbs, planID)
	if err != nil {
		return err
	}

	content, err := plan.ReadRaw(path)
	if err != nil {
		return err
	}

	io.Printf("%s", content)

	return nil
}
