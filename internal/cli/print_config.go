package cli

import (
	"context"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg *plan.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("print-config", flag.ContinueOnError),
		Usage: "print-config",
		Short: "Show resolved configuration",
		Long:  "Print the resolved configuration and which files it came from.",
		Exec: func(_ context.Context, io *IO, _ []string) error {
			return execPrintConfig(io, cfg)
		},
	}
}

func execPrintConfig(io *IO, cfg *plan.Config) error {
	formatted, err := plan.FormatConfig(*cfg)
	if err != nil {
		return err
	}

	io.Println(formatted)

	io.Println("")
	io.Println("# Sources:")

	if cfg.Sources.Global != "" {
		io.Println("#   global:", cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		io.Println("#   project:", cfg.Sources.Project)
	}

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		io.Println("#   (using defaults only)")
	}

	return nil
}
