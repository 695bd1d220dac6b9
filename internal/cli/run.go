package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tim-cli/tim/internal/plan"
)

const (
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// Run is the main entry point. Returns exit code.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh chan os.Signal) int {
	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	flags, err := parseGlobalFlags(rest)
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := plan.LoadConfig(plan.LoadConfigInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		PlanDirOverride: flags.planDir,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	ioCtx := NewIO(out, errOut)
	commands := registry(&cfg, stdin, env)

	if len(flags.remaining) == 0 {
		printUsage(ioCtx, commands)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(ioCtx, commands)

		return 0
	}

	cmd := lookup(commands, name)
	if cmd == nil {
		fprintln(errOut, "error: unknown command:", name)
		printUsage(NewIO(errOut, errOut), commands)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	if code := cmd.Run(ctx, ioCtx, flags.remaining[1:]); code != 0 {
		return code
	}

	// Finish handles warnings and exit code
	return ioCtx.Finish()
}

// registry returns all commands in help-listing order.
func registry(cfg *plan.Config, stdin io.Reader, env map[string]string) []*Command {
	return []*Command{
		CreateCmd(cfg, env),
		ShowCmd(cfg),
		LsCmd(cfg),
		StartCmd(cfg),
		DoneCmd(cfg),
		ReopenCmd(cfg),
		DepCmd(cfg),
		UndepCmd(cfg),
		ReadyCmd(cfg),
		NextCmd(cfg),
		ReviewCmd(stdin),
		EditCmd(cfg, env),
		PrintConfigCmd(cfg),
	}
}

func lookup(commands []*Command, name string) *Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}

	return nil
}

type globalFlags struct {
	workDir    string
	configPath string
	planDir    string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", plan.ErrFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --plan-dir flag
	if arg == "--plan-dir" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", plan.ErrFlagRequiresArg, arg)
		}

		flags.planDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--plan-dir="); ok {
		flags.planDir = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", plan.ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(o *IO, commands []*Command) {
	o.Println(`tim - plan management for agent workflows

Usage: tim [options] <command> [args]

Options:
  -C, --cwd <dir>    Run as if started in <dir>
  -c, --config       Use specified config file
  --plan-dir <dir>   Override the plan directory

Commands:`)

	for _, cmd := range commands {
		o.Println(cmd.HelpLine())
	}
}
