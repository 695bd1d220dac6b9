package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/tim-cli/tim/internal/plan"

	flag "github.com/spf13/pflag"
)

// EditCmd returns the edit command.
func EditCmd(cfg *plan.Config, env map[string]string) *Command {
	return &Command{
		Flags: flag.NewFlagSet("edit", flag.ContinueOnError),
		Usage: "edit <id>",
		Short: "Open plan in your editor",
		Long: `Open the plan file in an editor.

Editor resolution order: config.editor, $EDITOR, vi, nano.`,
		Exec: func(_ context.Context, _ *IO, args []string) error {
			return execEdit(cfg, args, env)
		},
	}
}

func execEdit(cfg *plan.Config, args []string, env map[string]string) error {
	planID, err := parseID(args)
	if err != nil {
		return err
	}

	path, err := plan.FindPath(cfg.PlanDirAbs, planID)
	if err != nil {
		return err
	}

	editor, err := resolveEditor(*cfg, env)
	if err != nil {
		return err
	}

	return runEditor(editor, path)
}

// resolveEditor checks for an available editor using the env map.
// Priority: config.Editor -> $EDITOR -> vi -> nano -> error.
func resolveEditor(cfg plan.Config, env map[string]string) (string, error) {
	if cfg.Editor != "" {
		if _, lookErr := exec.LookPath(cfg.Editor); lookErr == nil {
			return cfg.Editor, nil
		}
	}

	if editor := env["EDITOR"]; editor != "" {
		if _, lookErr := exec.LookPath(editor); lookErr == nil {
			return editor, nil
		}
	}

	if _, viErr := exec.LookPath("vi"); viErr == nil {
		return "vi", nil
	}

	if _, nanoErr := exec.LookPath("nano"); nanoErr == nil {
		return "nano", nil
	}

	return "", plan.ErrNoEditorFound
}

func runEditor(editor, path string) error {
	cmd := exec.CommandContext(context.Background(), editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if runErr := cmd.Run(); runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return fmt.Errorf("%w: exit code %d", plan.ErrEditorFailed, exitErr.ExitCode())
		}

		return fmt.Errorf("%w: %v", plan.ErrEditorFailed, runErr)
	}

	return nil
}
