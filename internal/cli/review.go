package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tim-cli/tim/internal/review"

	flag "github.com/spf13/pflag"
)

var errNoReviewInput = errors.New("no review input (pass a file or pipe to stdin)")

// ReviewCmd returns the review command.
func ReviewCmd(stdin io.Reader) *Command {
	fs := flag.NewFlagSet("review", flag.ContinueOnError)
	fs.String("format", review.FormatTerminal, "Output format (terminal|json|markdown)")
	fs.String("verbosity", review.VerbosityNormal, "Verbosity (minimal|normal|detailed)")
	fs.Bool("no-color", false, "Disable ANSI colors in terminal output")
	fs.StringP("output", "o", "", "Write output to this file instead of stdout")

	return &Command{
		Flags: fs,
		Usage: "review [<file>] [flags]",
		Short: "Extract structured issues from reviewer output",
		Long: `Parse free-form reviewer output into structured issues,
recommendations, and action items.

Input is read from <file> when given, otherwise from stdin. Parsing
never fails: text with no recognizable issues yields an empty result.

Examples:
  some-reviewer | tim review --format json
  tim review notes.txt --verbosity detailed
  tim review notes.txt --format markdown -o review.md`,
		Exec: func(_ context.Context, io *IO, args []string) error {
			return execReview(io, fs, args, stdin)
		},
	}
}

func execReview(o *IO, fs *flag.FlagSet, args []string, stdin io.Reader) error {
	raw, err := readReviewInput(args, stdin)
	if err != nil {
		return err
	}

	format, _ := fs.GetString("format")
	verbosity, _ := fs.GetString("verbosity")
	noColor, _ := fs.GetBool("no-color")
	outputPath, _ := fs.GetString("output")

	result := review.Parse(raw)

	rendered, err := review.Format(result, review.Options{
		Format:    format,
		Verbosity: verbosity,
		Color:     format == review.FormatTerminal && !noColor && outputPath == "",
	})
	if err != nil {
		return err
	}

	if outputPath != "" {
		if err := atomic.WriteFile(outputPath, strings.NewReader(rendered)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		o.Println("wrote", outputPath)

		return nil
	}

	o.Printf("%s", rendered)

	return nil
}

func readReviewInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("read review file: %w", err)
		}

		return string(content), nil
	}

	if stdin == nil {
		return "", errNoReviewInput
	}

	content, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}

	return string(content), nil
}
