package review

import "fmt"

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatTerminal = "terminal"
)

// Verbosity levels.
const (
	VerbosityMinimal  = "minimal"
	VerbosityNormal   = "normal"
	VerbosityDetailed = "detailed"
)

// Options selects how a Result is rendered.
type Options struct {
	Format    string
	Verbosity string
	Color     bool
}

// Format renders the result in the requested format and verbosity.
func Format(result Result, opts Options) (string, error) {
	if opts.Verbosity == "" {
		opts.Verbosity = VerbosityNormal
	}

	switch opts.Verbosity {
	case VerbosityMinimal, VerbosityNormal, VerbosityDetailed:
	default:
		return "", fmt.Errorf("invalid verbosity %q (want minimal, normal, or detailed)", opts.Verbosity)
	}

	switch opts.Format {
	case FormatJSON:
		return formatJSON(result, opts.Verbosity)
	case FormatMarkdown:
		return formatMarkdown(result, opts.Verbosity), nil
	case FormatTerminal, "":
		return formatTerminal(result, opts.Verbosity, opts.Color), nil
	default:
		return "", fmt.Errorf("invalid format %q (want json, markdown, or terminal)", opts.Format)
	}
}
