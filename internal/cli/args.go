package cli

import (
	"fmt"
	"strconv"

	"github.com/tim-cli/tim/internal/plan"
)

// parseID extracts a positive plan ID from the first positional argument.
func parseID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, plan.ErrIDRequired
	}

	return parseIDArg(args[0])
}

func parseIDArg(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s", plan.ErrInvalidID, arg)
	}

	return id, nil
}
