package cli

import (
	"fmt"
	"time"

	"github.com/rileyhilliard/gpumon/internal/errors"
	"github.com/rileyhilliard/gpumon/internal/table"
	"github.com/spf13/cobra"
)

// OutputFlags holds the flags shared by the one-shot fetch commands.
type OutputFlags struct {
	JSON bool
}

// AddOutputFlags registers --json on a command.
func AddOutputFlags(cmd *cobra.Command, flags *OutputFlags) {
	cmd.Flags().BoolVar(&flags.JSON, "json", false, "print the result as JSON")
}

// ParseTimeout parses a request timeout string into a positive duration.
func ParseTimeout(flag string) (time.Duration, error) {
	duration, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid timeout", flag),
			"Try something like 5s, 2m, or 500ms.")
	}
	if duration <= 0 {
		return 0, errors.New(errors.ErrConfig,
			fmt.Sprintf("Timeout must be positive, got '%s'", flag),
			"Try something like 5s, 2m, or 500ms.")
	}
	return duration, nil
}

// ParseSortFlag parses --sort, turning parse failures into config errors.
// An empty flag means no sorting.
func ParseSortFlag(flag string) (table.Sort, error) {
	if flag == "" {
		return table.Sort{}, nil
	}
	s, err := table.ParseSort(flag)
	if err != nil {
		return table.Sort{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't sort by '%s'", flag),
			"Use a column name with an optional direction, e.g. utilization:desc or node.")
	}
	return s, nil
}

// ValidatePage checks a 1-based --page value.
func ValidatePage(page int) error {
	if page < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Page must be 1 or greater, got %d", page),
			"Pages are numbered from 1.")
	}
	return nil
}
