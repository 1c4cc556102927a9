package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// usageArgs wraps a cobra argument validator so its failures carry
// ErrUsage and map to the usage exit code via errors.Is.
func usageArgs(inner cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := inner(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}
