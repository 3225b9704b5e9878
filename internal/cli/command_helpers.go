package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// newGroupCommand builds a cobra.Command that only dispatches to subcommands.
// Running it bare or with an unknown subcommand fails instead of printing help with exit 0.
func newGroupCommand(use, short string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := make([]string, 0, len(cmd.Commands()))
			for _, sub := range cmd.Commands() {
				if sub.IsAvailableCommand() {
					names = append(names, sub.Name())
				}
			}
			if len(args) == 0 {
				return fmt.Errorf("%s: missing subcommand (%s)", cmd.CommandPath(), strings.Join(names, ", "))
			}
			return fmt.Errorf("%s: unknown subcommand %q (%s)", cmd.CommandPath(), args[0], strings.Join(names, ", "))
		},
	}
	cmd.AddCommand(subcommands...)
	return cmd
}
