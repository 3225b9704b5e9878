package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCommand creates "version" that prints the build version.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the stackupctl version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "stackupctl %s\n", version)
			return err
		},
	}
}
