package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCheckCommand creates "check" that reports consistency issues and fails when any exist.
func newCheckCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check a stackup file for duplicate names and undefined materials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)

			sess, err := openSession(ctx, cmd, opts, sessionRequest{})
			if err != nil {
				return err
			}
			defer sess.Close()

			st := sess.Stackup()
			issues := st.Check()
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue.String())
			}
			if len(issues) > 0 {
				return fmt.Errorf("%s: %d issue(s) found", sess.Path(), len(issues))
			}
			logger.Info("stackup is consistent", "path", sess.Path(), "layers", len(st.Layers), "materials", len(st.Materials))
			return nil
		},
	}
}
