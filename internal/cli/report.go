package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/stackupctl/internal/report"
)

// newReportCommand creates "report" that renders a Markdown or HTML summary.
func newReportCommand(opts *Options) *cobra.Command {
	var (
		outPath string
		asHTML  bool
		title   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render a Markdown or HTML summary of a stackup file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)

			sess, err := openSession(ctx, cmd, opts, sessionRequest{})
			if err != nil {
				return err
			}
			defer sess.Close()

			if title == "" {
				title = filepath.Base(sess.Path())
			}
			data := report.Markdown(title, sess.Stackup())
			if asHTML {
				if data, err = report.HTML(title, sess.Stackup()); err != nil {
					return err
				}
			}

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write report %q: %w", outPath, err)
			}
			logger.Info("report written", "path", outPath, "html", asHTML)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write the report to this path instead of stdout")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render HTML instead of Markdown")
	cmd.Flags().StringVar(&title, "title", "", "Report title (defaults to the file name)")

	return cmd
}
