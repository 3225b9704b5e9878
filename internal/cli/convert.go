package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newConvertCommand creates "convert" that rewrites a stackup file as XML.
func newConvertCommand(opts *Options) *cobra.Command {
	var (
		outPath string
		inPlace bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a stackup file (XML or legacy block syntax) to normalized XML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)

			if inPlace && outPath != "" {
				return fmt.Errorf("--in-place and --out are mutually exclusive")
			}

			sess, err := openSession(ctx, cmd, opts, sessionRequest{})
			if err != nil {
				return err
			}
			defer sess.Close()

			if inPlace {
				return sess.Save(ctx)
			}

			data, err := sess.Render()
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %q: %w", outPath, err)
			}
			logger.Info("stackup converted", "from", sess.Path(), "to", outPath, "format", sess.Stackup().Doc.Format.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Write the XML to this path instead of stdout")
	cmd.Flags().BoolVar(&inPlace, "in-place", false, "Overwrite the input file")

	return cmd
}
