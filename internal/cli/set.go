package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/stackupctl/internal/stackup"
)

// newSetCommand creates "set" that edits layer and material fields and writes the file back.
func newSetCommand(opts *Options) *cobra.Command {
	var (
		layerEdits    []string
		materialEdits []string
		fromHost      bool
		importToHost  bool
		dryRun        bool
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Edit layer and material fields and save the stackup as XML",
		Example: `  stackupctl set -f board.xml --layer TOP.Thickness=0.035 --material FR4.Permittivity=4.3
  stackupctl set -f board.xml --layer 2.Material=copper --from-host --import`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)

			if len(layerEdits) == 0 && len(materialEdits) == 0 {
				return fmt.Errorf("nothing to set: pass --layer or --material")
			}
			if dryRun && importToHost {
				return fmt.Errorf("--dry-run and --import are mutually exclusive")
			}
			layers, err := stackup.ParseEdits(layerEdits)
			if err != nil {
				return fmt.Errorf("--layer: %w", err)
			}
			materials, err := stackup.ParseEdits(materialEdits)
			if err != nil {
				return fmt.Errorf("--material: %w", err)
			}

			sess, err := openSession(ctx, cmd, opts, sessionRequest{
				exportOnOpen: fromHost,
				importOnSave: importToHost,
			})
			if err != nil {
				return err
			}
			defer sess.Close()

			st := sess.Stackup()
			if err := st.ApplyEdits(stackup.KindLayer, layers); err != nil {
				return err
			}
			if err := st.ApplyEdits(stackup.KindMaterial, materials); err != nil {
				return err
			}
			logger.Debug("edits applied", "layers", len(layers), "materials", len(materials))

			if dryRun {
				data, err := sess.Render()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return sess.Save(ctx)
		},
	}

	cmd.Flags().StringArrayVar(&layerEdits, "layer", nil, "Layer edit <name|index>.<Field>=<value> (repeatable)")
	cmd.Flags().StringArrayVar(&materialEdits, "material", nil, "Material edit <name|index>.<Field>=<value> (repeatable)")
	cmd.Flags().BoolVar(&fromHost, "from-host", false, "Export the stackup from the host into --file before editing")
	cmd.Flags().BoolVar(&importToHost, "import", false, "Import the saved file into the host")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the resulting XML instead of writing it")

	return cmd
}
