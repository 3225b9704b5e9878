package cli

import (
	"github.com/spf13/cobra"

	"github.com/codex-k8s/stackupctl/internal/host"
	"github.com/codex-k8s/stackupctl/internal/loader"
)

// newHostExportCommand creates "host export" that asks the host to write its stackup to --file.
func newHostExportCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Export the host stackup into --file and verify it loads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)

			path, err := requireFile(opts)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			h, err := buildHost(cfg, opts, logger, host.OpExport)
			if err != nil {
				return err
			}
			if err := h.ExportStackup(ctx, path); err != nil {
				return err
			}
			doc, err := loader.New(logger).Load(path)
			if err != nil {
				return err
			}
			logger.Info("stackup exported", "path", path, "format", doc.Format.String())
			return nil
		},
	}
}

// newHostImportCommand creates "host import" that hands --file to the host after it parses cleanly.
func newHostImportCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Import --file into the host",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := LoggerFromContext(ctx)

			path, err := requireFile(opts)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if _, err := loader.New(logger).Load(path); err != nil {
				return err
			}
			h, err := buildHost(cfg, opts, logger, host.OpImport)
			if err != nil {
				return err
			}
			if err := h.ImportStackup(ctx, path); err != nil {
				return err
			}
			logger.Info("stackup imported", "path", path)
			return nil
		},
	}
}
