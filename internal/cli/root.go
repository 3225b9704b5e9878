// Package cli defines the command-line interface for stackupctl.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/stackupctl/internal/config"
	"github.com/codex-k8s/stackupctl/internal/logging"
)

// version is overridden at build time with -ldflags "-X .../internal/cli.version=...".
var version = "dev"

// Options stores global CLI options shared between commands.
type Options struct {
	ConfigPath string
	File       string
	Vars       string
	LogLevel   logging.Level
	NoColor    bool
}

// Execute builds the root command, runs it with the provided args and logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.Options{Level: logging.LevelInfo})
	}

	rootOpts := &Options{
		ConfigPath: config.DefaultPath,
		LogLevel:   logging.LevelInfo,
	}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stackupctl",
		Short:         "stackupctl inspects and edits PCB layer stackup files",
		Long:          "stackupctl loads layer stackup files in XML or legacy $begin/$end block syntax, edits layers and materials in place, writes them back as XML and hands them to the host EDA application.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyRootEnv(cmd, opts); err != nil {
				return err
			}
			level, err := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			if err != nil {
				return err
			}
			opts.LogLevel = level
			logger = logging.NewLogger(cmd.ErrOrStderr(), logging.Options{Level: level, NoColor: opts.NoColor})
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level.String())
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultPath, "Path to stackupctl.yaml (optional unless set explicitly)")
	cmd.PersistentFlags().StringVarP(&opts.File, "file", "f", "", "Stackup file (XML or legacy block syntax)")
	cmd.PersistentFlags().StringVar(&opts.Vars, "vars", "", "Variables for host command templates in k=v,k2=v2 format")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored log output")

	cmd.AddCommand(
		newShowCommand(opts),
		newConvertCommand(opts),
		newCheckCommand(opts),
		newSetCommand(opts),
		newReportCommand(opts),
		newGroupCommand("host", "Exchange stackup files with the host application",
			newHostExportCommand(opts),
			newHostImportCommand(opts),
		),
		newVersionCommand(),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.Options{Level: logging.LevelInfo})
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.Options{Level: logging.LevelInfo})
}

// requireFile returns the --file value or an error naming the flag.
func requireFile(opts *Options) (string, error) {
	if opts.File == "" {
		return "", fmt.Errorf("a stackup file is required: pass --file or set STACKUPCTL_FILE")
	}
	return opts.File, nil
}
