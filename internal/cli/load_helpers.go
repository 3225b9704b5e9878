package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codex-k8s/stackupctl/internal/config"
	"github.com/codex-k8s/stackupctl/internal/env"
	"github.com/codex-k8s/stackupctl/internal/host"
	"github.com/codex-k8s/stackupctl/internal/session"
)

// loadConfig reads stackupctl.yaml and applies STACKUPCTL_* host overrides.
func loadConfig(cmd *cobra.Command, opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath, configRequired(cmd))
	if err != nil {
		return nil, err
	}

	var envCfg hostEnv
	if err := parseEnv(&envCfg); err != nil {
		return nil, err
	}
	if envPresent("STACKUPCTL_EXPORT_CMD") {
		cfg.Host.Export = envCfg.ExportCmd
	}
	if envPresent("STACKUPCTL_IMPORT_CMD") {
		cfg.Host.Import = envCfg.ImportCmd
	}
	if envPresent("STACKUPCTL_HOST_TIMEOUT") {
		cfg.Host.Timeout = envCfg.Timeout
		if _, err := cfg.HostTimeout(); err != nil {
			return nil, fmt.Errorf("STACKUPCTL_HOST_TIMEOUT: %w", err)
		}
	}
	return cfg, nil
}

// buildHost creates the command-backed host bridge and verifies op is configured.
func buildHost(cfg *config.Config, opts *Options, logger *slog.Logger, ops ...host.Op) (*host.CommandHost, error) {
	vars, err := env.ParseInlineVars(opts.Vars)
	if err != nil {
		return nil, err
	}
	h, err := host.FromConfig(cfg, vars, logger)
	if err != nil {
		return nil, err
	}
	for _, op := range ops {
		if !h.Configured(op) {
			return nil, fmt.Errorf("%w: host.%s is empty", host.ErrNotConfigured, op)
		}
	}
	return h, nil
}

// sessionRequest describes how a command wants its stackup opened.
type sessionRequest struct {
	exportOnOpen bool
	importOnSave bool
}

// openSession loads config and key chains, builds the host when needed and opens the --file stackup.
func openSession(ctx context.Context, cmd *cobra.Command, opts *Options, req sessionRequest) (*session.Session, error) {
	logger := LoggerFromContext(ctx)

	path, err := requireFile(opts)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	keys, err := cfg.StackupKeys()
	if err != nil {
		return nil, err
	}

	sessOpts := session.Options{
		Keys:         keys,
		ExportOnOpen: req.exportOnOpen,
		ImportOnSave: req.importOnSave,
		Logger:       logger,
	}
	var ops []host.Op
	if req.exportOnOpen {
		ops = append(ops, host.OpExport)
	}
	if req.importOnSave {
		ops = append(ops, host.OpImport)
	}
	if len(ops) > 0 {
		h, err := buildHost(cfg, opts, logger, ops...)
		if err != nil {
			return nil, err
		}
		sessOpts.Host = h
	}

	return session.Open(ctx, path, sessOpts)
}
