// Package host bridges stackup files to the host EDA application through external commands.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/codex-k8s/stackupctl/internal/config"
	"github.com/codex-k8s/stackupctl/internal/env"
	"github.com/codex-k8s/stackupctl/internal/logging"
)

// ErrNotConfigured is returned when the command for an operation is empty.
var ErrNotConfigured = errors.New("host command not configured")

// Op names a host operation.
type Op string

const (
	// OpExport writes the host's current stackup to a file.
	OpExport Op = "export"
	// OpImport loads a stackup file into the host.
	OpImport Op = "import"
)

// Host is the automation surface of the application owning the stackup.
type Host interface {
	ExportStackup(ctx context.Context, path string) error
	ImportStackup(ctx context.Context, path string) error
}

// CallError wraps a failed host operation.
type CallError struct {
	Op      Op
	Path    string
	Command string
	Err     error
}

func (e *CallError) Error() string {
	if e.Command == "" {
		return fmt.Sprintf("host %s %q: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("host %s %q (%s): %v", e.Op, e.Path, e.Command, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Commands configures a CommandHost.
type Commands struct {
	// Export and Import are command templates rendered with config.TemplateContext.
	Export string
	Import string
	// WorkDir is the working directory of every command.
	WorkDir string
	// Timeout bounds each command; zero means no extra bound beyond ctx.
	Timeout time.Duration
	// Env is the full command environment.
	Env env.Vars
	// Vars are exposed to templates as .Vars.
	Vars env.Vars
}

// CommandHost runs configured commands for host operations.
type CommandHost struct {
	cmds   Commands
	logger *slog.Logger
}

// NewCommandHost constructs a CommandHost.
func NewCommandHost(cmds Commands, logger *slog.Logger) *CommandHost {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommandHost{cmds: cmds, logger: logger}
}

// FromConfig builds a CommandHost from stackupctl.yaml settings and inline vars.
func FromConfig(cfg *config.Config, vars env.Vars, logger *slog.Logger) (*CommandHost, error) {
	timeout, err := cfg.HostTimeout()
	if err != nil {
		return nil, err
	}
	hostEnv, err := cfg.HostEnv()
	if err != nil {
		return nil, err
	}
	return NewCommandHost(Commands{
		Export:  cfg.Host.Export,
		Import:  cfg.Host.Import,
		WorkDir: cfg.HostWorkDir(),
		Timeout: timeout,
		Env:     hostEnv,
		Vars:    vars,
	}, logger), nil
}

// Configured reports whether op has a command.
func (h *CommandHost) Configured(op Op) bool {
	return strings.TrimSpace(h.template(op)) != ""
}

// ExportStackup asks the host to write its current stackup to path.
func (h *CommandHost) ExportStackup(ctx context.Context, path string) error {
	return h.run(ctx, OpExport, path)
}

// ImportStackup asks the host to load the stackup at path.
func (h *CommandHost) ImportStackup(ctx context.Context, path string) error {
	return h.run(ctx, OpImport, path)
}

func (h *CommandHost) template(op Op) string {
	if op == OpExport {
		return h.cmds.Export
	}
	return h.cmds.Import
}

func (h *CommandHost) run(ctx context.Context, op Op, path string) error {
	raw := h.template(op)
	if strings.TrimSpace(raw) == "" {
		return &CallError{Op: op, Path: path, Err: ErrNotConfigured}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return &CallError{Op: op, Path: path, Err: fmt.Errorf("resolve path: %w", err)}
	}

	line, err := config.RenderTemplate(string(op), raw, config.TemplateContext{
		Path: absPath,
		Dir:  filepath.Dir(absPath),
		Base: filepath.Base(absPath),
		Vars: h.cmds.Vars,
		Env:  h.cmds.Env,
	})
	if err != nil {
		return &CallError{Op: op, Path: path, Err: err}
	}

	argv, err := shlex.Split(line)
	if err != nil {
		return &CallError{Op: op, Path: path, Command: line, Err: fmt.Errorf("split command: %w", err)}
	}
	if len(argv) == 0 {
		return &CallError{Op: op, Path: path, Err: ErrNotConfigured}
	}

	if h.cmds.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cmds.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = h.cmds.WorkDir
	if h.cmds.Env != nil {
		cmd.Env = h.cmds.Env.Environ()
	}
	stdout := logging.NewWriter(h.logger, "op", string(op), "stream", "stdout")
	stderr := logging.NewWriter(h.logger, "op", string(op), "stream", "stderr")
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	h.logger.Info("running host command", "op", op, "path", absPath)
	h.logger.Debug("host command line", "op", op, "argv", argv)
	runErr := cmd.Run()
	stdout.Flush()
	stderr.Flush()
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			runErr = fmt.Errorf("%w (%v)", ctxErr, runErr)
		}
		return &CallError{Op: op, Path: path, Command: line, Err: runErr}
	}
	return nil
}
