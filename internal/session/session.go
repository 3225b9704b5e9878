// Package session ties loading, editing, saving and host synchronization into one editing session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/codex-k8s/stackupctl/internal/host"
	"github.com/codex-k8s/stackupctl/internal/loader"
	"github.com/codex-k8s/stackupctl/internal/markup"
	"github.com/codex-k8s/stackupctl/internal/stackup"
)

// ErrClosed is returned when a closed session is used.
var ErrClosed = errors.New("session is closed")

// Options configures Open.
type Options struct {
	// Keys are the field key chains; zero value means stackup.DefaultKeys().
	Keys stackup.Keys
	// Host is used for export on open and import on save; nil disables both.
	Host host.Host
	// ExportOnOpen asks the host to write its stackup to the path before loading.
	ExportOnOpen bool
	// ImportOnSave asks the host to load the file after it has been written.
	ImportOnSave bool
	Logger       *slog.Logger
}

// Session owns one document tree and the records derived from it.
type Session struct {
	path    string
	opts    Options
	logger  *slog.Logger
	stackup *stackup.Stackup
}

// Open loads path, optionally exporting it from the host first.
func Open(ctx context.Context, path string, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Keys.Layer == nil && opts.Keys.Material == nil {
		opts.Keys = stackup.DefaultKeys()
	}

	if opts.ExportOnOpen {
		if opts.Host == nil {
			return nil, errors.New("export requested but no host is configured")
		}
		if err := opts.Host.ExportStackup(ctx, path); err != nil {
			return nil, err
		}
		logger.Info("stackup exported from host", "path", path)
	}

	doc, err := loader.New(logger).Load(path)
	if err != nil {
		return nil, err
	}
	st := stackup.Extract(doc, opts.Keys)
	logger.Debug("session opened", "path", path, "format", doc.Format.String(), "layers", len(st.Layers), "materials", len(st.Materials))

	return &Session{path: path, opts: opts, logger: logger, stackup: st}, nil
}

// Path returns the file the session reads from and writes to.
func (s *Session) Path() string { return s.path }

// Stackup returns the live records, nil after Close.
func (s *Session) Stackup() *stackup.Stackup { return s.stackup }

// Render merges pending edits into the tree and returns the serialized document.
func (s *Session) Render() ([]byte, error) {
	if s.stackup == nil {
		return nil, ErrClosed
	}
	if err := s.stackup.Apply(); err != nil {
		return nil, fmt.Errorf("merge edits: %w", err)
	}
	return markup.Marshal(s.stackup.Doc)
}

// Save writes the merged document over the session path (no atomic rename) and,
// when configured, imports it into the host. A failed import leaves the written file in place.
func (s *Session) Save(ctx context.Context) error {
	data, err := s.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write stackup %q: %w", s.path, err)
	}
	s.logger.Info("stackup saved", "path", s.path, "bytes", len(data))

	if !s.opts.ImportOnSave {
		return nil
	}
	if s.opts.Host == nil {
		return errors.New("import requested but no host is configured")
	}
	if err := s.opts.Host.ImportStackup(ctx, s.path); err != nil {
		return fmt.Errorf("stackup written to %q but import failed: %w", s.path, err)
	}
	s.logger.Info("stackup imported into host", "path", s.path)
	return nil
}

// Close discards the tree and its records without writing.
func (s *Session) Close() {
	s.stackup = nil
}
