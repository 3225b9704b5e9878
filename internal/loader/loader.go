// Package loader reads stackup files in either dialect.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/codex-k8s/stackupctl/internal/blocksyntax"
	"github.com/codex-k8s/stackupctl/internal/doctree"
	"github.com/codex-k8s/stackupctl/internal/markup"
)

var utf8BOM = []byte("\xef\xbb\xbf")

// LoadError is returned when neither the strict nor the legacy parser accepts the input.
type LoadError struct {
	// Path is the file that was loaded, empty for in-memory input.
	Path string
	// Strict is the failure of the strict XML parse.
	Strict error
	// Fallback is the failure of the legacy block-syntax parse.
	Fallback error
}

func (e *LoadError) Error() string {
	subject := "stackup input"
	if e.Path != "" {
		subject = fmt.Sprintf("stackup %q", e.Path)
	}
	if errors.Is(e.Strict, e.Fallback) {
		return fmt.Sprintf("load %s: %v", subject, e.Strict)
	}
	return fmt.Sprintf("load %s: %v (strict parse: %v)", subject, e.Fallback, e.Strict)
}

// Unwrap exposes both causes to errors.Is and errors.As.
func (e *LoadError) Unwrap() []error {
	return []error{e.Strict, e.Fallback}
}

// Loader parses stackup documents, logging the strategy that succeeded.
type Loader struct {
	logger *slog.Logger
}

// New constructs a Loader. A nil logger discards output.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader{logger: logger}
}

// Load reads path and parses it, trying the strict form first.
func (l *Loader) Load(path string) (*doctree.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		readErr := fmt.Errorf("read %q: %w", path, err)
		return nil, &LoadError{Path: path, Strict: readErr, Fallback: readErr}
	}
	doc, err := l.parse(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}
		return nil, err
	}
	l.logger.Debug("stackup loaded", "path", path, "format", doc.Format.String())
	return doc, nil
}

// Parse parses in-memory stackup text.
func (l *Loader) Parse(data []byte) (*doctree.Document, error) {
	return l.parse(data)
}

func (l *Loader) parse(data []byte) (*doctree.Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	root, strictErr := markup.Decode(bytes.NewReader(data))
	if strictErr == nil {
		return &doctree.Document{Root: root, Format: doctree.FormatStrict}, nil
	}
	l.logger.Debug("strict parse failed, trying block syntax", "error", strictErr, "looks_like", markup.Detect(data).String())

	root, fallbackErr := blocksyntax.ParseWithOptions(bytes.NewReader(data), blocksyntax.Options{
		OnSkip: func(line int, text string) {
			l.logger.Debug("block syntax line dropped", "line", line, "text", text)
		},
	})
	if fallbackErr != nil {
		return nil, &LoadError{Strict: strictErr, Fallback: fallbackErr}
	}
	return &doctree.Document{Root: root, Format: doctree.FormatLegacy}, nil
}

// Load parses the file at path with a silent Loader.
func Load(path string) (*doctree.Document, error) {
	return New(nil).Load(path)
}

// Parse parses in-memory text with a silent Loader.
func Parse(data []byte) (*doctree.Document, error) {
	return New(nil).Parse(data)
}
