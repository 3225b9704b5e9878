package logging

import (
	"bytes"
	"log/slog"
	"sync"
)

// Writer forwards output of external commands to slog, one record per line.
// Partial lines are buffered until a newline or Flush.
type Writer struct {
	mu     sync.Mutex
	logger *slog.Logger
	attrs  []any
	buf    bytes.Buffer
}

// NewWriter constructs a Writer that logs at debug level with the given attributes.
func NewWriter(logger *slog.Logger, attrs ...any) *Writer {
	return &Writer{logger: logger, attrs: attrs}
}

// Write logs every complete line contained in p.
func (w *Writer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// incomplete line: keep it for the next write
			w.buf.Write(line)
			break
		}
		w.emit(line)
	}
	return len(p), nil
}

// Flush logs any buffered partial line.
func (w *Writer) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(w.buf.Bytes())
		w.buf.Reset()
	}
}

func (w *Writer) emit(line []byte) {
	text := string(bytes.TrimRight(line, "\r\n"))
	if text == "" || w.logger == nil {
		return
	}
	w.logger.Debug("command output", append([]any{"line", text}, w.attrs...)...)
}
