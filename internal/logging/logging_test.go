package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestWriterSplitsLines(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(&out, Options{Level: LevelDebug, NoColor: true})
	w := NewWriter(logger, "op", "export")

	_, err := w.Write([]byte("first line\nsecond "))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "first line")
	assert.NotContains(t, out.String(), "second")

	_, _ = w.Write([]byte("half\n\n"))
	assert.Contains(t, out.String(), "second half")

	_, _ = w.Write([]byte("tail"))
	w.Flush()
	assert.Contains(t, out.String(), "tail")
	assert.Contains(t, out.String(), "op=export")
}

func TestWriterRespectsLevel(t *testing.T) {
	var out bytes.Buffer
	logger := NewLogger(&out, Options{Level: LevelInfo, NoColor: true})
	_, _ = NewWriter(logger).Write([]byte("hidden\n"))
	assert.Empty(t, out.String())
}
