package host

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/stackupctl/internal/config"
	"github.com/codex-k8s/stackupctl/internal/env"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestCommandHost_ExportAndImport(t *testing.T) {
	requireTool(t, "cp")
	dir := t.TempDir()
	source := filepath.Join(dir, "host-side.xml")
	require.NoError(t, os.WriteFile(source, []byte("<Stackup/>"), 0o644))
	target := filepath.Join(dir, "local copy.xml")
	imported := filepath.Join(dir, "imported.xml")

	h := NewCommandHost(Commands{
		Export:  "cp {{ quote .Vars.SRC }} {{ quote .Path }}",
		Import:  `cp {{ quote .Path }} {{ quote (printf "%s/imported.xml" .Dir) }}`,
		WorkDir: dir,
		Timeout: 10 * time.Second,
		Env:     env.FromOS(),
		Vars:    env.Vars{"SRC": source},
	}, nil)
	require.True(t, h.Configured(OpExport))

	require.NoError(t, h.ExportStackup(context.Background(), target))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "<Stackup/>", string(data))

	require.NoError(t, h.ImportStackup(context.Background(), target))
	_, err = os.Stat(imported)
	assert.NoError(t, err)
}

func TestCommandHost_NotConfigured(t *testing.T) {
	h := NewCommandHost(Commands{}, nil)
	assert.False(t, h.Configured(OpImport))

	err := h.ImportStackup(context.Background(), "stackup.xml")
	require.Error(t, err)
	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Equal(t, OpImport, callErr.Op)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestCommandHost_CommandFails(t *testing.T) {
	requireTool(t, "false")
	h := NewCommandHost(Commands{Import: "false {{ .Path }}", Env: env.FromOS()}, nil)
	err := h.ImportStackup(context.Background(), "stackup.xml")
	require.Error(t, err)
	var callErr *CallError
	require.True(t, errors.As(err, &callErr))
	assert.Contains(t, callErr.Command, "stackup.xml")
	var exitErr *exec.ExitError
	assert.True(t, errors.As(err, &exitErr))
}

func TestCommandHost_BadTemplate(t *testing.T) {
	h := NewCommandHost(Commands{Export: "bridge {{ .Missing }}"}, nil)
	err := h.ExportStackup(context.Background(), "stackup.xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host export")
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Host.Export = "bridge export {{ .Path }}"
	h, err := FromConfig(cfg, nil, nil)
	require.NoError(t, err)
	assert.True(t, h.Configured(OpExport))
	assert.False(t, h.Configured(OpImport))
}
