package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/stackupctl/internal/config"
	"github.com/codex-k8s/stackupctl/internal/host"
	"github.com/codex-k8s/stackupctl/internal/logging"
	"github.com/codex-k8s/stackupctl/internal/markup"
	"github.com/codex-k8s/stackupctl/internal/stackup"
)

const legacyStackup = `$begin 'Stackup'
$begin 'Materials'
$begin 'copper'
conductivity=58000000
$end 'copper'
$end 'Materials'
$begin 'Layers'
Layer(Name='L1', Thickness=0.035, Material='copper')
Layer(Name='D1', Thickness=0.2, Material='FR4')
$end 'Layers'
$end 'Stackup'
`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STACKUPCTL_CONFIG",
		"STACKUPCTL_FILE",
		"STACKUPCTL_VARS",
		"STACKUPCTL_LOG_LEVEL",
		"STACKUPCTL_EXPORT_CMD",
		"STACKUPCTL_IMPORT_CMD",
		"STACKUPCTL_HOST_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	opts := &Options{ConfigPath: config.DefaultPath, LogLevel: logging.LevelInfo}
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(opts, slog.New(slog.DiscardHandler))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestShow_Table(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	out, err := run(t, "show", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "LAYERS (2)")
	assert.Contains(t, out, "MATERIALS (1)")
	assert.Contains(t, out, "L1")
	assert.Contains(t, out, "0.035")
	assert.Contains(t, out, "58000000")
}

func TestShow_JSON(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	out, err := run(t, "show", "-f", path, "-o", "json", "--sources")
	require.NoError(t, err)

	var view stackupView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "legacy", view.Format)
	require.Len(t, view.Layers, 2)
	assert.Equal(t, "L1", view.Layers[0].Values[stackup.FieldName])
	assert.Equal(t, "@Name", view.Layers[0].Sources[stackup.FieldName])
	require.Len(t, view.Materials, 1)
	assert.Equal(t, "copper", view.Materials[0].Values[stackup.FieldName])
}

func TestShow_UnsupportedOutput(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	_, err := run(t, "show", "-f", path, "-o", "csv")
	assert.Error(t, err)
}

func TestShow_FileFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)
	t.Setenv("STACKUPCTL_FILE", path)

	out, err := run(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "L1")
}

func TestRequiresFile(t *testing.T) {
	clearEnv(t)
	_, err := run(t, "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file")
}

func TestConvert_Stdout(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	out, err := run(t, "convert", "-f", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, markup.Header))
	assert.Contains(t, out, `<Layer Name="L1" Thickness="0.035" Material="copper"/>`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyStackup, string(data), "convert to stdout leaves the input alone")
}

func TestConvert_InPlace(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	_, err := run(t, "convert", "-f", path, "--in-place")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), markup.Header))
}

func TestCheck_ReportsIssues(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	out, err := run(t, "check", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 issue(s)")
	assert.Contains(t, out, `material "FR4" is not defined`)
}

func TestSet_DryRun(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	out, err := run(t, "set", "-f", path, "--layer", "L1.Thickness=0.07", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, `<Layer Name="L1" Thickness="0.07" Material="copper"/>`)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyStackup, string(data))
}

func TestSet_WritesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	_, err := run(t, "set", "-f", path, "--layer", "1.Material=copper", "--material", "copper.Conductivity=5.8e7")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `<Layer Name="D1" Thickness="0.2" Material="copper"/>`)
	assert.Contains(t, text, "5.8e7")
}

func TestSet_Errors(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	_, err := run(t, "set", "-f", path)
	assert.Error(t, err)

	_, err = run(t, "set", "-f", path, "--layer", "L1.Colour=red")
	require.Error(t, err)
	assert.True(t, errors.Is(err, stackup.ErrUnknownField))

	_, err = run(t, "set", "-f", path, "--layer", "L9.Thickness=1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, stackup.ErrNoSuchRecord))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacyStackup, string(data), "failed edits leave the file untouched")
}

func TestReport(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	out, err := run(t, "report", "-f", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# board.stk\n"))

	out, err = run(t, "report", "-f", path, "--html", "--title", "Board")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Board</h1>")
}

func TestHost_NotConfigured(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	_, err := run(t, "host", "import", "-f", path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, host.ErrNotConfigured))
}

func TestHost_ExportEditImport(t *testing.T) {
	clearEnv(t)
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skipf("cp not available: %v", err)
	}
	dir := t.TempDir()
	hostSide := filepath.Join(dir, "host.stk")
	require.NoError(t, os.WriteFile(hostSide, []byte(legacyStackup), 0o644))
	imported := filepath.Join(dir, "imported.xml")
	cfgPath := filepath.Join(dir, "stackupctl.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`host:
  export: 'cp {{ quote .Vars.src }} {{ quote .Path }}'
  import: 'cp {{ quote .Path }} {{ quote .Vars.dst }}'
  timeout: 10s
`), 0o644))
	local := filepath.Join(dir, "local.xml")
	vars := fmt.Sprintf("src=%s,dst=%s", hostSide, imported)

	_, err := run(t, "--config", cfgPath, "--vars", vars, "host", "export", "-f", local)
	require.NoError(t, err)
	data, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, legacyStackup, string(data))

	_, err = run(t, "--config", cfgPath, "--vars", vars, "set", "-f", local, "--from-host", "--import", "--layer", "L1.Thickness=0.05")
	require.NoError(t, err)
	data, err = os.ReadFile(imported)
	require.NoError(t, err)
	assert.Contains(t, string(data), `Thickness="0.05"`)
}

func TestExplicitConfigMustExist(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "board.stk", legacyStackup)

	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "show", "-f", path)
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	clearEnv(t)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "stackupctl dev\n", out)
}

func TestHost_GroupRequiresSubcommand(t *testing.T) {
	clearEnv(t)

	_, err := run(t, "host")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing subcommand (export, import)")

	_, err = run(t, "host", "sync")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown subcommand "sync"`)
}
