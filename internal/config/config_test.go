package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/stackupctl/internal/env"
	"github.com/codex-k8s/stackupctl/internal/stackup"
)

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(`
envFiles: [".env"]
host:
  export: "siwave-bridge export --out {{ quote .Path }}"
  import: "siwave-bridge import {{ .Path }}"
  timeout: 30s
  workDir: work
keys:
  layer:
    name: [Name, LayerName]
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SIWAVE_VERSION=2025.1\n"), 0o644))

	cfg, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, filepath.Join(dir, "work"), cfg.HostWorkDir())

	timeout, err := cfg.HostTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)

	keys, err := cfg.StackupKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "LayerName"}, keys.Layer[stackup.FieldName])
	assert.Equal(t, stackup.DefaultKeys().Material, keys.Material)

	hostEnv, err := cfg.HostEnv()
	require.NoError(t, err)
	assert.Equal(t, "2025.1", hostEnv["SIWAVE_VERSION"])
}

func TestLoad_MissingOptional(t *testing.T) {
	missing := filepath.Join(t.TempDir(), DefaultPath)
	cfg, err := Load(missing, false)
	require.NoError(t, err)
	timeout, err := cfg.HostTimeout()
	require.NoError(t, err)
	assert.Equal(t, defaultHostTimeout, timeout)

	_, err = Load(missing, true)
	assert.Error(t, err)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown field":  "hosts: {}\n",
		"bad timeout":    "host:\n  timeout: soon\n",
		"zero timeout":   "host:\n  timeout: 0s\n",
		"unknown key":    "keys:\n  material:\n    colour: [Color]\n",
		"malformed yaml": "host: [\n",
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}

	cfg, err := Parse(nil)
	require.NoError(t, err, "empty file is a valid configuration")
	assert.Empty(t, cfg.Host.Export)
}

func TestRenderTemplate(t *testing.T) {
	ctx := TemplateContext{
		Path: "/tmp/board stack/stackup.xml",
		Dir:  "/tmp/board stack",
		Base: "stackup.xml",
		Vars: env.Vars{"REV": "B"},
		Env:  env.Vars{"SIWAVE": "/opt/siwave"},
	}
	out, err := RenderTemplate("export", `{{ envOr "SIWAVE" "siwave" }}/bridge export {{ quote .Path }} --rev {{ .Vars.REV }} {{ default "" "x" }}`, ctx)
	require.NoError(t, err)
	assert.Equal(t, `/opt/siwave/bridge export "/tmp/board stack/stackup.xml" --rev B x`, out)

	_, err = RenderTemplate("bad", "{{ .Nope }}", ctx)
	assert.Error(t, err)
}
