// Package config contains the loader and typed model for stackupctl.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/codex-k8s/stackupctl/internal/env"
	"github.com/codex-k8s/stackupctl/internal/stackup"
)

// DefaultPath is the configuration file looked up when --config is not given.
const DefaultPath = "stackupctl.yaml"

// defaultHostTimeout bounds a single host export/import command.
const defaultHostTimeout = 2 * time.Minute

// Config is the parsed stackupctl.yaml.
type Config struct {
	// EnvFiles lists .env files merged into the host command environment.
	// A leading "?" marks a file as optional.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// Host configures the commands bridging to the host EDA application.
	Host HostConfig `yaml:"host,omitempty"`
	// Keys overrides the attribute/element names tried for record fields.
	Keys KeysConfig `yaml:"keys,omitempty"`

	// BaseDir is the directory relative paths in the file resolve against.
	BaseDir string `yaml:"-"`
}

// HostConfig describes how stackups are exported from and imported into the host.
type HostConfig struct {
	// Export is a command template writing the host's current stackup to {{ .Path }}.
	Export string `yaml:"export,omitempty"`
	// Import is a command template loading {{ .Path }} into the host.
	Import string `yaml:"import,omitempty"`
	// Timeout is a Go duration string bounding each command (default 2m).
	Timeout string `yaml:"timeout,omitempty"`
	// WorkDir is the command working directory, relative to BaseDir.
	WorkDir string `yaml:"workDir,omitempty"`
}

// KeysConfig maps record field names to candidate keys in priority order.
type KeysConfig struct {
	Layer    map[string][]string `yaml:"layer,omitempty"`
	Material map[string][]string `yaml:"material,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &Config{BaseDir: wd}
}

// Load reads the configuration at path. When required is false a missing file
// yields Default() instead of an error.
func Load(path string, required bool) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("config path is empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	raw, err := os.ReadFile(absPath)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %q: %w", absPath, err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse config %q: %w", absPath, err)
	}
	cfg.BaseDir = filepath.Dir(absPath)
	return cfg, nil
}

// Parse decodes YAML configuration, rejecting unknown fields.
func Parse(raw []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if _, err := cfg.HostTimeout(); err != nil {
		return nil, err
	}
	if _, err := cfg.StackupKeys(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// HostTimeout returns the configured per-command timeout.
func (c *Config) HostTimeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.Host.Timeout)
	if raw == "" {
		return defaultHostTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("host.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("host.timeout must be positive, got %s", raw)
	}
	return d, nil
}

// HostWorkDir returns the absolute working directory for host commands.
func (c *Config) HostWorkDir() string {
	dir := strings.TrimSpace(c.Host.WorkDir)
	if dir == "" {
		return c.BaseDir
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.BaseDir, dir)
}

// StackupKeys returns the default key chains with the configured overrides applied.
func (c *Config) StackupKeys() (stackup.Keys, error) {
	keys, unknown := stackup.DefaultKeys().WithOverrides(c.Keys.Layer, c.Keys.Material)
	if len(unknown) > 0 {
		return stackup.Keys{}, fmt.Errorf("keys: unknown fields %s", strings.Join(unknown, ", "))
	}
	return keys, nil
}

// HostEnv returns the OS environment merged with the configured env files.
func (c *Config) HostEnv() (env.Vars, error) {
	fileVars, err := env.LoadEnvFiles(c.BaseDir, c.EnvFiles)
	if err != nil {
		return nil, err
	}
	return env.Merge(env.FromOS(), fileVars), nil
}

// TemplateContext is the data available to host command templates.
type TemplateContext struct {
	// Path is the absolute stackup file path.
	Path string
	// Dir and Base split Path.
	Dir  string
	Base string
	// Vars holds inline --vars values.
	Vars env.Vars
	// Env is the merged command environment.
	Env env.Vars
}

// RenderTemplate renders a host command template with the shared helpers.
func RenderTemplate(name, raw string, ctx TemplateContext) (string, error) {
	tmpl, err := template.New(name).Funcs(buildFuncMap(ctx)).Option("missingkey=error").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", fmt.Errorf("execute template %q: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// buildFuncMap constructs the helpers available in command templates.
func buildFuncMap(ctx TemplateContext) template.FuncMap {
	return template.FuncMap{
		"default": funcDef,
		"envOr":   funcEnvOr(ctx.Env),
		"quote":   funcQuote,
		"toSlash": filepath.ToSlash,
	}
}

// funcDef returns def when value is empty or whitespace, otherwise value.
func funcDef(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}

// funcEnvOr returns a lookup into envMap falling back to def.
func funcEnvOr(envMap env.Vars) func(key, def string) string {
	return func(key, def string) string {
		if v, ok := envMap[key]; ok && v != "" {
			return v
		}
		return def
	}
}

// funcQuote wraps value in double quotes for the command splitter, escaping embedded quotes.
func funcQuote(value string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value) + `"`
}
