package cli

import (
	"os"
	"strings"

	envparse "github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
)

// rootEnv defines root CLI defaults sourced from STACKUPCTL_* env vars.
type rootEnv struct {
	// ConfigPath is the stackupctl.yaml path from STACKUPCTL_CONFIG.
	ConfigPath string `env:"STACKUPCTL_CONFIG"`
	// File is the stackup file from STACKUPCTL_FILE.
	File string `env:"STACKUPCTL_FILE"`
	// Vars is a k=v,k2=v2 list from STACKUPCTL_VARS.
	Vars string `env:"STACKUPCTL_VARS"`
	// LogLevel is the logging level from STACKUPCTL_LOG_LEVEL.
	LogLevel string `env:"STACKUPCTL_LOG_LEVEL"`
}

// hostEnv overrides host settings of stackupctl.yaml.
type hostEnv struct {
	// ExportCmd replaces host.export from STACKUPCTL_EXPORT_CMD.
	ExportCmd string `env:"STACKUPCTL_EXPORT_CMD"`
	// ImportCmd replaces host.import from STACKUPCTL_IMPORT_CMD.
	ImportCmd string `env:"STACKUPCTL_IMPORT_CMD"`
	// Timeout replaces host.timeout from STACKUPCTL_HOST_TIMEOUT.
	Timeout string `env:"STACKUPCTL_HOST_TIMEOUT"`
}

// parseEnv fills target from STACKUPCTL_* env vars via caarlos0/env.
func parseEnv(target interface{}) error {
	return envparse.Parse(target)
}

// envPresent reports whether a non-empty env var exists.
func envPresent(key string) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	return strings.TrimSpace(val) != ""
}

// applyRootEnv copies env defaults into flags the user did not set.
func applyRootEnv(cmd *cobra.Command, opts *Options) error {
	var envCfg rootEnv
	if err := parseEnv(&envCfg); err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("config") && envPresent("STACKUPCTL_CONFIG") {
		opts.ConfigPath = envCfg.ConfigPath
	}
	if !flags.Changed("file") && envPresent("STACKUPCTL_FILE") {
		opts.File = envCfg.File
	}
	if !flags.Changed("vars") && envPresent("STACKUPCTL_VARS") {
		opts.Vars = envCfg.Vars
	}
	if !flags.Changed("log-level") && envPresent("STACKUPCTL_LOG_LEVEL") {
		if err := flags.Set("log-level", envCfg.LogLevel); err != nil {
			return err
		}
	}
	return nil
}

// configRequired reports whether the user pointed at a config file explicitly.
func configRequired(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("config") || envPresent("STACKUPCTL_CONFIG")
}
