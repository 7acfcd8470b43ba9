// Package config loads Amun's project configuration (amun.toml),
// layering CLI overrides on top: CLI flags win, then the project
// file, then a user config, then built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// WarningPolicy controls how the Compiler driver treats warnings
// emitted during a build (SPEC_FULL §4.7, the `-w`/`-werr` CLI flags).
type WarningPolicy string

const (
	WarningsShow     WarningPolicy = "show"
	WarningsSuppress WarningPolicy = "suppress"
	WarningsAsErrors WarningPolicy = "error"
)

// IsValid reports whether the warning policy is one Amun recognizes.
func (p WarningPolicy) IsValid() bool {
	switch p {
	case WarningsShow, WarningsSuppress, WarningsAsErrors:
		return true
	default:
		return false
	}
}

// BuildConfig controls the Compiler driver's default build behavior,
// overridable by the `-o`/`-w`/`-werr`/`-l` CLI flags (§6).
type BuildConfig struct {
	// OutputName is the linked executable's name, overridden by `-o`.
	OutputName string `toml:"output_name"`

	// Warnings selects how diagnostics at warning level are treated.
	Warnings WarningPolicy `toml:"warnings"`

	// LinkerFlags are passed through to the system linker; the arguments
	// after the single `-l` CLI flag replace this list.
	LinkerFlags []string `toml:"linker_flags"`

	// LibsPrefix is the directory `import "x"` resolves relative to.
	LibsPrefix string `toml:"libs_prefix"`
}

// Config is the complete Amun project configuration (amun.toml).
type Config struct {
	Build BuildConfig `toml:"build"`
}

// DefaultConfig returns the built-in defaults, the lowest-priority
// layer of Load's precedence chain.
func DefaultConfig() *Config {
	return &Config{
		Build: BuildConfig{
			OutputName: "output",
			Warnings:   WarningsShow,
			LibsPrefix: "libs",
		},
	}
}

// Load loads configuration from multiple sources with precedence:
//  1. CLI flags (highest priority) - passed as overrides
//  2. Project amun.toml (current directory)
//  3. User config (~/.amun/config.toml)
//  4. Built-in defaults (lowest priority)
func Load(overrides *Config) (*Config, error) {
	cfg := DefaultConfig()

	userConfigPath := filepath.Join(os.Getenv("HOME"), ".amun", "config.toml")
	if err := loadConfigFile(userConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}

	projectConfigPath := "amun.toml"
	if err := loadConfigFile(projectConfigPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load project config: %w", err)
	}

	if overrides != nil {
		if overrides.Build.OutputName != "" {
			cfg.Build.OutputName = overrides.Build.OutputName
		}
		if overrides.Build.Warnings != "" {
			cfg.Build.Warnings = overrides.Build.Warnings
		}
		if len(overrides.Build.LinkerFlags) > 0 {
			cfg.Build.LinkerFlags = overrides.Build.LinkerFlags
		}
		if overrides.Build.LibsPrefix != "" {
			cfg.Build.LibsPrefix = overrides.Build.LibsPrefix
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadConfigFile loads a TOML configuration file into cfg. A missing
// file is not an error; the already-populated defaults stand.
func loadConfigFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// Validate checks that every configured enum field holds a recognized
// value.
func (c *Config) Validate() error {
	if c.Build.Warnings != "" && !c.Build.Warnings.IsValid() {
		return fmt.Errorf("invalid build.warnings: %q (must be 'show', 'suppress', or 'error')", c.Build.Warnings)
	}
	if c.Build.OutputName == "" {
		return fmt.Errorf("build.output_name must not be empty")
	}
	return nil
}
