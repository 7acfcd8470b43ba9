package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Build.OutputName != "output" {
		t.Errorf("expected default output_name 'output', got %q", cfg.Build.OutputName)
	}
	if cfg.Build.Warnings != WarningsShow {
		t.Errorf("expected default warnings 'show', got %q", cfg.Build.Warnings)
	}
	if cfg.Build.LibsPrefix != "libs" {
		t.Errorf("expected default libs_prefix 'libs', got %q", cfg.Build.LibsPrefix)
	}
}

func TestWarningPolicyValidation(t *testing.T) {
	tests := []struct {
		policy WarningPolicy
		valid  bool
	}{
		{WarningsShow, true},
		{WarningsSuppress, true},
		{WarningsAsErrors, true},
		{WarningPolicy("invalid"), false},
		{WarningPolicy(""), false},
		{WarningPolicy("SHOW"), false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			if got := tt.policy.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v for %q", got, tt.valid, tt.policy)
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name      string
		config    *Config
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid default config",
			config:    DefaultConfig(),
			wantError: false,
		},
		{
			name: "valid werr policy",
			config: &Config{
				Build: BuildConfig{
					OutputName: "output",
					Warnings:   WarningsAsErrors,
				},
			},
			wantError: false,
		},
		{
			name: "invalid warnings policy",
			config: &Config{
				Build: BuildConfig{
					OutputName: "output",
					Warnings:   WarningPolicy("loud"),
				},
			},
			wantError: true,
			errorMsg:  "invalid build.warnings",
		},
		{
			name: "empty output name",
			config: &Config{
				Build: BuildConfig{
					OutputName: "",
					Warnings:   WarningsShow,
				},
			},
			wantError: true,
			errorMsg:  "output_name must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errorMsg)
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func withTempProjectDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()

	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", tmpDir)
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })

	return tmpDir
}

func TestLoadConfigNoFiles(t *testing.T) {
	withTempProjectDir(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.OutputName != "output" {
		t.Errorf("expected default output_name 'output', got %q", cfg.Build.OutputName)
	}
}

func TestLoadConfigProjectFile(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	projectConfig := `[build]
output_name = "myprogram"
warnings = "error"
`
	configPath := filepath.Join(tmpDir, "amun.toml")
	if err := os.WriteFile(configPath, []byte(projectConfig), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.OutputName != "myprogram" {
		t.Errorf("expected output_name 'myprogram' from project config, got %q", cfg.Build.OutputName)
	}
	if cfg.Build.Warnings != WarningsAsErrors {
		t.Errorf("expected warnings 'error' from project config, got %q", cfg.Build.Warnings)
	}
}

func TestLoadConfigCLIOverride(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	projectConfig := `[build]
output_name = "myprogram"
`
	configPath := filepath.Join(tmpDir, "amun.toml")
	if err := os.WriteFile(configPath, []byte(projectConfig), 0644); err != nil {
		t.Fatal(err)
	}

	overrides := &Config{
		Build: BuildConfig{
			OutputName: "override.out",
		},
	}

	cfg, err := Load(overrides)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Build.OutputName != "override.out" {
		t.Errorf("expected CLI override to win, got %q", cfg.Build.OutputName)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	invalidConfig := `[build
output_name = "x"  # missing closing bracket
`
	configPath := filepath.Join(tmpDir, "amun.toml")
	if err := os.WriteFile(configPath, []byte(invalidConfig), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(nil); err == nil {
		t.Error("expected error for invalid TOML, got nil")
	}
}

func TestLoadConfigInvalidValue(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	invalidConfig := `[build]
warnings = "loud"
`
	configPath := filepath.Join(tmpDir, "amun.toml")
	if err := os.WriteFile(configPath, []byte(invalidConfig), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(nil)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected 'invalid configuration' error, got %v", err)
	}
}

func TestLoadConfigLinkerFlags(t *testing.T) {
	tmpDir := withTempProjectDir(t)

	projectConfig := `[build]
linker_flags = ["-lm", "-lpthread"]
`
	configPath := filepath.Join(tmpDir, "amun.toml")
	if err := os.WriteFile(configPath, []byte(projectConfig), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Build.LinkerFlags) != 2 || cfg.Build.LinkerFlags[0] != "-lm" {
		t.Errorf("expected linker flags from project config, got %v", cfg.Build.LinkerFlags)
	}
}
