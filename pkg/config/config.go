// Package config loads harness configuration from ini files with a fallback
// chain: embedded defaults -> global config -> local config -> environment.
package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

//go:embed defaults
var defaultsFS embed.FS

// default locations, overridable for tests.
const (
	globalConfigDirName = "studio-e2e"
	localConfigName     = ".studio-e2e"
)

// Config holds the full harness configuration.
type Config struct {
	Values
}

// Load reads configuration with the standard fallback chain. configDir is the
// global config directory; empty string uses ~/.config/studio-e2e. Local config
// is .studio-e2e in the current directory. Environment variables win over files.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		configDir = filepath.Join(home, ".config", globalConfigDirName)
	}

	installer := newDefaultsInstaller(defaultsFS)
	if err := installer.Install(configDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	globalPath := filepath.Join(configDir, "config")
	localPath := localConfigName

	loader := newValuesLoader(defaultsFS)
	values, err := loader.Load(localPath, globalPath)
	if err != nil {
		return nil, fmt.Errorf("load values: %w", err)
	}

	applyEnvOverrides(&values)

	if err := values.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &Config{Values: values}, nil
}

// applyEnvOverrides applies STUDIO_E2E_* environment variables on top of file
// values. env wins because CI sets deployment-specific settings this way.
func applyEnvOverrides(v *Values) {
	if s := os.Getenv("STUDIO_E2E_BASE_URL"); s != "" {
		v.BaseURL = s
	}
	if s := os.Getenv("STUDIO_E2E_EMAIL"); s != "" {
		v.Email = s
	}
	if s := os.Getenv("STUDIO_E2E_PASSWORD"); s != "" {
		v.Password = s
	}
	if s := os.Getenv("STUDIO_E2E_TOKEN"); s != "" {
		v.APIToken = s
	}
	if s := os.Getenv("STUDIO_E2E_HEADLESS"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			v.Headless = b
			v.HeadlessSet = true
		}
	}
	if s := os.Getenv("STUDIO_E2E_DOWNLOADS_DIR"); s != "" {
		v.DownloadsDir = s
	}
}

// validate checks invariants that would otherwise fail deep inside a test run.
func (v *Values) validate() error {
	if v.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if !strings.HasPrefix(v.BaseURL, "http://") && !strings.HasPrefix(v.BaseURL, "https://") {
		return fmt.Errorf("base_url must start with http:// or https://, got %q", v.BaseURL)
	}
	if v.ActionTimeoutMs <= 0 {
		return fmt.Errorf("action_timeout_ms must be positive, got %d", v.ActionTimeoutMs)
	}
	if v.NavTimeoutMs <= 0 {
		return fmt.Errorf("nav_timeout_ms must be positive, got %d", v.NavTimeoutMs)
	}
	return nil
}
