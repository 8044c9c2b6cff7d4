package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_InstallsDefaults(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "studio-e2e")

	cfg, err := Load(configDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	// default config file should be installed on first run
	data, err := os.ReadFile(filepath.Join(configDir, "config"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "base_url")

	assert.Equal(t, "http://127.0.0.1:3000", cfg.BaseURL)
	assert.Equal(t, 5000, cfg.ActionTimeoutMs)
}

func TestLoad_DoesNotOverwriteExisting(t *testing.T) {
	configDir := t.TempDir()
	existing := "base_url = https://keepme.forgekit.dev\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config"), []byte(existing), 0o600))

	cfg, err := Load(configDir)
	require.NoError(t, err)
	assert.Equal(t, "https://keepme.forgekit.dev", cfg.BaseURL)

	data, err := os.ReadFile(filepath.Join(configDir, "config"))
	require.NoError(t, err)
	assert.Equal(t, existing, string(data))
}

func TestLoad_EnvOverrides(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config"),
		[]byte("base_url = https://file.forgekit.dev\nheadless = true\n"), 0o600))

	t.Setenv("STUDIO_E2E_BASE_URL", "https://env.forgekit.dev")
	t.Setenv("STUDIO_E2E_HEADLESS", "false")
	t.Setenv("STUDIO_E2E_TOKEN", "tok-from-env")

	cfg, err := Load(configDir)
	require.NoError(t, err)

	assert.Equal(t, "https://env.forgekit.dev", cfg.BaseURL)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "tok-from-env", cfg.APIToken)
}

func TestLoad_ValidationFailure(t *testing.T) {
	configDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config"),
		[]byte("base_url = not-a-url\n"), 0o600))

	_, err := Load(configDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base_url")
}
