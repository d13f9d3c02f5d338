package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, `
[directory]
base_url = "https://dir.internal.example"
token = "secret"
clients_collection = "col-clients"
contacts_collection = "col-contacts"
vendors_collection = "col-vendors"

[database]
path = "/var/lib/dirsync/state.db"

[logging]
level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://dir.internal.example", cfg.Directory.BaseURL)
	assert.Equal(t, "secret", cfg.Directory.Token)
	assert.Equal(t, "col-clients", cfg.Directory.ClientsCollection)
	assert.Equal(t, "/var/lib/dirsync/state.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Unset sections keep their defaults.
	assert.Equal(t, DefaultConfig().TrustCenter.BaseURL, cfg.TrustCenter.BaseURL)
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, `[directory`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestResolve_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
[directory]
token = "file-token"
clients_collection = "file-col"
`)

	t.Setenv(EnvDirectoryToken, "env-token")
	t.Setenv(EnvDatabasePath, "/tmp/env.db")

	cfg, resolvedPath, err := Resolve(path)
	require.NoError(t, err)

	assert.Equal(t, path, resolvedPath)
	assert.Equal(t, "env-token", cfg.Directory.Token)
	assert.Equal(t, "file-col", cfg.Directory.ClientsCollection)
	assert.Equal(t, "/tmp/env.db", cfg.Database.Path)
}

func TestResolve_EnvConfigPath(t *testing.T) {
	path := writeConfigFile(t, `
[directory]
token = "from-env-path"
`)

	t.Setenv(EnvConfig, path)

	cfg, resolvedPath, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, path, resolvedPath)
	assert.Equal(t, "from-env-path", cfg.Directory.Token)
}
