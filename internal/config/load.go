package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file and returns the resulting
// Config over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values. This supports the
// zero-config first run: persisted integration settings and environment
// variables can carry everything the engine needs.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the override chain:
// defaults -> config file -> environment variables. CLI flags are applied
// by the command layer on top of the result.
func Resolve(cliConfigPath string) (*Config, string, error) {
	env := ReadEnvOverrides()

	path := DefaultConfigPath()
	if env.ConfigPath != "" {
		path = env.ConfigPath
	}

	if cliConfigPath != "" {
		path = cliConfigPath
	}

	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}

	applyEnvOverrides(cfg, env)

	return cfg, path, nil
}

// applyEnvOverrides copies non-empty environment values over the file
// configuration. Environment wins over the file for one-off overrides.
func applyEnvOverrides(cfg *Config, env EnvOverrides) {
	if env.DirectoryToken != "" {
		cfg.Directory.Token = env.DirectoryToken
	}

	if env.DirectoryBaseURL != "" {
		cfg.Directory.BaseURL = env.DirectoryBaseURL
	}

	if env.ClientsCollection != "" {
		cfg.Directory.ClientsCollection = env.ClientsCollection
	}

	if env.ContactsCollection != "" {
		cfg.Directory.ContactsCollection = env.ContactsCollection
	}

	if env.VendorsCollection != "" {
		cfg.Directory.VendorsCollection = env.VendorsCollection
	}

	if env.DatabasePath != "" {
		cfg.Database.Path = env.DatabasePath
	}
}

// DefaultConfigPath returns the conventional config file location,
// honoring XDG_CONFIG_HOME when set.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg + "/dirsync/config.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "dirsync.toml"
	}

	return home + "/.config/dirsync/config.toml"
}
