// Package config implements TOML configuration loading for dirsync with
// environment overrides and a settings provider that prefers credentials
// persisted in the dashboard's integration settings over file/env values.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	Directory   DirectoryConfig   `toml:"directory"`
	Database    DatabaseConfig    `toml:"database"`
	TrustCenter TrustCenterConfig `toml:"trust_center"`
	Logging     LoggingConfig     `toml:"logging"`
}

// DirectoryConfig holds the directory-of-record API settings: the
// integration token and the three collection ids the sync engine reads.
type DirectoryConfig struct {
	BaseURL            string `toml:"base_url"`
	Token              string `toml:"token"`
	ClientsCollection  string `toml:"clients_collection"`
	ContactsCollection string `toml:"contacts_collection"`
	VendorsCollection  string `toml:"vendors_collection"`
}

// DatabaseConfig locates the dashboard's SQLite database.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// TrustCenterConfig holds the trust-center registry endpoint used for
// post-upsert enrichment.
type TrustCenterConfig struct {
	BaseURL string `toml:"base_url"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Directory: DirectoryConfig{
			BaseURL: "https://api.directory.example.com",
		},
		Database: DatabaseConfig{
			Path: "dirsync.db",
		},
		TrustCenter: TrustCenterConfig{
			BaseURL: "https://registry.trustcenter.example.com",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
