package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig             = "DIRSYNC_CONFIG"
	EnvDirectoryToken     = "DIRSYNC_DIRECTORY_TOKEN" //nolint:gosec // env var name, not a credential
	EnvDirectoryBaseURL   = "DIRSYNC_DIRECTORY_BASE_URL"
	EnvClientsCollection  = "DIRSYNC_CLIENTS_COLLECTION"
	EnvContactsCollection = "DIRSYNC_CONTACTS_COLLECTION"
	EnvVendorsCollection  = "DIRSYNC_VENDORS_COLLECTION"
	EnvDatabasePath       = "DIRSYNC_DB_PATH"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath         string
	DirectoryToken     string
	DirectoryBaseURL   string
	ClientsCollection  string
	ContactsCollection string
	VendorsCollection  string
	DatabasePath       string
}

// ReadEnvOverrides reads environment variables and returns any overrides
// found. This does not modify the Config; Resolve applies the fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath:         os.Getenv(EnvConfig),
		DirectoryToken:     os.Getenv(EnvDirectoryToken),
		DirectoryBaseURL:   os.Getenv(EnvDirectoryBaseURL),
		ClientsCollection:  os.Getenv(EnvClientsCollection),
		ContactsCollection: os.Getenv(EnvContactsCollection),
		VendorsCollection:  os.Getenv(EnvVendorsCollection),
		DatabasePath:       os.Getenv(EnvDatabasePath),
	}
}
