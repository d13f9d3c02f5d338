package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNotConfigured indicates the directory integration is missing its
// token or primary collection id. A sync run cannot start without them.
var ErrNotConfigured = errors.New("config: directory integration not configured")

// SettingsSource reads persisted integration settings. Satisfied by
// *store.Store; defined here so config does not depend on the store
// package.
type SettingsSource interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// Setting keys mirrored from the store package. Duplicated string
// constants keep the import direction one-way.
const (
	settingToken              = "directory.token" //nolint:gosec // setting key, not a credential
	settingClientsCollection  = "directory.clients_collection"
	settingContactsCollection = "directory.contacts_collection"
	settingVendorsCollection  = "directory.vendors_collection"
)

// Provider resolves the effective directory settings for a sync run:
// values persisted through the dashboard's integration settings screen
// take precedence, file/environment configuration is the fallback. The
// resolved result is cached in-process until InvalidateSettings is
// called (the dashboard calls it whenever settings change, the file
// watcher calls it on config reload).
type Provider struct {
	holder   *Holder
	settings SettingsSource
	logger   *slog.Logger

	mu     sync.Mutex
	cached *DirectoryConfig
}

// NewProvider creates a Provider over the given holder and settings
// source. settings may be nil, in which case only file/env values apply.
func NewProvider(holder *Holder, settings SettingsSource, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}

	return &Provider{
		holder:   holder,
		settings: settings,
		logger:   logger,
	}
}

// Directory returns the effective directory configuration, resolving and
// caching it on first use. Returns ErrNotConfigured when the token or the
// clients collection id is missing from every layer.
func (p *Provider) Directory(ctx context.Context) (DirectoryConfig, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return *p.cached, nil
	}

	resolved := p.holder.Config().Directory

	if p.settings != nil {
		overrides := []struct {
			key  string
			dest *string
		}{
			{settingToken, &resolved.Token},
			{settingClientsCollection, &resolved.ClientsCollection},
			{settingContactsCollection, &resolved.ContactsCollection},
			{settingVendorsCollection, &resolved.VendorsCollection},
		}

		for _, o := range overrides {
			value, err := p.settings.GetSetting(ctx, o.key)
			if err != nil {
				return DirectoryConfig{}, fmt.Errorf("config: reading setting %s: %w", o.key, err)
			}

			if value != "" {
				*o.dest = value
			}
		}
	}

	if resolved.Token == "" || resolved.ClientsCollection == "" {
		return DirectoryConfig{}, fmt.Errorf("%w: token and clients_collection are required", ErrNotConfigured)
	}

	p.logger.Debug("resolved directory settings",
		slog.String("base_url", resolved.BaseURL),
		slog.Bool("has_contacts_collection", resolved.ContactsCollection != ""),
		slog.Bool("has_vendors_collection", resolved.VendorsCollection != ""),
	)

	p.cached = &resolved

	return resolved, nil
}

// InvalidateSettings drops the cached resolution so the next Directory
// call re-reads every layer. Idempotent; safe to call at any time.
func (p *Provider) InvalidateSettings() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cached = nil
}
