// Package syncer reconciles the external directory-of-record into the
// local store: it pages through the clients collection, resolves contact
// references to local users, upserts client rows keyed by external id,
// replaces role assignments, and links vendor products to the catalog.
package syncer

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/opsdash/dirsync/internal/config"
	"github.com/opsdash/dirsync/internal/directory"
)

// Fetcher is the slice of the directory client the engine needs.
// Satisfied by *directory.Client.
type Fetcher interface {
	QueryAll(ctx context.Context, collectionID string) ([]directory.Record, error)
	GetRecord(ctx context.Context, recordID string) (*directory.Record, error)
}

// Contact is one cached entry from the contacts collection.
type Contact struct {
	Name  string
	Email string
}

// SyncContext holds the per-run reference caches. It is constructed fresh
// for every run and never shared across runs, so a stale cache cannot leak
// between syncs. Contacts and vendors are warmed up front; framework names
// are point-looked-up lazily and memoized for the rest of the run.
type SyncContext struct {
	contacts map[string]Contact
	vendors  map[string]string

	fetcher    Fetcher
	frameworks map[string]string

	logger *slog.Logger
}

// buildCaches warms the contact and vendor caches with one paginated fetch
// each, run concurrently. A failed or unconfigured collection leaves its
// cache empty; downstream resolution degrades to "no match" instead of
// aborting the run.
func buildCaches(ctx context.Context, fetcher Fetcher, cfg config.DirectoryConfig, logger *slog.Logger) *SyncContext {
	sc := &SyncContext{
		contacts:   make(map[string]Contact),
		vendors:    make(map[string]string),
		fetcher:    fetcher,
		frameworks: make(map[string]string),
		logger:     logger,
	}

	var group errgroup.Group

	if cfg.ContactsCollection != "" {
		group.Go(func() error {
			records, err := fetcher.QueryAll(ctx, cfg.ContactsCollection)
			if err != nil {
				logger.Warn("contact cache build failed, contact resolution disabled for this run",
					slog.String("error", err.Error()))

				return nil
			}

			for i := range records {
				sc.contacts[records[i].ID] = contactFromRecord(&records[i])
			}

			logger.Debug("contact cache built", slog.Int("contacts", len(sc.contacts)))

			return nil
		})
	}

	if cfg.VendorsCollection != "" {
		group.Go(func() error {
			records, err := fetcher.QueryAll(ctx, cfg.VendorsCollection)
			if err != nil {
				logger.Warn("vendor cache build failed, vendor linking disabled for this run",
					slog.String("error", err.Error()))

				return nil
			}

			for i := range records {
				if name := recordTitle(&records[i]); name != "" {
					sc.vendors[records[i].ID] = name
				}
			}

			logger.Debug("vendor cache built", slog.Int("vendors", len(sc.vendors)))

			return nil
		})
	}

	// Workers only log, never fail.
	_ = group.Wait()

	return sc
}

// Contact returns the cached contact for an external reference id.
func (sc *SyncContext) Contact(id string) (Contact, bool) {
	c, ok := sc.contacts[id]
	return c, ok
}

// VendorName returns the cached product name for an external reference id.
func (sc *SyncContext) VendorName(id string) (string, bool) {
	name, ok := sc.vendors[id]
	return name, ok
}

// FrameworkName resolves a compliance-framework reference id to its name
// via a memoized point lookup. A failed lookup is cached as empty so one
// unreachable record costs at most one network call per run.
func (sc *SyncContext) FrameworkName(ctx context.Context, id string) string {
	if name, ok := sc.frameworks[id]; ok {
		return name
	}

	record, err := sc.fetcher.GetRecord(ctx, id)
	if err != nil {
		sc.logger.Warn("framework lookup failed",
			slog.String("record_id", id),
			slog.String("error", err.Error()))

		sc.frameworks[id] = ""

		return ""
	}

	name := recordTitle(record)
	sc.frameworks[id] = name

	return name
}

// contactFromRecord extracts the name and email from one contacts-collection
// record. Email comes from an email-typed property when present; otherwise
// any property whose name hints at "email" is read as plain text. Property
// names are scanned in sorted order so a record with several candidate
// fields yields the same email on every run.
func contactFromRecord(rec *directory.Record) Contact {
	c := Contact{Name: recordTitle(rec)}

	names := make([]string, 0, len(rec.Properties))
	for name := range rec.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if rec.Properties[name].Kind == directory.KindEmail {
			if s := rec.Properties[name].PlainText(); s != "" {
				c.Email = s
				break
			}
		}
	}

	if c.Email == "" {
		for _, name := range names {
			if strings.Contains(strings.ToLower(name), "email") {
				if s := rec.Properties[name].PlainText(); s != "" {
					c.Email = s
					break
				}
			}
		}
	}

	return c
}

// recordTitle returns the text of the record's title property, empty when
// the record has none.
func recordTitle(rec *directory.Record) string {
	for _, prop := range rec.Properties {
		if prop.Kind == directory.KindTitle {
			return prop.PlainText()
		}
	}

	return ""
}
