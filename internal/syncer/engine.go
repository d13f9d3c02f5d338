package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opsdash/dirsync/internal/config"
	"github.com/opsdash/dirsync/internal/directory"
	"github.com/opsdash/dirsync/internal/kvcache"
	"github.com/opsdash/dirsync/internal/store"
	"github.com/opsdash/dirsync/internal/trustcenter"
)

// ErrRunInProgress is returned when Run is invoked while another run holds
// the engine. Overlapping runs would race on the delete-then-insert
// assignment replacement, so they are refused outright.
var ErrRunInProgress = errors.New("syncer: sync already in progress")

// teamCachePrefix is the downstream key-value cache namespace holding
// team aggregate counts derived from assignments.
const teamCachePrefix = "team:"

// Report is the summary every completed run returns. Seen counts records
// that made it through the per-record pipeline; fetched records that
// failed mid-pipeline appear in Errors instead.
type Report struct {
	RunID         string
	Seen          int
	Created       int
	Updated       int
	SystemsLinked int
	Errors        []string
}

// Engine drives one directory sync run end to end.
type Engine struct {
	store    *store.Store
	provider *config.Provider
	trust    *trustcenter.Client
	cache    *kvcache.Cache
	logger   *slog.Logger

	// newFetcher builds the directory client once the run's credentials
	// are resolved. Overridable in tests.
	newFetcher func(cfg config.DirectoryConfig) Fetcher
	newRunID   func() string
	now        func() time.Time

	// running serializes runs; TryLock makes overlap a refusal, not a wait.
	running sync.Mutex
}

// NewEngine creates a sync engine. trust and cache may be nil, which
// disables trust-center enrichment and downstream cache invalidation.
func NewEngine(st *store.Store, provider *config.Provider, trust *trustcenter.Client, cache *kvcache.Cache, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		store:    st,
		provider: provider,
		trust:    trust,
		cache:    cache,
		logger:   logger,
		newFetcher: func(cfg config.DirectoryConfig) Fetcher {
			return directory.NewClient(cfg.BaseURL, nil, directory.StaticToken(cfg.Token), logger)
		},
		newRunID: uuid.NewString,
		now:      time.Now,
	}
}

// Run executes one full sync. Missing configuration and a failed primary
// fetch abort the run; every other failure is scoped to the record that
// caused it and collected into the report's error list. The report is
// always returned on a started run, even when every record failed.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if !e.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.running.Unlock()

	startedAt := e.now()

	cfg, err := e.provider.Directory(ctx)
	if err != nil {
		return nil, fmt.Errorf("syncer: loading configuration: %w", err)
	}

	users, err := e.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("syncer: listing users: %w", err)
	}

	resolver := newResolver(users)
	fetcher := e.newFetcher(cfg)
	sc := buildCaches(ctx, fetcher, cfg, e.logger)

	records, err := fetcher.QueryAll(ctx, cfg.ClientsCollection)
	if err != nil {
		return nil, fmt.Errorf("syncer: fetching clients collection: %w", err)
	}

	catalog := vendorCatalog{}

	systems, err := e.store.ListSystems(ctx)
	if err != nil {
		e.logger.Warn("listing vendor catalog failed, vendor linking disabled for this run",
			slog.String("error", err.Error()))
	} else {
		catalog = newVendorCatalog(systems)
	}

	report := &Report{RunID: e.newRunID()}

	e.logger.Info("sync started",
		slog.String("run_id", report.RunID),
		slog.Int("records", len(records)),
		slog.Int("users", len(users)),
	)

	for i := range records {
		e.syncRecord(ctx, &records[i], sc, resolver, catalog, report)
	}

	if e.cache != nil {
		dropped := e.cache.InvalidatePrefix(teamCachePrefix)
		e.logger.Debug("invalidated team caches", slog.Int("entries", dropped))
	}

	finishedAt := e.now()

	if err := e.store.SaveRun(ctx, &store.Run{
		ID:            report.RunID,
		StartedAt:     startedAt.UnixNano(),
		FinishedAt:    finishedAt.UnixNano(),
		Seen:          report.Seen,
		Created:       report.Created,
		Updated:       report.Updated,
		SystemsLinked: report.SystemsLinked,
		Errors:        report.Errors,
	}); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Error saving run summary: %v", err))
	}

	e.logger.Info("sync finished",
		slog.String("run_id", report.RunID),
		slog.Int("seen", report.Seen),
		slog.Int("created", report.Created),
		slog.Int("updated", report.Updated),
		slog.Int("systems_linked", report.SystemsLinked),
		slog.Int("errors", len(report.Errors)),
		slog.Duration("elapsed", finishedAt.Sub(startedAt)),
	)

	return report, nil
}

// syncRecord runs one record through transform, upsert, assignment
// replacement, vendor linking, and enrichment. A failure at any step
// records an error and abandons the rest of this record's pipeline; the
// base upsert may already have committed, which is accepted as
// "at least the base entity synced".
func (e *Engine) syncRecord(ctx context.Context, rec *directory.Record, sc *SyncContext, resolver *Resolver, catalog vendorCatalog, report *Report) {
	name := recordTitle(rec)
	if name == "" {
		name = rec.ID
	}

	fail := func(err error) {
		report.Errors = append(report.Errors, fmt.Sprintf("Error syncing %q: %v", name, err))
		e.logger.Warn("record sync failed",
			slog.String("record", name),
			slog.String("external_id", rec.ID),
			slog.String("error", err.Error()),
		)
	}

	tr, err := transformRecord(ctx, rec, sc)
	if err != nil {
		fail(err)
		return
	}

	client, created, err := e.store.UpsertClient(ctx, rec.ID, tr.fields)
	if err != nil {
		fail(err)
		return
	}

	if created {
		report.Created++
	} else {
		report.Updated++
	}

	assignments := resolveAssignments(tr, resolver, client.ID)
	if err := e.store.ReplaceAssignments(ctx, client.ID, assignments); err != nil {
		fail(err)
		return
	}

	// Legacy pointer columns are best effort; a failure here must not
	// undo an otherwise complete record.
	err = e.store.UpdateLegacyRoleNames(ctx, client.ID,
		tr.firstRoleName(store.RoleSE),
		tr.firstRoleName(store.RolePrimary),
		tr.secondaryNames(),
		tr.firstRoleName(store.RoleCompliance),
	)
	if err != nil {
		fail(err)
	}

	linked, err := linkVendors(ctx, e.store, client.ID, vendorNames(rec, sc), catalog)
	report.SystemsLinked += linked

	if err != nil {
		fail(err)
		return
	}

	e.enrich(ctx, client)

	report.Seen++
}

// enrich looks the client's website domain up in the trust-center registry
// and writes the result onto the client when found. Every failure here is
// swallowed and logged; enrichment is decoration, not sync correctness.
func (e *Engine) enrich(ctx context.Context, client *store.Client) {
	if e.trust == nil || client.Website == "" {
		return
	}

	domain := websiteDomain(client.Website)
	if domain == "" {
		return
	}

	result, err := e.trust.Lookup(ctx, domain)
	if err != nil {
		e.logger.Warn("trust center lookup failed",
			slog.String("domain", domain),
			slog.String("error", err.Error()),
		)

		return
	}

	if !result.Found {
		return
	}

	if err := e.store.UpdateTrustCenter(ctx, client.ID, result.TrustCenterURL, result.Platform); err != nil {
		e.logger.Warn("writing trust center fields failed",
			slog.Int64("client_id", client.ID),
			slog.String("error", err.Error()),
		)
	}
}

// websiteDomain reduces a website field to a bare domain. The directory
// carries anything from "acme.com" to full URLs with paths.
func websiteDomain(website string) string {
	s := strings.TrimSpace(website)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return ""
		}

		s = u.Hostname()
	} else if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	return strings.TrimPrefix(s, "www.")
}
