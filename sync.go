package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opsdash/dirsync/internal/config"
	"github.com/opsdash/dirsync/internal/store"
	"github.com/opsdash/dirsync/internal/syncer"
	"github.com/opsdash/dirsync/internal/trustcenter"
)

func newSyncCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull the directory and reconcile it into the local database",
		Long: `Run one full sync: fetch every record from the clients collection,
upsert clients keyed by external id, replace role assignments, link vendor
products, and enrich trust-center fields.

Partial failures do not abort the run; per-record errors are collected
into the summary. With --watch the command stays resident and re-syncs
whenever the config file changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "stay resident and re-sync on config changes")

	return cmd
}

func runSync(ctx context.Context, watch bool) error {
	st, err := store.NewStore(cfgHolder.Config().Database.Path, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = st.Close() }()

	provider := config.NewProvider(cfgHolder, st, logger)

	var trust *trustcenter.Client
	if base := cfgHolder.Config().TrustCenter.BaseURL; base != "" {
		trust = trustcenter.NewClient(base, defaultHTTPClient(), logger)
	}

	engine := syncer.NewEngine(st, provider, trust, teamCache, logger)

	if err := runOnce(ctx, engine); err != nil {
		return err
	}

	if !watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching for config changes", slog.String("path", cfgHolder.Path()))

	return config.Watch(ctx, cfgHolder, provider, func() {
		if err := runOnce(ctx, engine); err != nil {
			logger.Error("sync after config reload failed", slog.String("error", err.Error()))
		}
	}, logger)
}

// runOnce executes a single sync run and prints its summary.
func runOnce(ctx context.Context, engine *syncer.Engine) error {
	report, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	return printReport(report)
}
