package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the Holder's config whenever the config file changes and
// invalidates the Provider's cached settings resolution. onReload, when
// non-nil, runs after every successful reload. It blocks until ctx is
// canceled. Watching the parent directory rather than the file itself
// survives editors that replace the file on save.
func Watch(ctx context.Context, holder *Holder, provider *Provider, onReload func(), logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: creating watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(holder.Path())
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("config: watching %s: %w", dir, err)
	}

	logger.Debug("watching config file", slog.String("path", holder.Path()))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != filepath.Clean(holder.Path()) {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadOrDefault(holder.Path())
			if err != nil {
				logger.Warn("config reload failed, keeping previous config",
					slog.String("path", holder.Path()),
					slog.String("error", err.Error()),
				)

				continue
			}

			applyEnvOverrides(cfg, ReadEnvOverrides())
			holder.Update(cfg)

			if provider != nil {
				provider.InvalidateSettings()
			}

			logger.Info("config reloaded", slog.String("path", holder.Path()))

			if onReload != nil {
				onReload()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("config watcher error", slog.String("error", err.Error()))
		}
	}
}
