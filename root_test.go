package main

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.Contains(t, names, "sync")
	assert.Contains(t, names, "status")
	assert.Contains(t, names, "config")
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	for _, name := range []string{"config", "json", "verbose", "quiet"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestBuildLogger_FlagPrecedence(t *testing.T) {
	restore := func(v, q bool) {
		flagVerbose = v
		flagQuiet = q
	}
	defer restore(false, false)

	// Config level applies when no flags are set.
	restore(false, false)
	logger := buildLogger("warn")
	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))

	// --verbose overrides config.
	restore(true, false)
	logger = buildLogger("warn")
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	// --quiet wins over --verbose.
	restore(true, true)
	logger = buildLogger("debug")
	assert.False(t, logger.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, logger.Enabled(context.Background(), slog.LevelError))
}
