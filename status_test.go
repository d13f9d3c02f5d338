package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatusCmd(t *testing.T) {
	cmd := newStatusCmd()
	assert.Equal(t, "status", cmd.Name())
}

func TestRunOutput_CarriesStartTimeForDisplay(t *testing.T) {
	started := time.Date(2026, 8, 30, 9, 15, 0, 0, time.UTC)

	ro := runOutput{
		StartedAt: started.Format(time.RFC3339),
		startedAt: started,
	}

	// The JSON field and the display time must name the same instant;
	// the text renderer reads the time directly, never reparsing.
	parsed, err := time.Parse(time.RFC3339, ro.StartedAt)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(ro.startedAt))
	assert.Equal(t, formatTime(started), formatTime(ro.startedAt))
}
