package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		250 * time.Millisecond:  "250ms",
		1500 * time.Millisecond: "1.5s",
		90 * time.Second:        "1m30s",
	}

	for d, want := range cases {
		assert.Equal(t, want, formatDuration(d))
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()

	// Current year omits the year.
	thisYear := time.Date(now.Year(), 3, 5, 14, 30, 0, 0, time.Local)
	assert.Equal(t, "Mar  5 14:30", formatTime(thisYear))

	// Older timestamps show the year instead of the clock.
	old := time.Date(2019, 3, 5, 14, 30, 0, 0, time.Local)
	assert.Equal(t, "Mar  5  2019", formatTime(old))
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer

	printTable(&buf, []string{"ROLE", "COUNT"}, [][]string{
		{"se", "12"},
		{"compliance", "3"},
	})

	expected := "ROLE        COUNT\n" +
		"se          12   \n" +
		"compliance  3    \n"
	assert.Equal(t, expected, buf.String())
}

func TestColorize_PlainWhenNotTerminal(t *testing.T) {
	// Test binaries never run with stdout on a tty.
	assert.Equal(t, "hello", colorize(colorGreen, "hello"))
}
