package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/opsdash/dirsync/internal/syncer"
)

// ANSI color codes for terminal output.
const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// stdoutIsTerminal reports whether stdout is an interactive terminal.
// Colors and decorations are suppressed when piping.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// colorize wraps s in a color code when stdout is a terminal.
func colorize(color, s string) string {
	if !stdoutIsTerminal() {
		return s
	}

	return color + s + colorReset
}

// printReport writes a run summary to stdout, as JSON when --json is set.
func printReport(report *syncer.Report) error {
	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(struct {
			RunID         string   `json:"run_id"`
			Synced        int      `json:"synced"`
			Created       int      `json:"created"`
			Updated       int      `json:"updated"`
			SystemsLinked int      `json:"systems_linked"`
			Errors        []string `json:"errors"`
		}{
			RunID:         report.RunID,
			Synced:        report.Seen,
			Created:       report.Created,
			Updated:       report.Updated,
			SystemsLinked: report.SystemsLinked,
			Errors:        report.Errors,
		})
	}

	if !flagQuiet {
		fmt.Printf("%s %d clients (%d created, %d updated), %d systems linked\n",
			colorize(colorGreen, "Synced"),
			report.Seen, report.Created, report.Updated, report.SystemsLinked)
	}

	if len(report.Errors) > 0 {
		fmt.Printf("%s\n", colorize(colorRed, fmt.Sprintf("%d records failed:", len(report.Errors))))

		for _, e := range report.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}

	return nil
}

// formatDuration renders a duration compactly for display.
func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Minute:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	case d >= time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
}

// formatTime returns a compact timestamp for display.
func formatTime(t time.Time) string {
	now := time.Now()

	// Same calendar year: show "Jan  2 15:04"
	if t.Year() == now.Year() {
		return t.Format("Jan _2 15:04")
	}

	// Different year: show "Jan  2  2006"
	return t.Format("Jan _2  2006")
}

// printTable writes aligned columns to the given writer.
// headers and each row must have the same length.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}

	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow(w, headers, widths)

	for _, row := range rows {
		printRow(w, row, widths)
	}
}

// printRow writes a single padded row.
func printRow(w io.Writer, cells []string, widths []int) {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}

	fmt.Fprintln(w, strings.Join(parts, "  "))
}
