package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsdash/dirsync/internal/kvcache"
	"github.com/opsdash/dirsync/internal/store"
)

// teamCache holds derived team aggregates. The sync engine invalidates
// the team: prefix after every run so status never shows stale counts.
var teamCache = kvcache.New()

const (
	teamCountsKey = "team:assignment_counts"
	teamCountsTTL = 5 * time.Minute
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the latest sync run and assignment counts",
		RunE:  runStatus,
	}
}

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	LastRun     *runOutput        `json:"last_run"`
	Clients     int               `json:"clients"`
	Assignments map[store.Role]int `json:"assignments"`
}

type runOutput struct {
	ID            string   `json:"id"`
	StartedAt     string   `json:"started_at"`
	Duration      string   `json:"duration"`
	startedAt     time.Time
	Synced        int      `json:"synced"`
	Created       int      `json:"created"`
	Updated       int      `json:"updated"`
	SystemsLinked int      `json:"systems_linked"`
	Errors        []string `json:"errors"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	st, err := store.NewStore(cfgHolder.Config().Database.Path, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = st.Close() }()

	run, err := st.LatestRun(ctx)
	if err != nil {
		return fmt.Errorf("reading run history: %w", err)
	}

	clients, err := st.CountClients(ctx)
	if err != nil {
		return fmt.Errorf("counting clients: %w", err)
	}

	counts, err := assignmentCounts(ctx, st)
	if err != nil {
		return fmt.Errorf("counting assignments: %w", err)
	}

	out := statusOutput{Clients: clients, Assignments: counts}
	if run != nil {
		started := time.Unix(0, run.StartedAt)

		out.LastRun = &runOutput{
			ID:            run.ID,
			StartedAt:     started.Format(time.RFC3339),
			Duration:      formatDuration(time.Duration(run.FinishedAt - run.StartedAt)),
			startedAt:     started,
			Synced:        run.Seen,
			Created:       run.Created,
			Updated:       run.Updated,
			SystemsLinked: run.SystemsLinked,
			Errors:        run.Errors,
		}
	}

	if flagJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	printStatusText(out)

	return nil
}

// assignmentCounts reads the per-role assignment totals through the team
// cache so repeated status calls within a resident process stay cheap.
func assignmentCounts(ctx context.Context, st *store.Store) (map[store.Role]int, error) {
	if v, ok := teamCache.Get(teamCountsKey); ok {
		if counts, ok := v.(map[store.Role]int); ok {
			return counts, nil
		}
	}

	counts, err := st.AssignmentCounts(ctx)
	if err != nil {
		return nil, err
	}

	teamCache.Set(teamCountsKey, counts, teamCountsTTL)

	return counts, nil
}

func printStatusText(out statusOutput) {
	if out.LastRun == nil {
		fmt.Println("No sync runs recorded. Run 'dirsync sync' to get started.")
	} else {
		r := out.LastRun

		fmt.Printf("Last run:       %s (%s, took %s)\n",
			r.ID, formatTime(r.startedAt), r.Duration)
		fmt.Printf("  Synced:       %d (%d created, %d updated)\n", r.Synced, r.Created, r.Updated)
		fmt.Printf("  Linked:       %d systems\n", r.SystemsLinked)

		if len(r.Errors) == 0 {
			fmt.Printf("  Errors:       none\n")
		} else {
			fmt.Printf("  Errors:       %s\n", colorize(colorRed, fmt.Sprintf("%d", len(r.Errors))))
			for _, e := range r.Errors {
				fmt.Printf("    - %s\n", e)
			}
		}
	}

	fmt.Printf("Clients:        %d\n", out.Clients)

	fmt.Println("Assignments:")

	rows := make([][]string, 0, len(store.Roles))
	for _, role := range store.Roles {
		rows = append(rows, []string{string(role), fmt.Sprintf("%d", out.Assignments[role])})
	}

	printTable(os.Stdout, []string{"ROLE", "COUNT"}, rows)
}
