package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	app "github.com/okian/casewatch/internal/app"
)

func newOnceCmd(configPath *string) *cobra.Command {
	var term string

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single refresh cycle and print the ranked view as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := setup(cmd, *configPath)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			svc, err := newService(cfg, newSource(cfg), app.WithImmediateRefresh(false))
			if err != nil {
				return err
			}
			defer svc.Stop()
			return runOnce(ctx, svc, term, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&term, "search", "q", "", "case-insensitive name filter")
	return cmd
}

type onceEntry struct {
	Rank   int              `json:"rank"`
	Name   string           `json:"name"`
	Metric int64            `json:"metric"`
	Fields map[string]int64 `json:"fields,omitempty"`
}

type onceOutput struct {
	Version uint64           `json:"version"`
	CycleID string           `json:"cycle_id"`
	Term    string           `json:"term"`
	Totals  map[string]int64 `json:"totals"`
	Entries []onceEntry      `json:"entries"`
}

// runOnce refreshes svc once and writes the filtered view to w.
func runOnce(ctx context.Context, svc *app.Service, term string, w io.Writer) error {
	if err := svc.Refresh(ctx); err != nil {
		return err
	}
	snap, err := svc.CurrentSnapshot()
	if err != nil {
		return err
	}
	svc.SetSearchTerm(term)
	view, err := svc.CurrentView()
	if err != nil {
		return err
	}
	totals, err := svc.AggregateTotals()
	if err != nil {
		return err
	}

	positions := make(map[string]int, len(snap.Records))
	for i, r := range snap.Records {
		positions[r.Name] = i + 1
	}
	out := onceOutput{
		Version: snap.Version,
		CycleID: snap.CycleID,
		Term:    term,
		Totals:  totals,
		Entries: make([]onceEntry, len(view)),
	}
	for i, r := range view {
		out.Entries[i] = onceEntry{Rank: positions[r.Name], Name: r.Name, Metric: r.Metric, Fields: r.Fields}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
