package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"shoebox/internal/ledger"
	"shoebox/internal/match"
	"shoebox/internal/queue"
)

type ledgerReport struct {
	Root       string         `json:"root"`
	LedgerPath string         `json:"ledger_path"`
	Entries    int            `json:"entries"`
	Matched    int            `json:"matched"`
	Resolved   int            `json:"resolved"`
	WithGeotag int            `json:"with_geotag"`
	Tiers      map[string]int `json:"tiers"`
}

func newReportCommand(ctx *commandContext) *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "report <itemID>",
		Short: "Summarize the ledger for a processed root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", id)
				}

				if _, err := os.Stat(ledger.PathFor(item.RootPath)); err != nil {
					return fmt.Errorf("no ledger for %s; run processing first", item.RootPath)
				}
				led, err := ledger.Open(item.RootPath)
				if err != nil {
					return err
				}

				entries := led.Entries()
				report := ledgerReport{
					Root:       item.RootPath,
					LedgerPath: led.Path(),
					Entries:    len(entries),
					Tiers:      make(map[string]int),
				}
				for _, entry := range entries {
					if entry.Matched() {
						report.Tiers[entry.MatchTier]++
						if entry.MatchTier != match.TierUnmatched {
							report.Matched++
						}
					}
					if entry.Resolved() {
						report.Resolved++
					}
					if entry.Geotag != nil {
						report.WithGeotag++
					}
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Ledger for %s\n", report.Root)
				printDetailLine(out, "Path", report.LedgerPath)
				printDetailLine(out, "Entries", report.Entries)
				printDetailLine(out, "Matched", report.Matched)
				printDetailLine(out, "Resolved", report.Resolved)
				printDetailLine(out, "With geotag", report.WithGeotag)

				if len(report.Tiers) > 0 {
					tiers := make([]string, 0, len(report.Tiers))
					for tier := range report.Tiers {
						tiers = append(tiers, tier)
					}
					sort.Strings(tiers)
					rows := make([][]string, 0, len(tiers))
					for _, tier := range tiers {
						rows = append(rows, []string{tier, fmt.Sprintf("%d", report.Tiers[tier])})
					}
					fmt.Fprintln(out)
					table := renderTable([]string{"Match Tier", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
					fmt.Fprintln(out, table)
				}

				if full {
					rows := make([][]string, 0, len(entries))
					for _, entry := range entries {
						geotag := ""
						if entry.Geotag != nil {
							geotag = entry.Geotag.String()
						}
						rows = append(rows, []string{entry.Path, entry.MatchTier, entry.Timestamp, geotag})
					}
					fmt.Fprintln(out)
					table := renderTable([]string{"File", "Tier", "Timestamp", "Geotag"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft})
					fmt.Fprintln(out, table)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "List every ledger entry")
	return cmd
}
