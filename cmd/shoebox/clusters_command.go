package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shoebox/internal/cluster"
	"shoebox/internal/queue"
)

func newClustersCommand(ctx *commandContext) *cobra.Command {
	var partition string

	cmd := &cobra.Command{
		Use:   "clusters <itemID>",
		Short: "Display the relationship partitions for a processed root",
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

				reportPath := item.RelationshipsPath
				if reportPath == "" {
					reportPath = cluster.ReportPath(item.RootPath)
				}
				report, err := cluster.ReadReport(reportPath)
				if err != nil {
					return fmt.Errorf("read relationship report: %w", err)
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Relationships for %s\n", item.RootPath)
				printDetailLine(out, "Report", reportPath)
				printDetailLine(out, "Files", report.Statistics.Files)
				printDetailLine(out, "With timestamp", report.Statistics.WithTimestamp)
				printDetailLine(out, "With geotag", report.Statistics.WithGeotag)
				printDetailLine(out, "Time threshold", fmt.Sprintf("%.0fs", report.Thresholds.TimeSeconds))
				printDetailLine(out, "Distance threshold", fmt.Sprintf("%.2fkm", report.Thresholds.DistanceKm))
				printDetailLine(out, "Temporal clusters", report.Statistics.TemporalClusters)
				printDetailLine(out, "Location clusters", report.Statistics.LocationClusters)
				printDetailLine(out, "Event clusters", report.Statistics.EventClusters)

				clusters, label, err := selectPartition(report, partition)
				if err != nil {
					return err
				}
				if len(clusters) == 0 {
					fmt.Fprintf(out, "\nNo %s clusters with more than one file\n", label)
					return nil
				}

				rows := buildClusterRows(report, clusters)
				fmt.Fprintln(out)
				table := renderTable(
					[]string{"#", "Size", "Files"},
					rows,
					[]columnAlignment{alignRight, alignRight, alignLeft},
				)
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&partition, "partition", "p", "event", "Partition to list: temporal, location, or event")
	cmd.Args = cobra.ExactArgs(1)
	return cmd
}

func selectPartition(report *cluster.Report, name string) ([][]int, string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "temporal", "time", "t":
		return report.TPrime, "temporal", nil
	case "location", "l":
		return report.LPrime, "location", nil
	case "event", "e", "":
		return report.EPrime, "event", nil
	default:
		return nil, "", fmt.Errorf("unknown partition %q (use temporal, location, or event)", name)
	}
}

// buildClusterRows lists clusters largest first, showing up to three member
// files per row.
func buildClusterRows(report *cluster.Report, clusters [][]int) [][]string {
	sorted := make([][]int, len(clusters))
	copy(sorted, clusters)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	rows := make([][]string, 0, len(sorted))
	for i, members := range sorted {
		names := make([]string, 0, 3)
		for _, idx := range members {
			if len(names) == 3 {
				names = append(names, "...")
				break
			}
			names = append(names, filepath.Base(report.FileIndex[idx]))
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", len(members)),
			strings.Join(names, ", "),
		})
	}
	return rows
}
