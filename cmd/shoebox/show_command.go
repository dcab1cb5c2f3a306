package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"shoebox/internal/cluster"
	"shoebox/internal/match"
	"shoebox/internal/queue"
	"shoebox/internal/resolve"
	"shoebox/internal/scan"
	"shoebox/internal/stage"
)

type itemDetail struct {
	queueItemView
	Scan    *scan.Summary    `json:"scan,omitempty"`
	Match   *match.Summary   `json:"match,omitempty"`
	Resolve *resolve.Summary `json:"resolve,omitempty"`
	Cluster *cluster.Summary `json:"cluster,omitempty"`
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <itemID>",
		Short: "Display details and stage outcomes for a queue item",
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

				detail := itemDetail{queueItemView: queueItemViewOf(item)}
				detail.Scan = decodeSummaryView[scan.Summary](cmd, "scan", item.ScanJSON)
				detail.Match = decodeSummaryView[match.Summary](cmd, "match", item.MatchJSON)
				detail.Resolve = decodeSummaryView[resolve.Summary](cmd, "resolve", item.ResolveJSON)
				detail.Cluster = decodeSummaryView[cluster.Summary](cmd, "cluster", item.ClusterJSON)

				if ctx.JSONMode() {
					return writeJSON(cmd, detail)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item #%d: %s (%s)\n", item.ID, item.Label, formatStatusLabel(string(item.Status)))
				printDetailLine(out, "Root", item.RootPath)
				printDetailLine(out, "Created", formatDisplayTime(item.CreatedAt))
				printDetailLine(out, "Updated", formatDisplayTime(item.UpdatedAt))
				if item.ProgressStage != "" || item.ProgressMessage != "" {
					progress := fmt.Sprintf("%s %.0f%%", item.ProgressStage, item.ProgressPercent)
					if item.ProgressMessage != "" {
						progress += " (" + item.ProgressMessage + ")"
					}
					printDetailLine(out, "Progress", progress)
				}
				if item.ErrorMessage != "" {
					printDetailLine(out, "Error", item.ErrorMessage)
				}
				if item.NeedsReview {
					printDetailLine(out, "Review reason", item.ReviewReason)
				}
				if item.LedgerPath != "" {
					printDetailLine(out, "Ledger", item.LedgerPath)
				}
				if item.RelationshipsPath != "" {
					printDetailLine(out, "Relationships", item.RelationshipsPath)
				}

				if detail.Scan != nil {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Scan")
					printDetailLine(out, "Media files", detail.Scan.MediaFiles)
					printDetailLine(out, "Sidecar files", detail.Scan.SidecarFiles)
					printDetailLine(out, "Album files", detail.Scan.AlbumFiles)
					printDetailLine(out, "Directories", detail.Scan.Directories)
					printDetailLine(out, "New entries", detail.Scan.NewEntries)
					printDetailLine(out, "Known entries", detail.Scan.KnownEntries)
					printDetailLine(out, "Pruned entries", detail.Scan.PrunedEntries)
				}
				if detail.Match != nil {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Match")
					printDetailLine(out, "Exact", detail.Match.Exact)
					printDetailLine(out, "Suffix stripped", detail.Match.SuffixStripped)
					printDetailLine(out, "Copied (sibling)", detail.Match.CopiedFromSibling)
					printDetailLine(out, "Truncated name", detail.Match.TruncatedName)
					printDetailLine(out, "Unmatched", detail.Match.Unmatched)
					printDetailLine(out, "Orphan sidecars", detail.Match.OrphanSidecars)
					printDetailLine(out, "Junk directories", detail.Match.JunkDirectories)
					printDetailLine(out, "Canonical renames", detail.Match.CanonicalRenames)
				}
				if detail.Resolve != nil {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Resolve")
					printDetailLine(out, "Processed", detail.Resolve.Processed)
					printDetailLine(out, "With timestamp", detail.Resolve.WithTimestamp)
					printDetailLine(out, "With geotag", detail.Resolve.WithGeotag)
					printDetailLine(out, "Unresolved", detail.Resolve.Unresolved)
					printDetailLine(out, "Geotag conflicts", detail.Resolve.GeotagConflicts)
					printDetailLine(out, "Extract failures", detail.Resolve.ExtractFailures)
					printDetailLine(out, "Embedded", detail.Resolve.Embedded)
					printDetailLine(out, "Sidecars removed", detail.Resolve.SidecarsRemoved)
				}
				if detail.Cluster != nil {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Cluster")
					printDetailLine(out, "Files", detail.Cluster.Files)
					printDetailLine(out, "Excluded", detail.Cluster.Excluded)
					printDetailLine(out, "With timestamp", detail.Cluster.WithTimestamp)
					printDetailLine(out, "With geotag", detail.Cluster.WithGeotag)
					printDetailLine(out, "Temporal clusters", detail.Cluster.TemporalClusters)
					printDetailLine(out, "Location clusters", detail.Cluster.LocationClusters)
					printDetailLine(out, "Event clusters", detail.Cluster.EventClusters)
				}
				return nil
			})
		},
	}
}

// decodeSummaryView returns nil for items that have not reached the stage and
// reports, without failing the command, summaries that no longer parse.
func decodeSummaryView[T any](cmd *cobra.Command, stageName, raw string) *T {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	value, err := stage.DecodeSummary[T](stageName, raw)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: %s summary unreadable: %v\n", stageName, err)
		return nil
	}
	return &value
}

func printDetailLine(out io.Writer, label string, value any) {
	fmt.Fprintf(out, "%s%-*s %v\n", statusIndent, statusLabelWidth, label+":", value)
}
