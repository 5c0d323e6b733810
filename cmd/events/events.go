// Package events implements the events command, a one-shot listing of
// the current feed contents for the watched areas.
package events

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/poliswatch/cmd/common"
	"github.com/jonesrussell/poliswatch/internal/aggregate"
	"github.com/jonesrussell/poliswatch/internal/areas"
	"github.com/jonesrussell/poliswatch/internal/domain"
	"github.com/jonesrussell/poliswatch/internal/metrics"
)

// Constants for table configuration
const (
	// summaryMaxLength is the maximum length for displayed summaries
	summaryMaxLength = 72

	// Column numbers for table configuration
	areaColumnNumber    = 1
	timeColumnNumber    = 2
	typeColumnNumber    = 3
	summaryColumnNumber = 5

	// Column width constraints
	areaColumnWidthMax    = 24
	typeColumnWidthMax    = 28
	summaryColumnWidthMax = 76
)

// passthroughEnricher skips the detail page fetch and returns events as is.
type passthroughEnricher struct{}

func (passthroughEnricher) Enrich(_ context.Context, events []domain.EnrichedEvent) []domain.EnrichedEvent {
	return events
}

// Command returns the events command for use in the root command
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Fetch and list current events once",
		Long: `Events runs a single fetch cycle against the polisen.se feed and
prints the surviving events per watched area. Flags override the
configured watch settings for this run only.`,
		RunE: runEvents,
	}

	cmd.Flags().StringP("areas", "a", "", "areas to watch, separated by / , ; or | (default: configured areas)")
	cmd.Flags().Int("hours", 0, "recency window in hours (default: configured window)")
	cmd.Flags().Int("max-items", -1, "events kept per area beyond today (default: configured limit)")
	cmd.Flags().Bool("no-details", false, "skip detail page enrichment")

	return cmd
}

// runEvents executes one fetch cycle and renders the result.
func runEvents(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	opts := watchOptions(cmd, deps)

	m := metrics.NewNoop()
	feedClient := common.NewFeedClient(deps.Config, m)

	var aggregator *aggregate.Aggregator
	if noDetails, _ := cmd.Flags().GetBool("no-details"); noDetails {
		aggregator = aggregate.New(feedClient, passthroughEnricher{}, aggregate.WithLogger(deps.Logger))
	} else {
		aggregator = common.NewAggregator(deps.Config, feedClient, deps.Logger, m)
	}

	snap, err := aggregator.Run(cmd.Context(), opts)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}

	renderSnapshot(snap)
	return nil
}

// watchOptions builds the cycle options from config, letting flags override.
func watchOptions(cmd *cobra.Command, deps common.CommandDeps) aggregate.Options {
	opts := common.WatchOptions(deps.Config)

	if v, _ := cmd.Flags().GetString("areas"); v != "" {
		opts.Areas = areas.Dedupe(areas.Split(v))
	}
	if v, _ := cmd.Flags().GetInt("hours"); v > 0 {
		opts.Hours = v
	}
	if v, _ := cmd.Flags().GetInt("max-items"); v >= 0 {
		opts.MaxItems = v
	}

	return opts
}

// configureEventsTable sets up the table writer with appropriate styling and columns
func configureEventsTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Options.DrawBorder = true
	t.Style().Options.SeparateRows = false

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: areaColumnNumber, WidthMax: areaColumnWidthMax},
		{Number: typeColumnNumber, WidthMax: typeColumnWidthMax},
		{Number: summaryColumnNumber, WidthMax: summaryColumnWidthMax},
	})

	t.AppendHeader(table.Row{"Area", "Event Time", "Type", "Location", "Summary"})
	return t
}

// renderSnapshot formats and displays one row per surviving event.
func renderSnapshot(snap *domain.Snapshot) {
	t := configureEventsTable()

	rows := 0
	total := 0
	for _, area := range snap.Areas {
		bucket, ok := snap.Bucket(area)
		if !ok {
			continue
		}
		total += bucket.Count

		for i := range bucket.Events {
			t.AppendRow(eventRow(bucket.Area, &bucket.Events[i]))
			rows++
		}
	}

	if rows == 0 {
		fmt.Println("No events in the window.")
	}

	t.AppendFooter(table.Row{
		"Total in window", total, "", "",
		fmt.Sprintf("Generated %s", snap.GeneratedAt.Format(time.RFC3339)),
	})
	t.Render()
}

// eventRow formats a single event as a table row.
func eventRow(area string, ev *domain.EnrichedEvent) table.Row {
	summary := strings.Join(strings.Fields(ev.Summary), " ")
	return table.Row{
		areaLabel(area),
		ev.EventAt.Format("2006-01-02 15:04"),
		ev.Type,
		ev.LocationName,
		truncateString(summary, summaryMaxLength),
	}
}

// areaLabel names the catch-all bucket in output.
func areaLabel(area string) string {
	if area == "" {
		return "all"
	}
	return area
}

// truncateString truncates a string to the specified length and adds ellipsis if needed
func truncateString(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
