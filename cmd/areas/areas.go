// Package areas implements the areas command, which lists the names
// usable as watch areas.
package areas

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/poliswatch/cmd/common"
	"github.com/jonesrussell/poliswatch/internal/metrics"
)

// Command returns the areas command for use in the root command
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "areas",
		Short: "List known area names",
		Long: `Areas lists the names accepted as watch areas: the county list,
location names scraped from the polisen.se events page, and names seen
in the live feed.`,
		RunE: runAreas,
	}
}

// runAreas collects and renders the area name suggestions.
func runAreas(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	m := metrics.NewNoop()
	feedClient := common.NewFeedClient(deps.Config, m)
	suggester := common.NewSuggester(deps.Config, feedClient, deps.Logger, m)

	names := suggester.Suggestions(cmd.Context())
	if len(names) == 0 {
		fmt.Println("No area names available.")
		return nil
	}

	renderAreas(names)
	return nil
}

// renderAreas formats and displays the area names in a table format
func renderAreas(names []string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"#", "Area"})
	for i, name := range names {
		t.AppendRow(table.Row{i + 1, name})
	}
	t.AppendFooter(table.Row{"Total", len(names)})

	t.Render()
}
