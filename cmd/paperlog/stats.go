package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/stats"
)

func init() {
	RootCmd.AddCommand(&StatsCommand)
}

var StatsCommand = cobra.Command{
	Use:   "stats",
	Short: "Show the reading statistics",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		papers, err := paperService.List(cmd.Context())
		if err != nil {
			return err
		}

		loc, err := cfg.Location()
		if err != nil {
			return err
		}

		renderOverview(cmd.OutOrStdout(), stats.Summarize(papers, time.Now(), loc))
		return nil
	}),
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func renderOverview(w io.Writer, o stats.Overview) {
	summary := newTable(w, "Summary")
	summary.AppendRows([]table.Row{
		{"Papers", o.Total},
		{"Read", o.Read},
		{"Max streak (days)", o.MaxStreak},
		{"Top category", fmt.Sprintf("%s (%d)", o.TopCategory.Name, o.TopCategory.Count)},
	})
	summary.Render()

	statuses := newTable(w, "Statuses")
	statuses.AppendHeader(table.Row{"Status", "Papers"})
	for _, s := range paperlog.StatusCycle {
		statuses.AppendRow(table.Row{s, o.StatusCounts[s]})
	}
	statuses.Render()

	if len(o.TopAuthors) > 0 {
		authors := newTable(w, "Top authors")
		authors.AppendHeader(table.Row{"#", "Author", "Papers", "Top category"})
		for i, a := range o.TopAuthors {
			authors.AppendRow(table.Row{i + 1, a.Name, a.Count, a.TopCategory})
		}
		authors.Render()
	}

	if len(o.Categories) > 0 {
		categories := newTable(w, "Categories")
		categories.AppendHeader(table.Row{"Category", "Read"})
		for _, c := range o.Categories {
			categories.AppendRow(table.Row{c.Name, c.Count})
		}
		categories.Render()
	}

	monthly := newTable(w, "Reads per month")
	monthly.AppendHeader(table.Row{"Month", "Read", ""})
	for _, m := range o.MonthlyReads {
		monthly.AppendRow(table.Row{m.Month, m.Count, strings.Repeat("█", m.Count)})
	}
	monthly.Render()
}
