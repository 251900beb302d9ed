package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(&LookupCommand)
}

var LookupCommand = cobra.Command{
	Use:   "lookup <arxiv url, identifier or title>",
	Short: "Look the metadata of a paper up",
	Args:  cobra.MinimumNArgs(1),
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		q := strings.Join(args, " ")
		m := paperService.Lookup(cmd.Context(), q)
		if m == nil {
			fmt.Fprintln(w, "Nothing found.")
			return nil
		}

		names := make([]string, len(m.Authors))
		for i, a := range m.Authors {
			names[i] = a.Name
		}

		t := newTable(w, q)
		t.AppendRows([]table.Row{
			{"Title", m.Title},
			{"Authors", strings.Join(names, ", ")},
			{"URL", m.URL},
			{"Year", optional(m.Year)},
			{"Citations", optional(m.CitationCount)},
		})
		t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 80}})
		t.Render()
		return nil
	}),
}
