package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/errors"
	"github.com/bobinette/paperlog/note"
	"github.com/bobinette/paperlog/view"
)

// paperFlags are the editable fields of a paper given on the command line.
type paperFlags struct {
	title     string
	authors   string
	url       string
	year      int
	citations int
	category  string
}

func (f *paperFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "title")
	cmd.Flags().StringVar(&f.authors, "authors", "", "comma separated list of authors")
	cmd.Flags().StringVar(&f.url, "url", "", "url")
	cmd.Flags().IntVar(&f.year, "year", 0, "publication year")
	cmd.Flags().IntVar(&f.citations, "citations", 0, "citation count")
	cmd.Flags().StringVar(&f.category, "category", "", "category")
}

// apply sets on e the fields given on the command line.
func (f *paperFlags) apply(cmd *cobra.Command, e *paperlog.Edit) {
	flags := cmd.Flags()
	if flags.Changed("title") {
		e.Title = f.title
	}
	if flags.Changed("authors") {
		e.Authors = paperlog.ParseAuthors(f.authors)
	}
	if flags.Changed("url") {
		e.URL = f.url
	}
	if flags.Changed("year") {
		year := f.year
		e.Year = &year
	}
	if flags.Changed("citations") {
		citations := f.citations
		e.CitationCount = &citations
	}
	if flags.Changed("category") {
		e.Category = f.category
	}
}

var (
	addFlags  paperFlags
	addLookup string

	editFlags paperFlags

	listStatus   string
	listCategory string
	listQuery    string
	listSort     string

	statusConfirm bool
)

func init() {
	addFlags.register(&AddPaperCommand)
	AddPaperCommand.Flags().StringVar(&addLookup, "lookup", "", "fill the paper from the metadata of an arXiv url, identifier or title")

	editFlags.register(&EditPaperCommand)

	ListPapersCommand.Flags().StringVar(&listStatus, "status", view.All, "status filter")
	ListPapersCommand.Flags().StringVar(&listCategory, "category", view.All, "category filter")
	ListPapersCommand.Flags().StringVarP(&listQuery, "query", "q", "", "full text search")
	ListPapersCommand.Flags().StringVar(&listSort, "sort", string(view.SortCreated), "created, year, citations or title")

	StatusCommand.Flags().BoolVar(&statusConfirm, "confirm", false, "confirm leaving the read status")

	PaperCommand.AddCommand(&AddPaperCommand)
	PaperCommand.AddCommand(&ListPapersCommand)
	PaperCommand.AddCommand(&ShowPaperCommand)
	PaperCommand.AddCommand(&EditPaperCommand)
	PaperCommand.AddCommand(&StatusCommand)
	PaperCommand.AddCommand(&NoteCommand)
	PaperCommand.AddCommand(&DeletePaperCommand)

	RootCmd.AddCommand(&PaperCommand)
}

var PaperCommand = cobra.Command{
	Use:   "paper",
	Short: "Manage the papers",
	Long:  "Add, list, edit and delete papers",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var AddPaperCommand = cobra.Command{
	Use:   "add",
	Short: "Add a paper",
	Long:  "Add an unread paper. With --lookup, the fields not given are filled from the metadata found.",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var edit paperlog.Edit
		if addLookup != "" {
			m := paperService.Lookup(ctx, addLookup)
			if m == nil {
				return errors.New("nothing found for "+addLookup, errors.NotFound())
			}
			m.Fill(&edit)
		}
		addFlags.apply(cmd, &edit)

		paper := paperlog.Paper{}
		paperlog.Update{Edit: &edit}.Apply(&paper, paper.CreatedAt)

		paper, err := paperService.Create(ctx, paper)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), paper.ID)
		return nil
	}),
}

var ListPapersCommand = cobra.Command{
	Use:   "list",
	Short: "List the papers",
	Long:  "List the papers grouped by category",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		groups, err := listPapers(cmd.Context())
		if err != nil {
			return err
		}

		renderGroups(cmd.OutOrStdout(), groups)
		return nil
	}),
}

func listPapers(ctx context.Context) ([]view.Group, error) {
	status, err := view.ParseStatusFilter(listStatus)
	if err != nil {
		return nil, err
	}

	sort, err := view.ParseSort(listSort)
	if err != nil {
		return nil, err
	}

	ids, err := paperService.Search(ctx, listQuery)
	if err != nil {
		return nil, err
	}

	papers, err := paperService.List(ctx)
	if err != nil {
		return nil, err
	}

	return view.Project(papers, view.Filter{
		Status:   status,
		Category: listCategory,
		IDs:      ids,
		Sort:     sort,
	}), nil
}

func renderGroups(w io.Writer, groups []view.Group) {
	if view.Count(groups) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Category", "Title", "Authors", "Year", "Citations", "Status", "ID"})
	for _, g := range groups {
		for _, p := range g.Papers {
			t.AppendRow(table.Row{
				g.Category,
				p.Title,
				strings.Join(p.AuthorNames(), ", "),
				optional(p.Year),
				optional(p.CitationCount),
				p.EffectiveStatus(),
				p.ID,
			})
		}
		t.AppendSeparator()
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", view.Count(groups)})
	t.Render()
}

func optional(i *int) string {
	if i == nil {
		return ""
	}
	return fmt.Sprint(*i)
}

var ShowPaperCommand = cobra.Command{
	Use:   "show <id>",
	Short: "Show a paper and its note",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		paper, err := paperService.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		renderPaper(cmd.OutOrStdout(), paper)
		return nil
	}),
}

func renderPaper(w io.Writer, p paperlog.Paper) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"ID", p.ID},
		{"Title", p.Title},
		{"Authors", strings.Join(p.AuthorNames(), ", ")},
		{"URL", p.URL},
		{"Year", optional(p.Year)},
		{"Citations", optional(p.CitationCount)},
		{"Category", p.EffectiveCategory()},
		{"Status", p.EffectiveStatus()},
	})
	if p.ReadAt != nil {
		t.AppendRow(table.Row{"Read", p.ReadAt.Format("2006-01-02 15:04")})
	}
	t.AppendRow(table.Row{"Added", p.CreatedAt.Format("2006-01-02 15:04")})
	t.Render()

	if p.Note != "" {
		fmt.Fprintln(w, note.RenderTerminal(p.Note, 80))
	}
}

var EditPaperCommand = cobra.Command{
	Use:   "edit <id>",
	Short: "Edit the fields of a paper",
	Long:  "Edit the fields of a paper. Only the fields given are changed; the status goes through the status command.",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paper, err := paperService.Get(ctx, args[0])
		if err != nil {
			return err
		}

		edit := paperlog.EditOf(paper)
		editFlags.apply(cmd, &edit)

		paper, err = paperService.Edit(ctx, paper.ID, edit)
		if err != nil {
			return err
		}

		renderPaper(cmd.OutOrStdout(), paper)
		return nil
	}),
}

var StatusCommand = cobra.Command{
	Use:   "status <id>",
	Short: "Move a paper to its next status",
	Long:  "Move a paper to its next status: unread, to-read, skimmed, read and back to unread. Leaving read needs --confirm.",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		status, err := paperService.AdvanceStatus(cmd.Context(), args[0], statusConfirm)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), status)
		return nil
	}),
}

var NoteCommand = cobra.Command{
	Use:   "note <id> <note|@file|->",
	Short: "Save the note of a paper",
	Long:  "Save the note of a paper, given as argument, read from a file with @path or from stdin with -",
	Args:  cobra.ExactArgs(2),
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		text, err := readArg(args[1], cmd.InOrStdin())
		if err != nil {
			return err
		}

		_, err = paperService.SaveNote(cmd.Context(), args[0], text)
		return err
	}),
}

// readArg returns arg, the content of the file when arg is @path, or the
// content of stdin when arg is -.
func readArg(arg string, stdin io.Reader) (string, error) {
	switch {
	case arg == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.New("could not read stdin", errors.WithCause(err))
		}
		return string(data), nil
	case strings.HasPrefix(arg, "@"):
		data, err := os.ReadFile(arg[1:])
		if err != nil {
			return "", errors.New("could not read "+arg[1:], errors.WithCause(err))
		}
		return string(data), nil
	}
	return arg, nil
}

var DeletePaperCommand = cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete papers based on their IDs",
	Args:  cobra.MinimumNArgs(1),
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		for _, id := range args {
			if err := paperService.Delete(cmd.Context(), id); err != nil {
				return err
			}
			logger.Printf("deleted paper %s", id)
		}
		return nil
	}),
}
