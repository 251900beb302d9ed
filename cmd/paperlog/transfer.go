package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/errors"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	exportFormat string
	exportOutput string
	importFormat string
)

func init() {
	ExportCommand.Flags().StringVar(&exportFormat, "format", formatYAML, "json or yaml")
	ExportCommand.Flags().StringVarP(&exportOutput, "output", "o", "", "output file, stdout by default")
	ImportCommand.Flags().StringVar(&importFormat, "format", "", "json or yaml, guessed from the extension by default")

	RootCmd.AddCommand(&ExportCommand)
	RootCmd.AddCommand(&ImportCommand)
}

var ExportCommand = cobra.Command{
	Use:   "export",
	Short: "Export all the papers",
	Args:  cobra.NoArgs,
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		papers, err := paperService.List(cmd.Context())
		if err != nil {
			return err
		}

		docs := make([]paperlog.Document, len(papers))
		for i, p := range papers {
			docs[i] = paperlog.ToDocument(p)
		}

		w := cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return errors.New("could not create "+exportOutput, errors.WithCause(err))
			}
			defer f.Close()
			w = f
		}

		return writeDocuments(w, docs, exportFormat)
	}),
}

var ImportCommand = cobra.Command{
	Use:   "import <file>",
	Short: "Import exported papers",
	Long:  "Import exported papers, keeping their ids and dates. Papers with a known id are replaced.",
	Args:  cobra.ExactArgs(1),
	RunE: withService(func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		importer, ok := paperStore.(paperlog.Importer)
		if !ok {
			return errors.New("the store does not support imports")
		}

		f, err := os.Open(args[0])
		if err != nil {
			return errors.New("could not open "+args[0], errors.WithCause(err))
		}
		defer f.Close()

		format := importFormat
		if format == "" {
			format = formatOf(args[0])
		}

		docs, err := readDocuments(f, format)
		if err != nil {
			return err
		}

		if err := importer.Import(ctx, docs); err != nil {
			return err
		}

		n, err := paperService.Reindex(ctx)
		if err != nil {
			return err
		}
		logger.Printf("imported %d papers, %d in the library", len(docs), n)
		return nil
	}),
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatJSON
}

func writeDocuments(w io.Writer, docs []paperlog.Document, format string) error {
	switch format {
	case formatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(docs)
	case formatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(docs); err != nil {
			return err
		}
		return encoder.Close()
	}
	return errors.New("unknown format "+format, errors.BadRequest())
}

func readDocuments(r io.Reader, format string) ([]paperlog.Document, error) {
	var docs []paperlog.Document

	var err error
	switch format {
	case formatJSON:
		err = json.NewDecoder(r).Decode(&docs)
	case formatYAML:
		err = yaml.NewDecoder(r).Decode(&docs)
	default:
		return nil, errors.New("unknown format "+format, errors.BadRequest())
	}
	if err != nil {
		return nil, errors.New("could not read papers", errors.BadRequest(), errors.WithCause(err))
	}

	return docs, nil
}
