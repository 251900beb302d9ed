package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/stats"
	"github.com/bobinette/paperlog/view"
)

// run executes the cli with args and returns what it printed.
func run(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs(args)
	require.NoError(t, RootCmd.Execute(), strings.Join(args, " "))
	return out.String()
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PAPERLOG_STORE_DRIVER", "bolt")
	t.Setenv("PAPERLOG_STORE_BOLT", filepath.Join(dir, "paperlog.db"))
	t.Setenv("PAPERLOG_BLEVE_STORE", filepath.Join(dir, "paperlog.index"))

	config := []string{"--env", "test", "--config", dir}

	id := strings.TrimSpace(run(t, append([]string{"paper", "add", "--title", "Attention Is All You Need", "--category", "NLP", "--authors", "Vaswani, Shazeer"}, config...)...))
	require.NotEmpty(t, id)

	for _, expected := range []string{"to-read", "skimmed", "read"} {
		assert.Equal(t, expected, strings.TrimSpace(run(t, append([]string{"paper", "status", id}, config...)...)))
	}

	list := run(t, append([]string{"paper", "list", "--status", "read", "-q", "attention"}, config...)...)
	assert.Contains(t, list, "Attention Is All You Need")
	assert.Contains(t, list, "Vaswani, Shazeer")

	export := filepath.Join(dir, "export.json")
	run(t, append([]string{"export", "--format", "json", "-o", export}, config...)...)

	f, err := os.Open(export)
	require.NoError(t, err)
	defer f.Close()
	docs, err := readDocuments(f, formatJSON)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, "read", docs[0].Status)
	assert.NotNil(t, docs[0].ReadAt)

	overview := run(t, append([]string{"stats"}, config...)...)
	assert.Contains(t, overview, "NLP (1)")
	assert.Contains(t, overview, "Vaswani")
}

func TestReadArg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	require.NoError(t, os.WriteFile(path, []byte("# From file"), 0600))

	text, err := readArg("plain", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain", text)

	text, err = readArg("@"+path, nil)
	require.NoError(t, err)
	assert.Equal(t, "# From file", text)

	text, err = readArg("-", strings.NewReader("from stdin"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", text)

	_, err = readArg("@"+path+".missing", nil)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, formatYAML, formatOf("papers.yaml"))
	assert.Equal(t, formatYAML, formatOf("papers.YML"))
	assert.Equal(t, formatJSON, formatOf("papers.json"))
	assert.Equal(t, formatJSON, formatOf("papers"))
}

func TestReadDocuments_Legacy(t *testing.T) {
	in := `
- id: abc
  title: Old paper
  read: true
  createdAt: 2020-01-02T03:04:05Z
- title: New paper
  status: skimmed
  createdAt: 2021-01-02T03:04:05Z
`
	docs, err := readDocuments(strings.NewReader(in), formatYAML)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	assert.Equal(t, paperlog.Read, paperlog.Normalize(docs[0]).Status)
	assert.Equal(t, paperlog.Skimmed, paperlog.Normalize(docs[1]).Status)
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), docs[0].CreatedAt)

	_, err = readDocuments(strings.NewReader(in), "xml")
	assert.Error(t, err)
	_, err = readDocuments(strings.NewReader("{"), formatJSON)
	assert.Error(t, err)
}

func TestWriteDocuments_YAML(t *testing.T) {
	var buf bytes.Buffer
	docs := []paperlog.Document{paperlog.ToDocument(paperlog.Paper{ID: "abc", Title: "Paper", Status: paperlog.Read})}
	require.NoError(t, writeDocuments(&buf, docs, formatYAML))

	out := buf.String()
	assert.Contains(t, out, "id: abc")
	assert.Contains(t, out, "status: read")
	assert.NotContains(t, out, "read: ")

	assert.Error(t, writeDocuments(&buf, docs, "xml"))
}

func TestRenderGroups(t *testing.T) {
	var buf bytes.Buffer
	renderGroups(&buf, nil)
	assert.Equal(t, "No papers found.\n", buf.String())

	buf.Reset()
	renderGroups(&buf, []view.Group{{Category: "ML", Papers: []paperlog.Paper{{ID: "1", Title: "Paper"}}}})
	assert.Contains(t, buf.String(), "Paper")
	assert.Contains(t, buf.String(), "unread")
}

func TestRenderOverview(t *testing.T) {
	var buf bytes.Buffer
	renderOverview(&buf, stats.Summarize(nil, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), time.UTC))

	out := buf.String()
	assert.Contains(t, out, "N/A (0)")
	assert.Contains(t, out, "2024-03")
	assert.NotContains(t, out, "Top authors")
}
