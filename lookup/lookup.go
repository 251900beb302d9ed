// Package lookup fetches paper metadata from Semantic Scholar, by arXiv
// identifier when the query contains one and by title search otherwise.
package lookup

import (
	"regexp"
	"strings"

	"github.com/bobinette/paperlog"
)

var arxivIDRegexp = regexp.MustCompile(`(\d{4}\.\d{4,5}(v\d+)?|[a-zA-Z-]+(?:\.[a-zA-Z-]+)?/\d{7})`)

// ExtractArxivID returns the first arXiv identifier found in q, new style
// (2109.12345v2) or old style (cs/0112017), and false if there is none.
func ExtractArxivID(q string) (string, bool) {
	match := arxivIDRegexp.FindString(q)
	if match == "" {
		return "", false
	}
	return strings.Replace(match, ".pdf", "", 1), true
}

// Metadata is what the lookup knows about a paper.
type Metadata struct {
	Title         string            `json:"title"`
	Authors       []paperlog.Author `json:"authors"`
	URL           string            `json:"url,omitempty"`
	Year          *int              `json:"year,omitempty"`
	CitationCount *int              `json:"citationCount,omitempty"`
}

// Fill copies the metadata into the looked-up fields of e: title, authors,
// url, year and citation count. The category is left untouched.
func (m Metadata) Fill(e *paperlog.Edit) {
	e.Title = m.Title
	e.Authors = m.Authors
	e.URL = m.URL
	e.Year = m.Year
	e.CitationCount = m.CitationCount
}
