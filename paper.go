package paperlog

import (
	"context"
	"strings"
	"time"
)

// Uncategorized is the category of every paper that has none.
const Uncategorized = "Uncategorized"

type Author struct {
	Name string `json:"name" yaml:"name"`
}

type Paper struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       []Author `json:"authors"`
	URL           string   `json:"url,omitempty"`
	Year          *int     `json:"year,omitempty"`
	CitationCount *int     `json:"citationCount,omitempty"`
	Category      string   `json:"category,omitempty"`
	Note          string   `json:"note,omitempty"`

	Status Status     `json:"status"`
	ReadAt *time.Time `json:"readAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// EffectiveCategory returns the category used for grouping and statistics.
func (p Paper) EffectiveCategory() string {
	if p.Category == "" {
		return Uncategorized
	}
	return p.Category
}

// EffectiveStatus returns the paper status, unread when it is missing or unknown.
func (p Paper) EffectiveStatus() Status {
	s, ok := ParseStatus(string(p.Status))
	if !ok {
		return Unread
	}
	return s
}

// AuthorNames returns the names of the authors, in order.
func (p Paper) AuthorNames() []string {
	names := make([]string, len(p.Authors))
	for i, a := range p.Authors {
		names[i] = a.Name
	}
	return names
}

// ParseAuthors reads a comma separated list of author names. Blank names
// are dropped.
func ParseAuthors(s string) []Author {
	authors := make([]Author, 0)
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		authors = append(authors, Author{Name: name})
	}
	return authors
}

// Edit holds the free-form fields of a paper. An edit replaces all of
// them at once; status and read date are not part of it.
type Edit struct {
	Title         string   `json:"title"`
	Authors       []Author `json:"authors"`
	URL           string   `json:"url"`
	Year          *int     `json:"year"`
	CitationCount *int     `json:"citationCount"`
	Category      string   `json:"category"`
}

// EditOf returns the edit that would leave p unchanged.
func EditOf(p Paper) Edit {
	return Edit{
		Title:         p.Title,
		Authors:       p.Authors,
		URL:           p.URL,
		Year:          p.Year,
		CitationCount: p.CitationCount,
		Category:      p.Category,
	}
}

// ReadAtChange tells the store what to do with the read date of a paper.
type ReadAtChange int

const (
	ReadAtKeep ReadAtChange = iota
	// ReadAtStamp sets the read date to the store time of the write.
	ReadAtStamp
	ReadAtClear
)

// Update is a partial update of a paper, applied by the store in a single
// write.
type Update struct {
	Edit   *Edit
	Note   *string
	Status *Status
	ReadAt ReadAtChange
}

// Apply applies u to p. now is used when the read date is stamped.
func (u Update) Apply(p *Paper, now time.Time) {
	if u.Edit != nil {
		p.Title = u.Edit.Title
		p.Authors = u.Edit.Authors
		p.URL = u.Edit.URL
		p.Year = u.Edit.Year
		p.CitationCount = u.Edit.CitationCount
		p.Category = u.Edit.Category
	}
	if u.Note != nil {
		p.Note = *u.Note
	}
	if u.Status != nil {
		p.Status = *u.Status
	}

	switch u.ReadAt {
	case ReadAtStamp:
		t := now
		p.ReadAt = &t
	case ReadAtClear:
		p.ReadAt = nil
	}
}

// PaperStore is the authoritative store of papers. List and the
// subscription snapshots are ordered by creation date, newest first.
type PaperStore interface {
	Add(ctx context.Context, paper *Paper) error
	Get(ctx context.Context, id string) (Paper, error)
	Update(ctx context.Context, id string, u Update) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Paper, error)

	Subscribe(ctx context.Context) *Subscription
}

// Importer is implemented by the stores that can load exported documents
// as they are, keeping their id and creation date.
type Importer interface {
	Import(ctx context.Context, docs []Document) error
}

// PaperIndex is the full-text index over the papers.
type PaperIndex interface {
	Index(paper Paper) error
	Delete(id string) error
	Search(q string) ([]string, error)

	// Rebuild replaces the content of the index with papers.
	Rebuild(papers []Paper) error
}
