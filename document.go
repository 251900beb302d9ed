package paperlog

import (
	"time"
)

// Document is a paper as it is stored. Documents written by older versions
// carry a read flag instead of a status.
type Document struct {
	ID            string   `json:"id" yaml:"id,omitempty"`
	Title         string   `json:"title" yaml:"title"`
	Authors       []Author `json:"authors,omitempty" yaml:"authors,omitempty"`
	URL           string   `json:"url,omitempty" yaml:"url,omitempty"`
	Year          *int     `json:"year,omitempty" yaml:"year,omitempty"`
	CitationCount *int     `json:"citationCount,omitempty" yaml:"citationCount,omitempty"`
	Category      string   `json:"category,omitempty" yaml:"category,omitempty"`
	Note          string   `json:"note,omitempty" yaml:"note,omitempty"`

	Status string     `json:"status,omitempty" yaml:"status,omitempty"`
	Read   *bool      `json:"read,omitempty" yaml:"read,omitempty"`
	ReadAt *time.Time `json:"readAt,omitempty" yaml:"readAt,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Normalize turns a stored document into a paper. It is the only place
// where the legacy read flag is looked at: a document without status gets
// read or unread from the flag, and any unknown status becomes unread.
func Normalize(doc Document) Paper {
	status, ok := ParseStatus(doc.Status)
	if doc.Status == "" {
		status = Unread
		if doc.Read != nil && *doc.Read {
			status = Read
		}
	} else if !ok {
		status = Unread
	}

	authors := doc.Authors
	if authors == nil {
		authors = []Author{}
	}

	return Paper{
		ID:            doc.ID,
		Title:         doc.Title,
		Authors:       authors,
		URL:           doc.URL,
		Year:          doc.Year,
		CitationCount: doc.CitationCount,
		Category:      doc.Category,
		Note:          doc.Note,
		Status:        status,
		ReadAt:        doc.ReadAt,
		CreatedAt:     doc.CreatedAt,
	}
}

// ToDocument returns the stored form of p. Documents written from papers
// never carry the legacy flag.
func ToDocument(p Paper) Document {
	return Document{
		ID:            p.ID,
		Title:         p.Title,
		Authors:       p.Authors,
		URL:           p.URL,
		Year:          p.Year,
		CitationCount: p.CitationCount,
		Category:      p.Category,
		Note:          p.Note,
		Status:        string(p.EffectiveStatus()),
		ReadAt:        p.ReadAt,
		CreatedAt:     p.CreatedAt,
	}
}
