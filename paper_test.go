package paperlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdate_Apply(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)
	year := 2015

	p := Paper{
		ID:       "1",
		Title:    "Old title",
		Category: "ML",
		Note:     "old",
		Status:   Read,
		ReadAt:   &earlier,
	}

	note := "new note"
	Update{Note: &note}.Apply(&p, now)
	assert.Equal(t, "new note", p.Note)
	assert.Equal(t, "Old title", p.Title)
	assert.Equal(t, &earlier, p.ReadAt, "read date should be kept")

	edit := Edit{Title: "New title", Year: &year}
	Update{Edit: &edit}.Apply(&p, now)
	assert.Equal(t, "New title", p.Title)
	assert.Equal(t, "", p.Category, "an edit replaces every editable field")
	assert.Equal(t, Read, p.Status)

	_, u := Transition(Read)
	u.Apply(&p, now)
	assert.Equal(t, Unread, p.Status)
	assert.Nil(t, p.ReadAt)

	p.Status = Skimmed
	_, u = Transition(Skimmed)
	u.Apply(&p, now)
	assert.Equal(t, Read, p.Status)
	if assert.NotNil(t, p.ReadAt) {
		assert.Equal(t, now, *p.ReadAt)
	}
}

func TestPaper_Effective(t *testing.T) {
	assert.Equal(t, Uncategorized, Paper{}.EffectiveCategory())
	assert.Equal(t, "   ", Paper{Category: "   "}.EffectiveCategory(), "only an empty category is uncategorized")
	assert.Equal(t, "ML", Paper{Category: "ML"}.EffectiveCategory())

	assert.Equal(t, Unread, Paper{}.EffectiveStatus())
	assert.Equal(t, Unread, Paper{Status: "done"}.EffectiveStatus())
	assert.Equal(t, Skimmed, Paper{Status: Skimmed}.EffectiveStatus())

	p := Paper{Authors: []Author{{Name: "Alice"}, {Name: "Bob"}}}
	assert.Equal(t, []string{"Alice", "Bob"}, p.AuthorNames())
}

func TestParseAuthors(t *testing.T) {
	tts := map[string]struct {
		in       string
		expected []Author
	}{
		"empty":      {in: "", expected: []Author{}},
		"single":     {in: "Ada Lovelace", expected: []Author{{Name: "Ada Lovelace"}}},
		"trimmed":    {in: " Ada ,  Bob ", expected: []Author{{Name: "Ada"}, {Name: "Bob"}}},
		"blank name": {in: "Ada,,  ,Bob,", expected: []Author{{Name: "Ada"}, {Name: "Bob"}}},
	}

	for name, tt := range tts {
		assert.Equal(t, tt.expected, ParseAuthors(tt.in), name)
	}
}
