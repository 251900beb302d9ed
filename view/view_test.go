package view

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/errors"
)

func intp(i int) *int { return &i }

func ids(groups []Group) [][]string {
	res := make([][]string, len(groups))
	for i, g := range groups {
		for _, p := range g.Papers {
			res[i] = append(res[i], p.ID)
		}
	}
	return res
}

func categories(groups []Group) []string {
	res := make([]string, len(groups))
	for i, g := range groups {
		res[i] = g.Category
	}
	return res
}

var papers = []paperlog.Paper{
	{ID: "1", Title: "b", Status: paperlog.Read, Category: "ML", Year: intp(2015), CitationCount: intp(10)},
	{ID: "2", Title: "A", Status: paperlog.Unread, Category: "CV", Year: intp(2017)},
	{ID: "3", Title: "c", Status: paperlog.ToRead, Category: "ML", Year: intp(2019), CitationCount: intp(3)},
	{ID: "4", Title: "a", Status: "", Category: ""},
	{ID: "5", Title: "d", Status: paperlog.Read, Category: "ML", CitationCount: intp(50)},
}

func TestProject(t *testing.T) {
	tts := map[string]struct {
		filter     Filter
		categories []string
		ids        [][]string
	}{
		"no filter": {
			filter:     Filter{Status: All, Category: All},
			categories: []string{"CV", "ML", paperlog.Uncategorized},
			ids:        [][]string{{"2"}, {"1", "3", "5"}, {"4"}},
		},
		"zero filter is all": {
			filter:     Filter{},
			categories: []string{"CV", "ML", paperlog.Uncategorized},
			ids:        [][]string{{"2"}, {"1", "3", "5"}, {"4"}},
		},
		"status": {
			filter:     Filter{Status: "read", Category: All},
			categories: []string{"ML"},
			ids:        [][]string{{"1", "5"}},
		},
		"missing status is unread": {
			filter:     Filter{Status: "unread", Category: All},
			categories: []string{"CV", paperlog.Uncategorized},
			ids:        [][]string{{"2"}, {"4"}},
		},
		"category": {
			filter:     Filter{Status: All, Category: "ML"},
			categories: []string{"ML"},
			ids:        [][]string{{"1", "3", "5"}},
		},
		"uncategorized": {
			filter:     Filter{Status: All, Category: paperlog.Uncategorized},
			categories: []string{paperlog.Uncategorized},
			ids:        [][]string{{"4"}},
		},
		"status and category": {
			filter:     Filter{Status: "to-read", Category: "ML"},
			categories: []string{"ML"},
			ids:        [][]string{{"3"}},
		},
		"ids": {
			filter:     Filter{IDs: []string{"5", "2"}},
			categories: []string{"CV", "ML"},
			ids:        [][]string{{"2"}, {"5"}},
		},
		"empty ids": {
			filter:     Filter{IDs: []string{}},
			categories: []string{},
			ids:        [][]string{},
		},
		"sort by year": {
			filter:     Filter{Category: "ML", Sort: SortYear},
			categories: []string{"ML"},
			ids:        [][]string{{"3", "1", "5"}},
		},
		"sort by citations": {
			filter:     Filter{Category: "ML", Sort: SortCitations},
			categories: []string{"ML"},
			ids:        [][]string{{"5", "1", "3"}},
		},
		"sort by title": {
			filter:     Filter{Status: "read", Sort: SortTitle},
			categories: []string{"ML"},
			ids:        [][]string{{"1", "5"}},
		},
	}

	for name, tt := range tts {
		groups := Project(papers, tt.filter)
		assert.Equal(t, tt.categories, categories(groups), name)
		assert.Equal(t, tt.ids, ids(groups), name)
	}

	// Input is left untouched
	assert.Equal(t, "1", papers[0].ID)
	assert.Equal(t, "3", papers[2].ID)
}

func TestProject_StatusOnly(t *testing.T) {
	in := []paperlog.Paper{{ID: "r", Status: paperlog.Read}, {ID: "u", Status: paperlog.Unread}}
	groups := Project(in, Filter{Status: "read", Category: All})
	require.Len(t, groups, 1)
	assert.Equal(t, []paperlog.Paper{in[0]}, groups[0].Papers)
}

func TestParseStatusFilter(t *testing.T) {
	for _, s := range []string{"", "all", "unread", "to-read", "skimmed", "read"} {
		_, err := ParseStatusFilter(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseStatusFilter("done")
	errors.AssertCode(t, err, http.StatusBadRequest)
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("")
	require.NoError(t, err)
	assert.Equal(t, SortCreated, s)

	s, err = ParseSort("citations")
	require.NoError(t, err)
	assert.Equal(t, SortCitations, s)

	_, err = ParseSort("random")
	errors.AssertCode(t, err, http.StatusBadRequest)
}

func TestShowEmpty(t *testing.T) {
	assert.False(t, ShowEmpty(nil, true), "nothing shown before the first snapshot")
	assert.True(t, ShowEmpty(nil, false))
	assert.False(t, ShowEmpty([]Group{{Category: "ML", Papers: papers[:1]}}, false))
}

func TestCategoryOptions(t *testing.T) {
	assert.Equal(t, []string{"CV", "ML"}, CategoryOptions(papers))
	assert.Equal(t, []string{}, CategoryOptions(nil))
}

func TestCategoryOptions_Blank(t *testing.T) {
	papers := []paperlog.Paper{
		{ID: "1", Title: "Blank", Category: "  "},
		{ID: "2", Title: "ML", Category: "ML"},
	}

	options := CategoryOptions(papers)
	assert.Equal(t, []string{"  ", "ML"}, options)

	// Every option selects at least one paper
	for _, option := range options {
		groups := Project(papers, Filter{Status: All, Category: option})
		assert.Equal(t, []string{option}, categories(groups), option)
	}
}

func TestReconcileCategory(t *testing.T) {
	options := []string{"CV", "ML"}
	assert.Equal(t, "ML", ReconcileCategory("ML", options))
	assert.Equal(t, All, ReconcileCategory(All, options))
	assert.Equal(t, All, ReconcileCategory("NLP", options))
	assert.Equal(t, All, ReconcileCategory("ML", nil))
}
