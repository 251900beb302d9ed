// Package view turns the flat list of papers into the grouped, filtered
// and ordered structure that is rendered.
package view

import (
	"sort"
	"strings"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/errors"
)

// All disables the status or the category filter.
const All = "all"

type Sort string

const (
	SortCreated   Sort = "created"
	SortYear      Sort = "year"
	SortCitations Sort = "citations"
	SortTitle     Sort = "title"
)

// ParseSort returns the sort named s. The empty string is SortCreated.
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "", SortCreated:
		return SortCreated, nil
	case SortYear, SortCitations, SortTitle:
		return Sort(s), nil
	}
	return "", errors.New("unknown sort "+s, errors.BadRequest())
}

// ParseStatusFilter validates a status filter: all or one of the statuses.
// The empty string is all.
func ParseStatusFilter(s string) (string, error) {
	if s == "" || s == All {
		return All, nil
	}
	if _, ok := paperlog.ParseStatus(s); ok {
		return s, nil
	}
	return "", errors.New("unknown status filter "+s, errors.BadRequest())
}

type Filter struct {
	Status   string
	Category string

	// IDs restricts the papers to the ones listed, when not nil.
	IDs []string

	Sort Sort
}

type Group struct {
	Category string           `json:"category"`
	Papers   []paperlog.Paper `json:"papers"`
}

// Project filters papers and groups them by category. Groups are ordered by
// category name and keep the order of papers unless f asks for another
// one. papers is not modified.
func Project(papers []paperlog.Paper, f Filter) []Group {
	var ids map[string]struct{}
	if f.IDs != nil {
		ids = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			ids[id] = struct{}{}
		}
	}

	groups := make(map[string]*Group)
	var names []string
	for _, p := range papers {
		if f.Status != "" && f.Status != All && string(p.EffectiveStatus()) != f.Status {
			continue
		}

		category := p.EffectiveCategory()
		if f.Category != "" && f.Category != All && category != f.Category {
			continue
		}

		if ids != nil {
			if _, ok := ids[p.ID]; !ok {
				continue
			}
		}

		g, ok := groups[category]
		if !ok {
			g = &Group{Category: category}
			groups[category] = g
			names = append(names, category)
		}
		g.Papers = append(g.Papers, p)
	}

	sort.Strings(names)
	projection := make([]Group, len(names))
	for i, name := range names {
		g := groups[name]
		sortPapers(g.Papers, f.Sort)
		projection[i] = *g
	}
	return projection
}

func sortPapers(papers []paperlog.Paper, s Sort) {
	var less func(a, b paperlog.Paper) bool
	switch s {
	case SortYear:
		less = func(a, b paperlog.Paper) bool { return descending(a.Year, b.Year) }
	case SortCitations:
		less = func(a, b paperlog.Paper) bool { return descending(a.CitationCount, b.CitationCount) }
	case SortTitle:
		less = func(a, b paperlog.Paper) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	default:
		return
	}

	sort.SliceStable(papers, func(i, j int) bool { return less(papers[i], papers[j]) })
}

// descending orders the values from the highest to the lowest, missing
// values last.
func descending(a, b *int) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return *a > *b
}

// Count returns the number of papers in groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Papers)
	}
	return n
}

// ShowEmpty tells whether the empty state should be displayed: nothing to
// show once data has been received at least once.
func ShowEmpty(groups []Group, initialLoad bool) bool {
	return !initialLoad && Count(groups) == 0
}

// CategoryOptions returns the distinct categories set on papers, sorted.
// Papers without category do not add an option.
func CategoryOptions(papers []paperlog.Paper) []string {
	seen := make(map[string]struct{})
	options := make([]string, 0)
	for _, p := range papers {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		options = append(options, p.Category)
	}
	sort.Strings(options)
	return options
}

// ReconcileCategory keeps the current category selection if it is still
// available, and falls back to all otherwise.
func ReconcileCategory(current string, options []string) string {
	if current == All {
		return All
	}
	for _, o := range options {
		if o == current {
			return current
		}
	}
	return All
}
