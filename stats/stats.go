// Package stats computes reading statistics from a collection of papers.
// All the functions are pure: they never modify their input and only
// depend on it and on their explicit parameters.
package stats

import (
	"sort"
	"strconv"
	"time"

	"github.com/bobinette/paperlog"
)

// DefaultTopAuthors is the number of authors returned by TopAuthors when
// no positive limit is given.
const DefaultTopAuthors = 10

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// NoCategory is returned by TopCategory when there is nothing to count.
var NoCategory = CategoryCount{Name: "N/A", Count: 0}

type AuthorRank struct {
	Name        string `json:"name"`
	Count       int    `json:"count"`
	TopCategory string `json:"topCategory"`
}

// ReadPapers returns the read papers that have a read date, in order.
func ReadPapers(papers []paperlog.Paper) []paperlog.Paper {
	read := make([]paperlog.Paper, 0, len(papers))
	for _, p := range papers {
		if p.EffectiveStatus() == paperlog.Read && p.ReadAt != nil {
			read = append(read, p)
		}
	}
	return read
}

// StatusCounts counts the papers by status. Statuses with no paper have no
// entry.
func StatusCounts(papers []paperlog.Paper) map[paperlog.Status]int {
	counts := make(map[paperlog.Status]int)
	for _, p := range papers {
		counts[p.EffectiveStatus()]++
	}
	return counts
}

// YearCounts counts the papers by publication year. Papers without a year
// are not counted.
func YearCounts(papers []paperlog.Paper) map[string]int {
	counts := make(map[string]int)
	for _, p := range papers {
		if p.Year == nil {
			continue
		}
		counts[strconv.Itoa(*p.Year)]++
	}
	return counts
}

// tally counts keys keeping the order in which they were first seen.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: make(map[string]int)}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

// max returns the key with the highest count, the first seen one on ties.
func (t *tally) max() (string, int) {
	name, count := "", 0
	for _, key := range t.order {
		if c := t.counts[key]; c > count {
			name, count = key, c
		}
	}
	return name, count
}

// TopCategory returns the category with the most papers. Ties go to the
// category seen first.
func TopCategory(papers []paperlog.Paper) CategoryCount {
	if len(papers) == 0 {
		return NoCategory
	}

	t := newTally()
	for _, p := range papers {
		t.add(p.EffectiveCategory())
	}

	name, count := t.max()
	return CategoryCount{Name: name, Count: count}
}

// CategoryCounts counts the papers by category, sorted by category name.
func CategoryCounts(papers []paperlog.Paper) []CategoryCount {
	t := newTally()
	for _, p := range papers {
		t.add(p.EffectiveCategory())
	}

	counts := make([]CategoryCount, len(t.order))
	for i, name := range t.order {
		counts[i] = CategoryCount{Name: name, Count: t.counts[name]}
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })
	return counts
}

// TopAuthors ranks the authors by number of papers, keeping the first seen
// author first on ties, and returns at most limit of them. Author names are
// compared as is.
func TopAuthors(papers []paperlog.Paper, limit int) []AuthorRank {
	if limit <= 0 {
		limit = DefaultTopAuthors
	}

	authors := newTally()
	categories := make(map[string]*tally)
	for _, p := range papers {
		category := p.EffectiveCategory()
		for _, author := range p.Authors {
			authors.add(author.Name)

			t, ok := categories[author.Name]
			if !ok {
				t = newTally()
				categories[author.Name] = t
			}
			t.add(category)
		}
	}

	ranks := make([]AuthorRank, len(authors.order))
	for i, name := range authors.order {
		top, _ := categories[name].max()
		ranks[i] = AuthorRank{
			Name:        name,
			Count:       authors.counts[name],
			TopCategory: top,
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].Count > ranks[j].Count })

	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// MaxStreak returns the longest run of consecutive days, in the local time
// zone, with at least one paper read. Papers without a read date are
// ignored.
func MaxStreak(papers []paperlog.Paper) int {
	return MaxStreakIn(papers, time.Local)
}

// MaxStreakIn is MaxStreak with the calendar days taken in loc.
func MaxStreakIn(papers []paperlog.Paper, loc *time.Location) int {
	days := readDays(papers, loc)
	if len(days) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}
	return longest
}

// readDays returns the distinct calendar days of the read dates, sorted.
// Days are returned as midnight UTC so that they are exactly 24 hours
// apart whatever the daylight saving rules of loc.
func readDays(papers []paperlog.Paper, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}

	seen := make(map[time.Time]struct{})
	days := make([]time.Time, 0, len(papers))
	for _, p := range papers {
		if p.ReadAt == nil || p.ReadAt.IsZero() {
			continue
		}

		y, m, d := p.ReadAt.In(loc).Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
