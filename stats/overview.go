package stats

import (
	"sort"
	"strconv"
	"time"

	"github.com/bobinette/paperlog"
)

// MonthlyWindow is the number of months covered by the overview chart.
const MonthlyWindow = 12

type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// MonthlyReads counts the reads of the last months months, the one of now
// included. Months are keyed YYYY-MM in the location of now, oldest first,
// and months without reads are present with a zero count.
func MonthlyReads(readPapers []paperlog.Paper, now time.Time, months int) []MonthCount {
	if months <= 0 {
		return []MonthCount{}
	}

	counts := make([]MonthCount, months)
	index := make(map[string]int, months)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i-months+1, 0).Format("2006-01")
		counts[i] = MonthCount{Month: key}
		index[key] = i
	}

	for _, p := range readPapers {
		if p.ReadAt == nil {
			continue
		}
		key := p.ReadAt.In(now.Location()).Format("2006-01")
		if i, ok := index[key]; ok {
			counts[i].Count++
		}
	}
	return counts
}

// DailyReads counts the reads per calendar day in loc, keyed YYYY-MM-DD.
func DailyReads(readPapers []paperlog.Paper, loc *time.Location) map[string]int {
	if loc == nil {
		loc = time.Local
	}

	counts := make(map[string]int)
	for _, p := range readPapers {
		if p.ReadAt == nil {
			continue
		}
		counts[p.ReadAt.In(loc).Format("2006-01-02")]++
	}
	return counts
}

// Calendar lays the daily reads out for a contribution graph: every day
// from the Sunday on or before the same date last year, up to now.
func Calendar(daily map[string]int, now time.Time) []DayCount {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start := today.AddDate(-1, 0, 1)
	start = start.AddDate(0, 0, -int(start.Weekday()))

	var days []DayCount
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		days = append(days, DayCount{Date: key, Count: daily[key]})
	}
	return days
}

// sortedYears turns year counts into a list ordered by year.
func sortedYears(counts map[string]int) []YearCount {
	years := make([]YearCount, 0, len(counts))
	for year, count := range counts {
		years = append(years, YearCount{Year: year, Count: count})
	}
	sort.Slice(years, func(i, j int) bool {
		a, _ := strconv.Atoi(years[i].Year)
		b, _ := strconv.Atoi(years[j].Year)
		return a < b
	})
	return years
}

// Overview gathers everything shown on the statistics page.
type Overview struct {
	Total        int                     `json:"total"`
	StatusCounts map[paperlog.Status]int `json:"statusCounts"`

	Read        int           `json:"read"`
	MaxStreak   int           `json:"maxStreak"`
	TopCategory CategoryCount `json:"topCategory"`
	TopAuthors  []AuthorRank  `json:"topAuthors"`

	Years        []YearCount     `json:"years"`
	Categories   []CategoryCount `json:"categories"`
	MonthlyReads []MonthCount    `json:"monthlyReads"`
	Calendar     []DayCount      `json:"calendar"`
}

// Summarize computes the overview of papers. The statistics on reads only
// look at the read papers with a read date.
func Summarize(papers []paperlog.Paper, now time.Time, loc *time.Location) Overview {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	read := ReadPapers(papers)

	return Overview{
		Total:        len(papers),
		StatusCounts: StatusCounts(papers),
		Read:         len(read),
		MaxStreak:    MaxStreakIn(read, loc),
		TopCategory:  TopCategory(read),
		TopAuthors:   TopAuthors(read, DefaultTopAuthors),
		Years:        sortedYears(YearCounts(read)),
		Categories:   CategoryCounts(read),
		MonthlyReads: MonthlyReads(read, now, MonthlyWindow),
		Calendar:     Calendar(DailyReads(read, loc), now),
	}
}
