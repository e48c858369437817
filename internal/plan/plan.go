// Package plan holds the reading-progress engine: expanding chapter-range
// tokens, building in-memory plan models from raw schedule rows, resolving a
// reader's next unread date, detecting whole-book completions, and computing
// community dashboard metrics. Everything here is pure computation over
// already-fetched data; I/O lives in the store layer.
package plan

import (
	"sort"
	"time"

	"github.com/rondoninha/leitura/internal/model"
)

// Entry is one dated assignment within a plan.
type Entry struct {
	Date         time.Time `json:"date"`
	Book         string    `json:"book"`
	Chapters     string    `json:"chapters"`
	ChapterCount int       `json:"chapter_count"`
}

// Plan is a named schedule of entries in chronological order.
type Plan struct {
	Name          string  `json:"name"`
	Entries       []Entry `json:"entries"`
	TotalChapters int     `json:"total_chapters"`
}

// BuildPlans groups raw schedule rows by plan name and materializes each
// group into a Plan: entries sorted by date ascending (stable, so rows that
// share a date keep their insertion order), per-entry chapter counts derived
// from the range token. Plans with no rows simply never appear in the map.
func BuildPlans(rows []model.PlanEntryRow) map[string]*Plan {
	plans := make(map[string]*Plan)

	for _, row := range rows {
		p, ok := plans[row.PlanName]
		if !ok {
			p = &Plan{Name: row.PlanName}
			plans[row.PlanName] = p
		}
		count := len(ExpandChapters(row.Chapters))
		p.Entries = append(p.Entries, Entry{
			Date:         row.ReadingDate,
			Book:         row.BookName,
			Chapters:     row.Chapters,
			ChapterCount: count,
		})
		p.TotalChapters += count
	}

	for _, p := range plans {
		sort.SliceStable(p.Entries, func(i, j int) bool {
			return p.Entries[i].Date.Before(p.Entries[j].Date)
		})
	}
	return plans
}

// EntriesOn returns the entries scheduled for the given calendar date.
func (p *Plan) EntriesOn(date time.Time) []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if sameDate(e.Date, date) {
			out = append(out, e)
		}
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// onOrBefore compares calendar dates only, ignoring the time of day.
func onOrBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad <= bd
}
