package plan

import (
	"time"

	"github.com/rondoninha/leitura/internal/model"
)

// ChapterRef identifies a single chapter of a book.
type ChapterRef struct {
	Book    string
	Chapter int
}

// ReadSet is the set of chapters a user has recorded for one plan.
type ReadSet map[ChapterRef]struct{}

// NewReadSet builds a ReadSet from reading records.
func NewReadSet(readings []model.Reading) ReadSet {
	set := make(ReadSet, len(readings))
	for _, r := range readings {
		set[ChapterRef{Book: r.Book.Name, Chapter: r.Chapter}] = struct{}{}
	}
	return set
}

// Contains reports whether the set has the given chapter.
func (s ReadSet) Contains(book string, chapter int) bool {
	_, ok := s[ChapterRef{Book: book, Chapter: chapter}]
	return ok
}

// NextUnreadDate finds the first scheduled date with outstanding chapters.
// An empty plan or a fully read plan resolves to now ("all caught up"); a
// reader with no history starts at the plan's earliest entry. The scan is
// strictly chronological, first miss wins — entries whose token expands to
// nothing are trivially complete and are not skipped ahead of.
func NextUnreadDate(p *Plan, read ReadSet, now time.Time) time.Time {
	if p == nil || len(p.Entries) == 0 {
		return now
	}
	if len(read) == 0 {
		return p.Entries[0].Date
	}

	for _, e := range p.Entries {
		for _, c := range ExpandChapters(e.Chapters) {
			if !read.Contains(e.Book, c) {
				return e.Date
			}
		}
	}
	return now
}
