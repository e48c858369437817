package plan

// AssignedChapters returns every chapter the plan assigns for the given
// book, deduplicated, in first-seen order.
func AssignedChapters(p *Plan, book string) []int {
	if p == nil {
		return nil
	}
	seen := make(map[int]struct{})
	var chapters []int
	for _, e := range p.Entries {
		if e.Book != book {
			continue
		}
		for _, c := range ExpandChapters(e.Chapters) {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			chapters = append(chapters, c)
		}
	}
	return chapters
}

// BookComplete reports whether read covers every chapter the plan assigns
// for book. A book the plan never assigns is not considered complete —
// finishing nothing earns nothing.
func BookComplete(p *Plan, book string, read ReadSet) bool {
	assigned := AssignedChapters(p, book)
	if len(assigned) == 0 {
		return false
	}
	for _, c := range assigned {
		if !read.Contains(book, c) {
			return false
		}
	}
	return true
}
