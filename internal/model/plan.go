package model

import "time"

type Plan struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanEntryRow is a raw schedule row as it comes out of the database:
// the plan and book foreign keys already resolved to names, the chapter
// range still in its compact token form (e.g. "1-3").
type PlanEntryRow struct {
	PlanName    string    `json:"plan_name"`
	BookName    string    `json:"book_name"`
	ReadingDate time.Time `json:"reading_date"`
	Chapters    string    `json:"chapters"`
}
