package model

import "time"

// Reading is one recorded (book, chapter) read event, with the book row
// joined in so callers never re-resolve the foreign key.
type Reading struct {
	Book    Book      `json:"book"`
	Chapter int       `json:"chapter"`
	ReadAt  time.Time `json:"read_at"`
}

// ReadingTally is the minimal projection used by the community dashboard:
// one row per recorded chapter, identified by user and plan name.
type ReadingTally struct {
	UserName string `json:"user_name"`
	PlanName string `json:"plan_name"`
}

// Completion marks that a user has read every chapter a plan assigns for a
// book. Rows are append-only and unique per (user, plan, book).
type Completion struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	PlanID    int64     `json:"plan_id"`
	BookID    int64     `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
}
