package model

type Book struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Position     int    `json:"position"`
	ChapterCount int    `json:"chapter_count"`
}
