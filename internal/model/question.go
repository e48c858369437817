package model

import "time"

// Question is an anonymous question on the community board.
type Question struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Answers   []Answer  `json:"answers"`
}

type Answer struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	Text       string    `json:"text"`
	Author     User      `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
}
