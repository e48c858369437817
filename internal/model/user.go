package model

import "time"

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	PINHash   *string   `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
