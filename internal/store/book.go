package store

import (
	"database/sql"
	"fmt"

	"github.com/rondoninha/leitura/internal/model"
)

type BookStore struct {
	db *sql.DB
}

func NewBookStore(db *sql.DB) *BookStore {
	return &BookStore{db: db}
}

func scanBook(scanner interface{ Scan(...any) error }) (*model.Book, error) {
	var b model.Book
	err := scanner.Scan(&b.ID, &b.Name, &b.Position, &b.ChapterCount)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

const bookCols = `id, name, position, chapter_count`

func (s *BookStore) List() ([]model.Book, error) {
	rows, err := s.db.Query(`SELECT ` + bookCols + ` FROM books ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

func (s *BookStore) GetByID(id int64) (*model.Book, error) {
	row := s.db.QueryRow(`SELECT `+bookCols+` FROM books WHERE id = ?`, id)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (s *BookStore) GetByName(name string) (*model.Book, error) {
	row := s.db.QueryRow(`SELECT `+bookCols+` FROM books WHERE name = ?`, name)
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book by name: %w", err)
	}
	return b, nil
}
