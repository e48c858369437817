package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rondoninha/leitura/internal/model"
)

type PlanStore struct {
	db *sql.DB
}

func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

func scanPlan(scanner interface{ Scan(...any) error }) (*model.Plan, error) {
	var p model.Plan
	err := scanner.Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const planCols = `id, name, created_at`

func (s *PlanStore) Create(name string) (*model.Plan, error) {
	result, err := s.db.Exec(`INSERT INTO plans (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlanStore) GetByID(id int64) (*model.Plan, error) {
	row := s.db.QueryRow(`SELECT `+planCols+` FROM plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *PlanStore) GetByName(name string) (*model.Plan, error) {
	row := s.db.QueryRow(`SELECT `+planCols+` FROM plans WHERE name = ?`, name)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan by name: %w", err)
	}
	return p, nil
}

func (s *PlanStore) List() ([]model.Plan, error) {
	rows, err := s.db.Query(`SELECT ` + planCols + ` FROM plans ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []model.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// EntryInput is one schedule row for CreateWithEntries, with the book
// referenced by name.
type EntryInput struct {
	BookName    string
	ReadingDate time.Time
	Chapters    string
}

// CreateWithEntries inserts a plan and all of its entries in one
// transaction. Any failure, including a book name missing from the books
// table, rolls the whole plan back.
func (s *PlanStore) CreateWithEntries(name string, entries []EntryInput) (*model.Plan, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(`INSERT INTO plans (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("insert plan: %w", err)
	}
	planID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	for _, e := range entries {
		var bookID int64
		err := tx.QueryRow(`SELECT id FROM books WHERE name = ?`, e.BookName).Scan(&bookID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("book %q is not seeded", e.BookName)
		}
		if err != nil {
			return nil, fmt.Errorf("look up book %q: %w", e.BookName, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO plan_entries (plan_id, book_id, reading_date, chapters) VALUES (?, ?, ?, ?)`,
			planID, bookID, e.ReadingDate.Format("2006-01-02"), e.Chapters,
		); err != nil {
			return nil, fmt.Errorf("insert plan entry for %s: %w", e.BookName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetByID(planID)
}

func (s *PlanStore) AddEntry(planID, bookID int64, readingDate time.Time, chapters string) error {
	_, err := s.db.Exec(
		`INSERT INTO plan_entries (plan_id, book_id, reading_date, chapters) VALUES (?, ?, ?, ?)`,
		planID, bookID, readingDate.Format("2006-01-02"), chapters,
	)
	if err != nil {
		return fmt.Errorf("insert plan entry: %w", err)
	}
	return nil
}

// ListEntryRows returns every schedule row across all plans with the plan
// and book foreign keys resolved to names, in insertion order. This is the
// raw input to plan.BuildPlans.
func (s *PlanStore) ListEntryRows() ([]model.PlanEntryRow, error) {
	rows, err := s.db.Query(`
		SELECT p.name, b.name, pe.reading_date, pe.chapters
		FROM plan_entries pe
		JOIN plans p ON p.id = pe.plan_id
		JOIN books b ON b.id = pe.book_id
		ORDER BY pe.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list plan entries: %w", err)
	}
	defer rows.Close()

	var entries []model.PlanEntryRow
	for rows.Next() {
		var e model.PlanEntryRow
		var date string
		if err := rows.Scan(&e.PlanName, &e.BookName, &date, &e.Chapters); err != nil {
			return nil, fmt.Errorf("scan plan entry: %w", err)
		}
		e.ReadingDate, err = time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("parse reading date %q: %w", date, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
