package store

import (
	"database/sql"
	"fmt"
)

// CompletionStore reads the append-only completion ledger. Rows are written
// only through ReadingStore's transactional completion check.
type CompletionStore struct {
	db *sql.DB
}

func NewCompletionStore(db *sql.DB) *CompletionStore {
	return &CompletionStore{db: db}
}

// BooksByUser returns, for every user with at least one completion, the
// names of the books they have finished. Callers sort the book lists with
// bible.SortCanonical for display.
func (s *CompletionStore) BooksByUser() (map[string][]string, error) {
	rows, err := s.db.Query(`
		SELECT u.name, b.name
		FROM completions c
		JOIN users u ON u.id = c.user_id
		JOIN books b ON b.id = c.book_id`)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	byUser := make(map[string][]string)
	seen := make(map[string]map[string]struct{})
	for rows.Next() {
		var userName, bookName string
		if err := rows.Scan(&userName, &bookName); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		if seen[userName] == nil {
			seen[userName] = make(map[string]struct{})
		}
		// A book finished under two plans still earns one badge.
		if _, dup := seen[userName][bookName]; dup {
			continue
		}
		seen[userName][bookName] = struct{}{}
		byUser[userName] = append(byUser[userName], bookName)
	}
	return byUser, rows.Err()
}

// Count returns the number of completion rows for a (user, plan, book)
// triple. At most 1 by the unique constraint.
func (s *CompletionStore) Count(userID, planID, bookID int64) (int, error) {
	row := s.db.QueryRow(
		`SELECT COUNT(*) FROM completions WHERE user_id = ? AND plan_id = ? AND book_id = ?`,
		userID, planID, bookID,
	)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count completions: %w", err)
	}
	return n, nil
}
