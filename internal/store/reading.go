package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/rondoninha/leitura/internal/model"
	"github.com/rondoninha/leitura/internal/plan"
)

// ReadingStore owns reading records and the completion ledger. Writes for
// the same (user, plan, book) run under a per-key mutex on top of the
// storage-level unique constraints, so two concurrent submissions cannot
// both decide a completion is new.
type ReadingStore struct {
	db *sql.DB

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReadingStore(db *sql.DB) *ReadingStore {
	return &ReadingStore{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *ReadingStore) bookLock(userID, planID, bookID int64) *sync.Mutex {
	key := fmt.Sprintf("%d:%d:%d", userID, planID, bookID)
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// RecordReading inserts a reading if the (user, plan, book, chapter) tuple
// is absent and, when it was inserted, checks whether that reading finished
// the book within the plan. The insert and the completion check run in one
// transaction: duplicate submissions are no-ops and a completion is
// recorded exactly once.
func (s *ReadingStore) RecordReading(userID, planID, bookID int64, chapter int) (inserted, newlyCompleted bool, err error) {
	l := s.bookLock(userID, planID, bookID)
	l.Lock()
	defer l.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT OR IGNORE INTO readings (user_id, plan_id, book_id, chapter) VALUES (?, ?, ?, ?)`,
		userID, planID, bookID, chapter,
	)
	if err != nil {
		return false, false, fmt.Errorf("insert reading: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, false, tx.Commit()
	}

	newlyCompleted, err = checkCompletionTx(tx, userID, planID, bookID)
	if err != nil {
		return false, false, err
	}
	return true, newlyCompleted, tx.Commit()
}

// BackfillCompletion re-runs completion detection for a (user, plan, book)
// triple without inserting a reading. Used by the nightly backfill job to
// repair the ledger after plan edits or imports.
func (s *ReadingStore) BackfillCompletion(userID, planID, bookID int64) (bool, error) {
	l := s.bookLock(userID, planID, bookID)
	l.Lock()
	defer l.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	completed, err := checkCompletionTx(tx, userID, planID, bookID)
	if err != nil {
		return false, err
	}
	return completed, tx.Commit()
}

// checkCompletionTx compares the chapters the plan assigns for the book
// against the user's recorded chapters and, if the book is now fully read,
// appends to the completion ledger. Returns true only when this call
// created the completion row.
func checkCompletionTx(tx *sql.Tx, userID, planID, bookID int64) (bool, error) {
	rows, err := tx.Query(
		`SELECT chapters FROM plan_entries WHERE plan_id = ? AND book_id = ?`,
		planID, bookID,
	)
	if err != nil {
		return false, fmt.Errorf("load assigned chapters: %w", err)
	}
	assigned := make(map[int]struct{})
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			rows.Close()
			return false, fmt.Errorf("scan chapter token: %w", err)
		}
		for _, c := range plan.ExpandChapters(token) {
			assigned[c] = struct{}{}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}
	if len(assigned) == 0 {
		// The plan never assigns this book; nothing to complete.
		return false, nil
	}

	rows, err = tx.Query(
		`SELECT chapter FROM readings WHERE user_id = ? AND plan_id = ? AND book_id = ?`,
		userID, planID, bookID,
	)
	if err != nil {
		return false, fmt.Errorf("load read chapters: %w", err)
	}
	read := make(map[int]struct{})
	for rows.Next() {
		var c int
		if err := rows.Scan(&c); err != nil {
			rows.Close()
			return false, fmt.Errorf("scan read chapter: %w", err)
		}
		read[c] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	for c := range assigned {
		if _, ok := read[c]; !ok {
			return false, nil
		}
	}

	result, err := tx.Exec(
		`INSERT OR IGNORE INTO completions (user_id, plan_id, book_id) VALUES (?, ?, ?)`,
		userID, planID, bookID,
	)
	if err != nil {
		return false, fmt.Errorf("insert completion: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// ListByUserPlan returns the user's recorded readings for one plan with the
// book row joined in.
func (s *ReadingStore) ListByUserPlan(userID, planID int64) ([]model.Reading, error) {
	rows, err := s.db.Query(`
		SELECT b.id, b.name, b.position, b.chapter_count, r.chapter, r.created_at
		FROM readings r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ? AND r.plan_id = ?`,
		userID, planID,
	)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []model.Reading
	for rows.Next() {
		var r model.Reading
		err := rows.Scan(&r.Book.ID, &r.Book.Name, &r.Book.Position, &r.Book.ChapterCount, &r.Chapter, &r.ReadAt)
		if err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		readings = append(readings, r)
	}
	return readings, rows.Err()
}

// ListTallies returns one (user name, plan name) pair per recorded chapter,
// the raw input to plan.ComputeDashboard.
func (s *ReadingStore) ListTallies() ([]model.ReadingTally, error) {
	rows, err := s.db.Query(`
		SELECT u.name, p.name
		FROM readings r
		JOIN users u ON u.id = r.user_id
		JOIN plans p ON p.id = r.plan_id`)
	if err != nil {
		return nil, fmt.Errorf("list tallies: %w", err)
	}
	defer rows.Close()

	var tallies []model.ReadingTally
	for rows.Next() {
		var t model.ReadingTally
		if err := rows.Scan(&t.UserName, &t.PlanName); err != nil {
			return nil, fmt.Errorf("scan tally: %w", err)
		}
		tallies = append(tallies, t)
	}
	return tallies, rows.Err()
}

// LastActivePlanName returns the plan of the user's most recent reading, or
// "" when the user has no history.
func (s *ReadingStore) LastActivePlanName(userID int64) (string, error) {
	row := s.db.QueryRow(`
		SELECT p.name
		FROM readings r
		JOIN plans p ON p.id = r.plan_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT 1`,
		userID,
	)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("last active plan: %w", err)
	}
	return name, nil
}

// CountDistinctChapters counts the unique (book, chapter) pairs the user
// has read across every plan — the numerator of whole-Bible progress.
func (s *ReadingStore) CountDistinctChapters(userID int64) (int, error) {
	row := s.db.QueryRow(
		`SELECT COUNT(*) FROM (
			SELECT DISTINCT book_id, chapter FROM readings WHERE user_id = ?
		)`,
		userID,
	)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count distinct chapters: %w", err)
	}
	return n, nil
}

// CompletionKey identifies one (user, plan, book) triple with reading
// history, the unit of work for the backfill job.
type CompletionKey struct {
	UserID int64
	PlanID int64
	BookID int64
}

func (s *ReadingStore) ListCompletionKeys() ([]CompletionKey, error) {
	rows, err := s.db.Query(`SELECT DISTINCT user_id, plan_id, book_id FROM readings`)
	if err != nil {
		return nil, fmt.Errorf("list completion keys: %w", err)
	}
	defer rows.Close()

	var keys []CompletionKey
	for rows.Next() {
		var k CompletionKey
		if err := rows.Scan(&k.UserID, &k.PlanID, &k.BookID); err != nil {
			return nil, fmt.Errorf("scan completion key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
