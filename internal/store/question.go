package store

import (
	"database/sql"
	"fmt"

	"github.com/rondoninha/leitura/internal/model"
)

type QuestionStore struct {
	db *sql.DB
}

func NewQuestionStore(db *sql.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

// Insert stores an anonymous question. No author is recorded on purpose.
func (s *QuestionStore) Insert(text string) (*model.Question, error) {
	result, err := s.db.Exec(`INSERT INTO questions (text) VALUES (?)`, text)
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`SELECT id, text, created_at FROM questions WHERE id = ?`, id)
	var q model.Question
	if err := row.Scan(&q.ID, &q.Text, &q.CreatedAt); err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

func (s *QuestionStore) InsertAnswer(questionID, userID int64, text string) (*model.Answer, error) {
	result, err := s.db.Exec(
		`INSERT INTO answers (question_id, user_id, text) VALUES (?, ?, ?)`,
		questionID, userID, text,
	)
	if err != nil {
		return nil, fmt.Errorf("insert answer: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRow(`
		SELECT a.id, a.question_id, a.text, a.created_at, u.id, u.name
		FROM answers a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = ?`, id)
	var a model.Answer
	if err := row.Scan(&a.ID, &a.QuestionID, &a.Text, &a.CreatedAt, &a.Author.ID, &a.Author.Name); err != nil {
		return nil, fmt.Errorf("get answer: %w", err)
	}
	return &a, nil
}

func (s *QuestionStore) GetByID(id int64) (*model.Question, error) {
	row := s.db.QueryRow(`SELECT id, text, created_at FROM questions WHERE id = ?`, id)
	var q model.Question
	err := row.Scan(&q.ID, &q.Text, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

// ListWithAnswers returns every question, newest first, each with its
// answers in posting order and the author row joined in.
func (s *QuestionStore) ListWithAnswers() ([]model.Question, error) {
	rows, err := s.db.Query(`SELECT id, text, created_at FROM questions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []model.Question
	index := make(map[int64]int)
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, nil
	}

	answerRows, err := s.db.Query(`
		SELECT a.id, a.question_id, a.text, a.created_at, u.id, u.name
		FROM answers a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at ASC, a.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer answerRows.Close()

	for answerRows.Next() {
		var a model.Answer
		err := answerRows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.CreatedAt, &a.Author.ID, &a.Author.Name)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		if i, ok := index[a.QuestionID]; ok {
			questions[i].Answers = append(questions[i].Answers, a)
		}
	}
	return questions, answerRows.Err()
}
