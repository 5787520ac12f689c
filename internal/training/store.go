// Package training implements the interactive training mode: a question bank
// served as LLM-generated multiple-choice questions, with per-user level and
// streak tracking.
package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Question is one entry of the question bank.
type Question struct {
	Number   int
	Question string
	Answer   string
	Level    int
	Module   string
}

// Trainee is a user's training progress.
type Trainee struct {
	UserID             string
	CurrentLevel       int
	InTraining         bool
	CorrectStreak      int
	LastQuestionNumber sql.NullInt64
	LastQuestionAnswer sql.NullString
	LastCorrectOption  sql.NullString
}

var ErrNoQuestions = errors.New("no questions for level")

// Store persists questions and trainee progress in SQLite.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Trainee loads a user's record. A user with no record gets a fresh level-1
// Trainee that is not yet persisted.
func (s *Store) Trainee(ctx context.Context, userID string) (Trainee, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT user_id, current_level, in_training, correct_streak,
       last_question_number, last_question_answer, last_correct_option
FROM trainees WHERE user_id = ?;
`, userID)

	var t Trainee
	var inTraining int
	err := row.Scan(&t.UserID, &t.CurrentLevel, &inTraining, &t.CorrectStreak,
		&t.LastQuestionNumber, &t.LastQuestionAnswer, &t.LastCorrectOption)
	if errors.Is(err, sql.ErrNoRows) {
		return Trainee{UserID: userID, CurrentLevel: 1}, nil
	}
	if err != nil {
		return Trainee{}, fmt.Errorf("load trainee: %w", err)
	}
	t.InTraining = inTraining != 0
	return t, nil
}

// SaveTrainee inserts or updates a trainee record.
func (s *Store) SaveTrainee(ctx context.Context, t Trainee) error {
	inTraining := 0
	if t.InTraining {
		inTraining = 1
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(ctx, `
INSERT INTO trainees(
  user_id, current_level, in_training, correct_streak,
  last_question_number, last_question_answer, last_correct_option, updated_at
)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
  current_level        = excluded.current_level,
  in_training          = excluded.in_training,
  correct_streak       = excluded.correct_streak,
  last_question_number = excluded.last_question_number,
  last_question_answer = excluded.last_question_answer,
  last_correct_option  = excluded.last_correct_option,
  updated_at           = excluded.updated_at;
`, t.UserID, t.CurrentLevel, inTraining, t.CorrectStreak,
		t.LastQuestionNumber, t.LastQuestionAnswer, t.LastCorrectOption, now)
	if err != nil {
		return fmt.Errorf("save trainee: %w", err)
	}
	return nil
}

// RandomQuestion picks a uniformly random question at a level.
func (s *Store) RandomQuestion(ctx context.Context, level int) (Question, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT number, question_text, answer_text, level, module
FROM questions WHERE level = ?
ORDER BY RANDOM() LIMIT 1;
`, level)

	var q Question
	err := row.Scan(&q.Number, &q.Question, &q.Answer, &q.Level, &q.Module)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNoQuestions
	}
	if err != nil {
		return Question{}, fmt.Errorf("pick question: %w", err)
	}
	return q, nil
}

// CountQuestions returns how many questions exist at a level.
func (s *Store) CountQuestions(ctx context.Context, level int) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM questions WHERE level = ?;`, level,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

// ReplaceQuestions wipes the question bank and bulk-inserts a new one.
func (s *Store) ReplaceQuestions(ctx context.Context, questions []Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions;`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO questions(number, question_text, answer_text, level, module)
VALUES(?, ?, ?, ?, ?);
`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, q := range questions {
		if _, err := stmt.ExecContext(ctx, q.Number, q.Question, q.Answer, q.Level, q.Module); err != nil {
			return fmt.Errorf("insert question %d: %w", q.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
