package training

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"slackbridge/internal/log"
)

// levelUpThreshold is the number of consecutive correct answers needed to
// advance a level.
const levelUpThreshold = 3

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Poster delivers a message to a channel.
type Poster interface {
	Post(ctx context.Context, channel, text string) error
}

// Service drives the training-mode conversation flow.
type Service struct {
	store  *Store
	gen    Generator
	post   Poster
	logger *slog.Logger
}

func NewService(store *Store, gen Generator, post Poster) *Service {
	return &Service{
		store:  store,
		gen:    gen,
		post:   post,
		logger: log.WithComponent("training"),
	}
}

// Start puts the user in training mode and sends the next question.
func (s *Service) Start(ctx context.Context, user, channel string) error {
	t, err := s.store.Trainee(ctx, user)
	if err != nil {
		return err
	}
	t.InTraining = true
	if err := s.store.SaveTrainee(ctx, t); err != nil {
		return err
	}
	return s.askQuestion(ctx, t, channel)
}

// Stop takes the user out of training mode.
func (s *Service) Stop(ctx context.Context, user, channel string) error {
	t, err := s.store.Trainee(ctx, user)
	if err != nil {
		return err
	}
	t.InTraining = false
	if err := s.store.SaveTrainee(ctx, t); err != nil {
		return err
	}
	return s.post.Post(ctx, channel,
		fmt.Sprintf("Training mode stopped for <@%s>. You can now chat normally.", user))
}

// askQuestion picks a random bank question at the trainee's level, has the
// LLM render it as an MCQ, records the expected answer, and posts it. When
// MCQ generation fails the open question is posted instead and no answer is
// recorded.
func (s *Service) askQuestion(ctx context.Context, t Trainee, channel string) error {
	q, err := s.store.RandomQuestion(ctx, t.CurrentLevel)
	if err == ErrNoQuestions {
		return s.post.Post(ctx, channel, fmt.Sprintf(
			"Hi <@%s>! I could not find any training questions for level %d yet.",
			t.UserID, t.CurrentLevel))
	}
	if err != nil {
		return err
	}

	raw, err := s.gen.Generate(ctx, mcqPrompt(q))
	if err != nil {
		return fmt.Errorf("generate mcq: %w", err)
	}

	mcq, err := parseMCQ(raw)
	if err != nil {
		s.logger.Warn("mcq generation unusable, falling back to open question",
			"question", q.Number, "error", err)
		return s.post.Post(ctx, channel, fmt.Sprintf(
			"*Training mode* — Level %d\n\nQuestion #%d:\n%s\n\n(MCQ generation failed, using open question.)",
			t.CurrentLevel, q.Number, q.Question))
	}

	t.LastQuestionNumber = sql.NullInt64{Int64: int64(q.Number), Valid: true}
	t.LastQuestionAnswer = sql.NullString{String: q.Answer, Valid: true}
	t.LastCorrectOption = sql.NullString{String: mcq.CorrectOption, Valid: true}
	if err := s.store.SaveTrainee(ctx, t); err != nil {
		return err
	}

	return s.post.Post(ctx, channel, formatMCQ(t.CurrentLevel, q.Number, mcq))
}

// Evaluate grades a trainee's message against the pending MCQ. It returns
// false when the user is not in training or has no pending question, so the
// caller can fall through to normal chat.
func (s *Service) Evaluate(ctx context.Context, user, channel, text string) (bool, error) {
	t, err := s.store.Trainee(ctx, user)
	if err != nil {
		return false, err
	}
	if !t.InTraining || !t.LastCorrectOption.Valid || !validOption(t.LastCorrectOption.String) {
		return false, nil
	}

	choice := detectChoice(text)
	if choice == "" {
		err := s.post.Post(ctx, channel,
			"I could not detect a valid option in your answer.\nPlease reply with A, B, C or D.")
		return true, err
	}

	correct := choice == t.LastCorrectOption.String
	questionNumber := t.LastQuestionNumber.Int64

	var msg string
	if correct {
		t.CorrectStreak++
		msg = fmt.Sprintf("*Your answer for Question #%d is CORRECT!*\n\n*Correct option:* %s\n",
			questionNumber, t.LastCorrectOption.String)
	} else {
		t.CorrectStreak = 0
		msg = fmt.Sprintf("*Your answer for Question #%d is INCORRECT.*\n\n*Correct option:* %s\n",
			questionNumber, t.LastCorrectOption.String)
	}
	if t.LastQuestionAnswer.Valid && t.LastQuestionAnswer.String != "" {
		msg += fmt.Sprintf("*Explanation:* %s\n", t.LastQuestionAnswer.String)
	}

	if correct && t.CorrectStreak >= levelUpThreshold {
		nextLevel := t.CurrentLevel + 1
		available, err := s.store.CountQuestions(ctx, nextLevel)
		if err != nil {
			return true, err
		}
		if available > 0 {
			t.CurrentLevel = nextLevel
			t.CorrectStreak = 0
			msg += fmt.Sprintf(
				"\nYou have answered %d questions correctly in a row. You are now promoted to *Level %d*!",
				levelUpThreshold, t.CurrentLevel)
		} else {
			msg += fmt.Sprintf(
				"\nYou reached the threshold to move to Level %d, but there are no questions configured for that level yet.",
				nextLevel)
		}
	}

	// The graded question is spent either way.
	t.LastQuestionNumber = sql.NullInt64{}
	t.LastQuestionAnswer = sql.NullString{}
	t.LastCorrectOption = sql.NullString{}
	if err := s.store.SaveTrainee(ctx, t); err != nil {
		return true, err
	}

	if err := s.post.Post(ctx, channel, msg); err != nil {
		return true, err
	}

	// Keep the session moving with the next question.
	return true, s.askQuestion(ctx, t, channel)
}
