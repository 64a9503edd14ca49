package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/soldier14/quizdrill/internal/domain"
)

// CatalogRepository loads quiz content (from cache/backing store).
type CatalogRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// AttemptStore persists attempts and their answers. Implementations must
// guarantee at most one answer row per (attempt, question); concurrent
// upserts for the same pair resolve to a single row with the later
// write's option winning.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt domain.Attempt) error
	GetAttempt(ctx context.Context, attemptID, userID string) (domain.Attempt, error)
	UpsertAnswer(ctx context.Context, answer domain.AttemptAnswer) error
	ListAnswers(ctx context.Context, attemptID string) ([]domain.AttemptAnswer, error)
	SubmitAttempt(ctx context.Context, attemptID string, grades map[string]bool, score int, submittedAt time.Time) error
}

// AttemptService owns the attempt lifecycle: creation, per-question
// answer recording, next-question selection, and grading on finish.
type AttemptService struct {
	catalog  CatalogRepository
	attempts AttemptStore
	now      func() time.Time
}

func NewAttemptService(catalog CatalogRepository, attempts AttemptStore) *AttemptService {
	return &AttemptService{catalog: catalog, attempts: attempts, now: time.Now}
}

// NewAttemptServiceWithClock is test-only for deterministic timestamps.
func NewAttemptServiceWithClock(catalog CatalogRepository, attempts AttemptStore, now func() time.Time) *AttemptService {
	return &AttemptService{catalog: catalog, attempts: attempts, now: now}
}

// StartAttempt creates a fresh in-progress attempt against the quiz and
// returns its first question. A quiz with no questions yields a nil
// question with the attempt id still set, not an error.
func (s *AttemptService) StartAttempt(ctx context.Context, userID, quizID string) (domain.AttemptStart, error) {
	if userID == "" || quizID == "" {
		return domain.AttemptStart{}, domain.ErrInvalidInput
	}

	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptStart{}, err
	}

	attempt := domain.Attempt{
		ID:        uuid.NewString(),
		UserID:    userID,
		QuizID:    quiz.ID,
		Status:    domain.AttemptInProgress,
		StartedAt: s.now(),
	}
	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return domain.AttemptStart{}, err
	}

	start := domain.AttemptStart{AttemptID: attempt.ID}
	if len(quiz.Questions) > 0 {
		start.Question = domain.StudentView(quiz.Questions[0], attempt.ID)
	}
	return start, nil
}

// SubmitAnswer records (or overwrites) the answer for one question within
// an attempt and returns the next unanswered question, or a completion
// marker once every question in the quiz has an answer.
//
// Preconditions are checked in order, each a distinct failure: attempt
// ownership, attempt still in progress, question under the attempt's
// quiz, option under that question.
func (s *AttemptService) SubmitAnswer(ctx context.Context, userID, attemptID, questionID, optionID string) (domain.Progress, error) {
	if userID == "" || attemptID == "" || questionID == "" || optionID == "" {
		return domain.Progress{}, domain.ErrInvalidInput
	}

	attempt, err := s.attempts.GetAttempt(ctx, attemptID, userID)
	if err != nil {
		return domain.Progress{}, err
	}
	if attempt.Status == domain.AttemptSubmitted {
		return domain.Progress{}, domain.ErrAttemptSubmitted
	}

	quiz, err := s.catalog.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.Progress{}, err
	}

	question, ok := findQuestion(quiz, questionID)
	if !ok {
		return domain.Progress{}, domain.ErrQuestionNotFound
	}
	if _, ok := findOption(question, optionID); !ok {
		return domain.Progress{}, domain.ErrOptionNotFound
	}

	err = s.attempts.UpsertAnswer(ctx, domain.AttemptAnswer{
		ID:         uuid.NewString(),
		AttemptID:  attempt.ID,
		QuestionID: question.ID,
		OptionID:   optionID,
		AnsweredAt: s.now(),
	})
	if err != nil {
		return domain.Progress{}, err
	}

	answers, err := s.attempts.ListAnswers(ctx, attempt.ID)
	if err != nil {
		return domain.Progress{}, err
	}

	progress := domain.Progress{AttemptID: attempt.ID}
	if next, ok := nextQuestion(quiz, answers); ok {
		progress.Next = domain.StudentView(next, attempt.ID)
	} else {
		progress.Completed = true
	}
	return progress, nil
}

// FinishAttempt grades every recorded answer against the catalog, stores
// the score as the count of correct answers, and moves the attempt to
// its terminal submitted state. Finishing an already-submitted attempt
// fails the same way answer mutation does.
func (s *AttemptService) FinishAttempt(ctx context.Context, userID, attemptID string) (domain.AttemptResult, error) {
	if userID == "" || attemptID == "" {
		return domain.AttemptResult{}, domain.ErrInvalidInput
	}

	attempt, err := s.attempts.GetAttempt(ctx, attemptID, userID)
	if err != nil {
		return domain.AttemptResult{}, err
	}
	if attempt.Status == domain.AttemptSubmitted {
		return domain.AttemptResult{}, domain.ErrAttemptSubmitted
	}

	quiz, err := s.catalog.GetQuiz(ctx, attempt.QuizID)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	answers, err := s.attempts.ListAnswers(ctx, attempt.ID)
	if err != nil {
		return domain.AttemptResult{}, err
	}

	grades := make(map[string]bool, len(answers))
	score := 0
	for _, answer := range answers {
		correct := false
		if question, ok := findQuestion(quiz, answer.QuestionID); ok {
			if option, ok := findOption(question, answer.OptionID); ok {
				correct = option.Correct
			}
		}
		grades[answer.QuestionID] = correct
		if correct {
			score++
		}
	}

	submittedAt := s.now()
	if err := s.attempts.SubmitAttempt(ctx, attempt.ID, grades, score, submittedAt); err != nil {
		return domain.AttemptResult{}, err
	}

	return domain.AttemptResult{
		AttemptID:   attempt.ID,
		Score:       score,
		Total:       len(quiz.Questions),
		SubmittedAt: submittedAt,
	}, nil
}

// nextQuestion picks the first quiz question, by creation order, that has
// no recorded answer yet.
func nextQuestion(quiz domain.Quiz, answers []domain.AttemptAnswer) (domain.Question, bool) {
	answered := make(map[string]struct{}, len(answers))
	for _, answer := range answers {
		answered[answer.QuestionID] = struct{}{}
	}
	for _, question := range quiz.Questions {
		if _, ok := answered[question.ID]; !ok {
			return question, true
		}
	}
	return domain.Question{}, false
}

func findQuestion(quiz domain.Quiz, questionID string) (domain.Question, bool) {
	for _, question := range quiz.Questions {
		if question.ID == questionID {
			return question, true
		}
	}
	return domain.Question{}, false
}

func findOption(question domain.Question, optionID string) (domain.Option, bool) {
	for _, option := range question.Options {
		if option.ID == optionID {
			return option, true
		}
	}
	return domain.Option{}, false
}
