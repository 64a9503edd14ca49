package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/soldier14/quizdrill/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore.
// Answers are keyed by (attempt, question) under one mutex, which gives
// the same single-row guarantee the Postgres unique index provides.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts map[string]domain.Attempt
	answers  map[string]map[string]domain.AttemptAnswer
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		attempts: make(map[string]domain.Attempt),
		answers:  make(map[string]map[string]domain.AttemptAnswer),
	}
}

func (s *AttemptStore) CreateAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = attempt
	s.answers[attempt.ID] = make(map[string]domain.AttemptAnswer)
	return nil
}

func (s *AttemptStore) GetAttempt(_ context.Context, attemptID, userID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok || attempt.UserID != userID {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *AttemptStore) UpsertAnswer(_ context.Context, answer domain.AttemptAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byQuestion, ok := s.answers[answer.AttemptID]
	if !ok {
		return domain.ErrAttemptNotFound
	}
	if existing, ok := byQuestion[answer.QuestionID]; ok {
		// Overwrite in place: keep the original row identity, swap the
		// option reference and refresh the timestamp.
		existing.OptionID = answer.OptionID
		existing.Correct = nil
		existing.AnsweredAt = answer.AnsweredAt
		byQuestion[answer.QuestionID] = existing
		return nil
	}
	byQuestion[answer.QuestionID] = answer
	return nil
}

func (s *AttemptStore) ListAnswers(_ context.Context, attemptID string) ([]domain.AttemptAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byQuestion, ok := s.answers[attemptID]
	if !ok {
		return nil, domain.ErrAttemptNotFound
	}
	answers := make([]domain.AttemptAnswer, 0, len(byQuestion))
	for _, answer := range byQuestion {
		answers = append(answers, answer)
	}
	sort.Slice(answers, func(i, j int) bool {
		return answers[i].AnsweredAt.Before(answers[j].AnsweredAt)
	})
	return answers, nil
}

func (s *AttemptStore) SubmitAttempt(_ context.Context, attemptID string, grades map[string]bool, score int, submittedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.ErrAttemptNotFound
	}
	for questionID, correct := range grades {
		correct := correct
		answer, ok := s.answers[attemptID][questionID]
		if !ok {
			continue
		}
		answer.Correct = &correct
		s.answers[attemptID][questionID] = answer
	}
	attempt.Status = domain.AttemptSubmitted
	attempt.Score = &score
	attempt.SubmittedAt = &submittedAt
	s.attempts[attemptID] = attempt
	return nil
}
