package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soldier14/quizdrill/internal/domain"
)

// CatalogStore is an in-memory implementation of app.CatalogStore. It
// doubles as a CatalogLoader so it can sit behind the caching repository
// in single-process setups.
type CatalogStore struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{quizzes: make(map[string]domain.Quiz)}
}

func (s *CatalogStore) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.quizzes {
		if strings.EqualFold(existing.Name, quiz.Name) {
			return domain.ErrNameTaken
		}
	}
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *CatalogStore) ListQuizzes(_ context.Context) ([]domain.QuizSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		quizzes = append(quizzes, quiz)
	}
	sort.Slice(quizzes, func(i, j int) bool {
		if !quizzes[i].CreatedAt.Equal(quizzes[j].CreatedAt) {
			return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt)
		}
		return quizzes[i].ID < quizzes[j].ID
	})
	summaries := make([]domain.QuizSummary, 0, len(quizzes))
	for _, quiz := range quizzes {
		summaries = append(summaries, domain.QuizSummary{ID: quiz.ID, Name: quiz.Name})
	}
	return summaries, nil
}

func (s *CatalogStore) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (s *CatalogStore) RenameQuiz(_ context.Context, quizID, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	for id, existing := range s.quizzes {
		if id != quizID && strings.EqualFold(existing.Name, name) {
			return domain.ErrNameTaken
		}
	}
	quiz.Name = name
	quiz.UpdatedAt = at
	s.quizzes[quizID] = quiz
	return nil
}

func (s *CatalogStore) AddQuestions(_ context.Context, quizID string, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.Questions = append(quiz.Questions, questions...)
	s.quizzes[quizID] = cloneQuiz(quiz)
	return nil
}

// LoadQuiz satisfies CatalogLoader.
func (s *CatalogStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.GetQuiz(ctx, quizID)
}

func cloneQuiz(quiz domain.Quiz) domain.Quiz {
	questions := make([]domain.Question, len(quiz.Questions))
	for i, question := range quiz.Questions {
		question.Options = append([]domain.Option(nil), question.Options...)
		questions[i] = question
	}
	quiz.Questions = questions
	return quiz
}
