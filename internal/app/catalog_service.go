package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/soldier14/quizdrill/internal/domain"
)

// CatalogStore is the write side of the quiz catalog. CreateQuiz and
// AddQuestions must be atomic: either every nested row lands or none do.
type CatalogStore interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	RenameQuiz(ctx context.Context, quizID, name string, at time.Time) error
	AddQuestions(ctx context.Context, quizID string, questions []domain.Question) error
}

// CatalogInvalidator drops a cached quiz after an authoring write.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, quizID string)
}

type noopInvalidator struct{}

func (noopInvalidator) Invalidate(context.Context, string) {}

// OptionInput is one option in an authoring payload.
type OptionInput struct {
	Text    string `json:"text"`
	Correct bool   `json:"isCorrect"`
}

// QuestionInput is one question in an authoring payload.
type QuestionInput struct {
	Type        domain.QuestionType `json:"type"`
	Text        string              `json:"text"`
	Explanation string              `json:"explanation"`
	Options     []OptionInput       `json:"options"`
}

// CreateQuizInput creates a quiz together with its nested questions and
// options in one shot.
type CreateQuizInput struct {
	Name      string          `json:"name"`
	Questions []QuestionInput `json:"questions"`
}

// CatalogService covers the authoring surface: create, list, retrieve,
// rename, and bulk question add. Each former dispatch action is its own
// method.
type CatalogService struct {
	store CatalogStore
	cache CatalogInvalidator
	now   func() time.Time
}

func NewCatalogService(store CatalogStore, cache CatalogInvalidator) *CatalogService {
	if cache == nil {
		cache = noopInvalidator{}
	}
	return &CatalogService{store: store, cache: cache, now: time.Now}
}

// CreateQuiz validates and persists a quiz with all nested questions and
// options atomically.
func (s *CatalogService) CreateQuiz(ctx context.Context, input CreateQuizInput) (domain.Quiz, error) {
	if input.Name == "" {
		return domain.Quiz{}, domain.ErrInvalidInput
	}

	now := s.now()
	quiz := domain.Quiz{
		ID:        uuid.NewString(),
		Name:      input.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	questions, err := buildQuestions(quiz.ID, 0, input.Questions)
	if err != nil {
		return domain.Quiz{}, err
	}
	quiz.Questions = questions

	if err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// ListQuizzes returns id+name summaries of every quiz.
func (s *CatalogService) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	return s.store.ListQuizzes(ctx)
}

// GetQuiz returns the full authoring view, correctness flags and
// explanations included.
func (s *CatalogService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quizID == "" {
		return domain.Quiz{}, domain.ErrInvalidInput
	}
	return s.store.GetQuiz(ctx, quizID)
}

// RenameQuiz updates the quiz name; the catalog cache entry is dropped so
// readers never see a stale name.
func (s *CatalogService) RenameQuiz(ctx context.Context, quizID, name string) (domain.Quiz, error) {
	if quizID == "" || name == "" {
		return domain.Quiz{}, domain.ErrInvalidInput
	}
	if err := s.store.RenameQuiz(ctx, quizID, name, s.now()); err != nil {
		return domain.Quiz{}, err
	}
	s.cache.Invalidate(ctx, quizID)
	return s.store.GetQuiz(ctx, quizID)
}

// AddQuestions appends questions (with nested options) to an existing
// quiz as one atomic write.
func (s *CatalogService) AddQuestions(ctx context.Context, quizID string, inputs []QuestionInput) (domain.Quiz, error) {
	if quizID == "" || len(inputs) == 0 {
		return domain.Quiz{}, domain.ErrInvalidInput
	}

	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}

	questions, err := buildQuestions(quiz.ID, len(quiz.Questions), inputs)
	if err != nil {
		return domain.Quiz{}, err
	}
	if err := s.store.AddQuestions(ctx, quiz.ID, questions); err != nil {
		return domain.Quiz{}, err
	}
	s.cache.Invalidate(ctx, quizID)
	return s.store.GetQuiz(ctx, quizID)
}

func buildQuestions(quizID string, startPos int, inputs []QuestionInput) ([]domain.Question, error) {
	questions := make([]domain.Question, 0, len(inputs))
	for i, in := range inputs {
		if !in.Type.Valid() || in.Text == "" {
			return nil, domain.ErrInvalidInput
		}
		question := domain.Question{
			ID:          uuid.NewString(),
			QuizID:      quizID,
			Type:        in.Type,
			Text:        in.Text,
			Explanation: in.Explanation,
			Position:    startPos + i,
		}
		for j, opt := range in.Options {
			if opt.Text == "" {
				return nil, domain.ErrInvalidInput
			}
			question.Options = append(question.Options, domain.Option{
				ID:       uuid.NewString(),
				Text:     opt.Text,
				Correct:  opt.Correct,
				Position: j,
			})
		}
		questions = append(questions, question)
	}
	return questions, nil
}
