package app_test

import (
	"context"
	"errors"
	"testing"

	"github.com/soldier14/quizdrill/internal/app"
	"github.com/soldier14/quizdrill/internal/domain"
	"github.com/soldier14/quizdrill/internal/infra/memory"
)

func TestCreateQuizNested(t *testing.T) {
	ctx := context.Background()
	service := app.NewCatalogService(memory.NewCatalogStore(), nil)

	quiz, err := service.CreateQuiz(ctx, app.CreateQuizInput{
		Name: "Geography",
		Questions: []app.QuestionInput{
			{
				Type: domain.QuestionMultipleChoice,
				Text: "Capital of France?",
				Options: []app.OptionInput{
					{Text: "Paris", Correct: true},
					{Text: "Lyon"},
				},
			},
			{
				Type:    domain.QuestionObjective,
				Text:    "Is the Nile in Africa?",
				Options: []app.OptionInput{{Text: "Yes", Correct: true}},
			},
		},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	if quiz.ID == "" || len(quiz.Questions) != 2 {
		t.Fatalf("unexpected quiz shape: %+v", quiz)
	}
	if quiz.Questions[0].Position != 0 || quiz.Questions[1].Position != 1 {
		t.Fatalf("expected creation-order positions, got %d and %d",
			quiz.Questions[0].Position, quiz.Questions[1].Position)
	}
	if quiz.Questions[0].Options[0].ID == "" {
		t.Fatalf("expected option ids assigned")
	}
}

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	service := app.NewCatalogService(memory.NewCatalogStore(), nil)

	cases := []app.CreateQuizInput{
		{Name: ""},
		{Name: "Bad type", Questions: []app.QuestionInput{{Type: "ESSAY", Text: "?"}}},
		{Name: "No text", Questions: []app.QuestionInput{{Type: domain.QuestionObjective}}},
	}
	for _, input := range cases {
		if _, err := service.CreateQuiz(ctx, input); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", input, err)
		}
	}
}

func TestQuizNameUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	service := app.NewCatalogService(memory.NewCatalogStore(), nil)

	if _, err := service.CreateQuiz(ctx, app.CreateQuizInput{Name: "History"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := service.CreateQuiz(ctx, app.CreateQuizInput{Name: "hIsToRy"}); !errors.Is(err, domain.ErrNameTaken) {
		t.Fatalf("expected name taken, got %v", err)
	}
}

func TestRenameQuizInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	store := memory.NewCatalogStore()
	cache := &recordingInvalidator{}
	service := app.NewCatalogService(store, cache)

	quiz, err := service.CreateQuiz(ctx, app.CreateQuizInput{Name: "Old"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	renamed, err := service.RenameQuiz(ctx, quiz.ID, "New")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "New" {
		t.Fatalf("expected renamed quiz, got %q", renamed.Name)
	}
	if len(cache.dropped) != 1 || cache.dropped[0] != quiz.ID {
		t.Fatalf("expected cache invalidation for %s, got %v", quiz.ID, cache.dropped)
	}
}

func TestAddQuestionsAppendsInOrder(t *testing.T) {
	ctx := context.Background()
	service := app.NewCatalogService(memory.NewCatalogStore(), nil)

	quiz, err := service.CreateQuiz(ctx, app.CreateQuizInput{
		Name: "Science",
		Questions: []app.QuestionInput{
			{Type: domain.QuestionObjective, Text: "First?"},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := service.AddQuestions(ctx, quiz.ID, []app.QuestionInput{
		{Type: domain.QuestionObjective, Text: "Second?"},
		{Type: domain.QuestionMultipleChoice, Text: "Third?", Options: []app.OptionInput{{Text: "a"}}},
	})
	if err != nil {
		t.Fatalf("add questions: %v", err)
	}
	if len(updated.Questions) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(updated.Questions))
	}
	if updated.Questions[2].Position != 2 {
		t.Fatalf("expected appended question at position 2, got %d", updated.Questions[2].Position)
	}

	if _, err := service.AddQuestions(ctx, "missing", []app.QuestionInput{{Type: domain.QuestionObjective, Text: "?"}}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

type recordingInvalidator struct {
	dropped []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, quizID string) {
	r.dropped = append(r.dropped, quizID)
}
