package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/soldier14/quizdrill/internal/domain"
)

// CatalogStore is the bun-backed write side of the quiz catalog. Nested
// creates run in one transaction so readers never see a partially
// created quiz.
type CatalogStore struct {
	db *bun.DB
}

func NewCatalogStore(db *bun.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (s *CatalogStore) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := quizRow{
			ID:        quiz.ID,
			Name:      quiz.Name,
			CreatedAt: quiz.CreatedAt,
			UpdatedAt: quiz.UpdatedAt,
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return err
		}
		return insertQuestions(ctx, tx, quiz.Questions)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrNameTaken
		}
		return fmt.Errorf("create quiz: %w", err)
	}
	return nil
}

func (s *CatalogStore) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	var rows []quizRow
	if err := s.db.NewSelect().Model(&rows).Order("created_at ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	summaries := make([]domain.QuizSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, domain.QuizSummary{ID: row.ID, Name: row.Name})
	}
	return summaries, nil
}

func (s *CatalogStore) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz quizRow
	err := s.db.NewSelect().Model(&quiz).Where("q.id = ?", quizID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}

	var questions []questionRow
	err = s.db.NewSelect().Model(&questions).
		Where("qs.quiz_id = ?", quizID).
		Order("position ASC").
		Scan(ctx)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz questions: %w", err)
	}

	var options []optionRow
	if len(questions) > 0 {
		ids := make([]string, 0, len(questions))
		for _, row := range questions {
			ids = append(ids, row.ID)
		}
		err = s.db.NewSelect().Model(&options).
			Where("o.question_id IN (?)", bun.In(ids)).
			Order("question_id ASC", "position ASC").
			Scan(ctx)
		if err != nil {
			return domain.Quiz{}, fmt.Errorf("get quiz options: %w", err)
		}
	}

	return assembleQuiz(quiz, questions, options), nil
}

func (s *CatalogStore) RenameQuiz(ctx context.Context, quizID, name string, at time.Time) error {
	res, err := s.db.NewUpdate().Model((*quizRow)(nil)).
		Set("name = ?", name).
		Set("updated_at = ?", at).
		Where("id = ?", quizID).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrNameTaken
		}
		return fmt.Errorf("rename quiz: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *CatalogStore) AddQuestions(ctx context.Context, quizID string, questions []domain.Question) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*quizRow)(nil)).Where("id = ?", quizID).Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrQuizNotFound
		}
		return insertQuestions(ctx, tx, questions)
	})
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			return err
		}
		return fmt.Errorf("add questions: %w", err)
	}
	return nil
}

// LoadQuiz satisfies the catalog loader interfaces, so the bun store can
// sit behind the caches when no pgx pool is configured.
func (s *CatalogStore) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.GetQuiz(ctx, quizID)
}

func insertQuestions(ctx context.Context, tx bun.Tx, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	qrows, orows := questionRows(questions)
	if _, err := tx.NewInsert().Model(&qrows).Exec(ctx); err != nil {
		return err
	}
	if len(orows) > 0 {
		if _, err := tx.NewInsert().Model(&orows).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
