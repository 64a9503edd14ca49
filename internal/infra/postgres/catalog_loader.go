package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/soldier14/quizdrill/internal/domain"
)

// CatalogLoader is the pgx read side of the catalog: it fetches one quiz
// with its questions and options, in creation order, for the attempt
// engine and the caches in front of it.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

func (l *CatalogLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	err := l.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM quizzes WHERE id = $1`,
		quizID,
	).Scan(&quiz.ID, &quiz.Name, &quiz.CreatedAt, &quiz.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quiz{}, domain.ErrQuizNotFound
		}
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := l.pool.Query(ctx,
		`SELECT id, quiz_id, question_type, question_text, explanation, position
		 FROM questions WHERE quiz_id = $1 ORDER BY position`,
		quizID,
	)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	index := make(map[string]int)
	for rows.Next() {
		var q domain.Question
		var typ string
		if err := rows.Scan(&q.ID, &q.QuizID, &typ, &q.Text, &q.Explanation, &q.Position); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(typ)
		index[q.ID] = len(quiz.Questions)
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load questions: %w", err)
	}

	optRows, err := l.pool.Query(ctx,
		`SELECT o.id, o.question_id, o.option_text, o.is_correct, o.position
		 FROM options o
		 JOIN questions qs ON qs.id = o.question_id
		 WHERE qs.quiz_id = $1
		 ORDER BY o.question_id, o.position`,
		quizID,
	)
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt domain.Option
		var questionID string
		if err := optRows.Scan(&opt.ID, &questionID, &opt.Text, &opt.Correct, &opt.Position); err != nil {
			return domain.Quiz{}, fmt.Errorf("scan option: %w", err)
		}
		if i, ok := index[questionID]; ok {
			quiz.Questions[i].Options = append(quiz.Questions[i].Options, opt)
		}
	}
	if err := optRows.Err(); err != nil {
		return domain.Quiz{}, fmt.Errorf("load options: %w", err)
	}

	return quiz, nil
}
