package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/soldier14/quizdrill/internal/domain"
)

// AttemptStore persists attempts and answers via bun. The unique index
// on (attempt_id, question_id) plus ON CONFLICT DO UPDATE makes the
// answer upsert atomic: concurrent first-time answers to the same
// question collapse to one row with the later write's option winning.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) CreateAttempt(ctx context.Context, attempt domain.Attempt) error {
	row := attemptRow{
		ID:          attempt.ID,
		UserID:      attempt.UserID,
		QuizID:      attempt.QuizID,
		Status:      string(attempt.Status),
		Score:       attempt.Score,
		StartedAt:   attempt.StartedAt,
		SubmittedAt: attempt.SubmittedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) GetAttempt(ctx context.Context, attemptID, userID string) (domain.Attempt, error) {
	var row attemptRow
	err := s.db.NewSelect().Model(&row).
		Where("a.id = ?", attemptID).
		Where("a.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Attempt{}, domain.ErrAttemptNotFound
		}
		return domain.Attempt{}, fmt.Errorf("get attempt: %w", err)
	}
	return domain.Attempt{
		ID:          row.ID,
		UserID:      row.UserID,
		QuizID:      row.QuizID,
		Status:      domain.AttemptStatus(row.Status),
		Score:       row.Score,
		StartedAt:   row.StartedAt,
		SubmittedAt: row.SubmittedAt,
	}, nil
}

func (s *AttemptStore) UpsertAnswer(ctx context.Context, answer domain.AttemptAnswer) error {
	row := attemptAnswerRow{
		ID:         answer.ID,
		AttemptID:  answer.AttemptID,
		QuestionID: answer.QuestionID,
		OptionID:   answer.OptionID,
		IsCorrect:  answer.Correct,
		AnsweredAt: answer.AnsweredAt,
	}
	_, err := s.db.NewInsert().Model(&row).
		On("CONFLICT (attempt_id, question_id) DO UPDATE").
		Set("option_id = EXCLUDED.option_id").
		Set("is_correct = NULL").
		Set("answered_at = EXCLUDED.answered_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	return nil
}

func (s *AttemptStore) ListAnswers(ctx context.Context, attemptID string) ([]domain.AttemptAnswer, error) {
	var rows []attemptAnswerRow
	err := s.db.NewSelect().Model(&rows).
		Where("aa.attempt_id = ?", attemptID).
		Order("answered_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	answers := make([]domain.AttemptAnswer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, domain.AttemptAnswer{
			ID:         row.ID,
			AttemptID:  row.AttemptID,
			QuestionID: row.QuestionID,
			OptionID:   row.OptionID,
			Correct:    row.IsCorrect,
			AnsweredAt: row.AnsweredAt,
		})
	}
	return answers, nil
}

func (s *AttemptStore) SubmitAttempt(ctx context.Context, attemptID string, grades map[string]bool, score int, submittedAt time.Time) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for questionID, correct := range grades {
			_, err := tx.NewUpdate().Model((*attemptAnswerRow)(nil)).
				Set("is_correct = ?", correct).
				Where("attempt_id = ?", attemptID).
				Where("question_id = ?", questionID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		res, err := tx.NewUpdate().Model((*attemptRow)(nil)).
			Set("status = ?", string(domain.AttemptSubmitted)).
			Set("score = ?", score).
			Set("submitted_at = ?", submittedAt).
			Where("id = ?", attemptID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return domain.ErrAttemptNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrAttemptNotFound) {
			return err
		}
		return fmt.Errorf("submit attempt: %w", err)
	}
	return nil
}
