package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/soldier14/quizdrill/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name"`
	CreatedAt time.Time `bun:"created_at"`
	UpdatedAt time.Time `bun:"updated_at"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qs"`

	ID          string `bun:"id,pk"`
	QuizID      string `bun:"quiz_id"`
	Type        string `bun:"question_type"`
	Text        string `bun:"question_text"`
	Explanation string `bun:"explanation"`
	Position    int    `bun:"position"`
}

type optionRow struct {
	bun.BaseModel `bun:"table:options,alias:o"`

	ID         string `bun:"id,pk"`
	QuestionID string `bun:"question_id"`
	Text       string `bun:"option_text"`
	IsCorrect  bool   `bun:"is_correct"`
	Position   int    `bun:"position"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:attempts,alias:a"`

	ID          string     `bun:"id,pk"`
	UserID      string     `bun:"user_id"`
	QuizID      string     `bun:"quiz_id"`
	Status      string     `bun:"status"`
	Score       *int       `bun:"score"`
	StartedAt   time.Time  `bun:"started_at"`
	SubmittedAt *time.Time `bun:"submitted_at"`
}

type attemptAnswerRow struct {
	bun.BaseModel `bun:"table:attempt_answers,alias:aa"`

	ID         string    `bun:"id,pk"`
	AttemptID  string    `bun:"attempt_id"`
	QuestionID string    `bun:"question_id"`
	OptionID   string    `bun:"option_id"`
	IsCorrect  *bool     `bun:"is_correct"`
	AnsweredAt time.Time `bun:"answered_at"`
}

func questionRows(questions []domain.Question) ([]questionRow, []optionRow) {
	qrows := make([]questionRow, 0, len(questions))
	var orows []optionRow
	for _, question := range questions {
		qrows = append(qrows, questionRow{
			ID:          question.ID,
			QuizID:      question.QuizID,
			Type:        string(question.Type),
			Text:        question.Text,
			Explanation: question.Explanation,
			Position:    question.Position,
		})
		for _, option := range question.Options {
			orows = append(orows, optionRow{
				ID:         option.ID,
				QuestionID: question.ID,
				Text:       option.Text,
				IsCorrect:  option.Correct,
				Position:   option.Position,
			})
		}
	}
	return qrows, orows
}

func assembleQuiz(quiz quizRow, questions []questionRow, options []optionRow) domain.Quiz {
	optionsByQuestion := make(map[string][]domain.Option, len(questions))
	for _, row := range options {
		optionsByQuestion[row.QuestionID] = append(optionsByQuestion[row.QuestionID], domain.Option{
			ID:       row.ID,
			Text:     row.Text,
			Correct:  row.IsCorrect,
			Position: row.Position,
		})
	}

	result := domain.Quiz{
		ID:        quiz.ID,
		Name:      quiz.Name,
		CreatedAt: quiz.CreatedAt,
		UpdatedAt: quiz.UpdatedAt,
	}
	for _, row := range questions {
		result.Questions = append(result.Questions, domain.Question{
			ID:          row.ID,
			QuizID:      row.QuizID,
			Type:        domain.QuestionType(row.Type),
			Text:        row.Text,
			Explanation: row.Explanation,
			Position:    row.Position,
			Options:     optionsByQuestion[row.ID],
		})
	}
	return result
}
