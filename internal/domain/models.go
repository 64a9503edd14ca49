package domain

import "time"

// QuestionType distinguishes objective questions from multiple-choice ones.
type QuestionType string

const (
	QuestionObjective      QuestionType = "OBJECTIVE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
)

// Valid reports whether the type is one of the known question types.
func (t QuestionType) Valid() bool {
	return t == QuestionObjective || t == QuestionMultipleChoice
}

// AttemptStatus is the lifecycle state of an attempt.
type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// Option represents a possible answer for a question. Correct is never
// exposed to students; it only feeds grading and the authoring views.
type Option struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Correct  bool   `json:"correct"`
	Position int    `json:"position"`
}

// Question belongs to exactly one quiz for its lifetime.
type Question struct {
	ID          string       `json:"id"`
	QuizID      string       `json:"quizId"`
	Type        QuestionType `json:"type"`
	Text        string       `json:"text"`
	Explanation string       `json:"explanation"`
	Position    int          `json:"position"`
	Options     []Option     `json:"options"`
}

// Quiz is an ordered collection of questions. Stores keep Questions in
// creation order, with Position as the explicit tiebreaker.
type Quiz struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Questions []Question `json:"questions"`
}

// QuizSummary is the list-view shape of a quiz.
type QuizSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Attempt is one user's run through a quiz. Score and SubmittedAt stay
// nil until the attempt is finished.
type Attempt struct {
	ID          string
	UserID      string
	QuizID      string
	Status      AttemptStatus
	Score       *int
	StartedAt   time.Time
	SubmittedAt *time.Time
}

// AttemptAnswer records the option a user picked for one question within
// one attempt. At most one row exists per (attempt, question); answering
// the same question again swaps OptionID in place. Correct stays nil
// until the attempt is graded.
type AttemptAnswer struct {
	ID         string
	AttemptID  string
	QuestionID string
	OptionID   string
	Correct    *bool
	AnsweredAt time.Time
}
