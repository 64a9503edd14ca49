package domain

import "time"

// OptionView is the student-facing shape of an option. It never carries
// the correctness flag.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the student-facing shape of a question, annotated with
// the attempt it is being served for. Explanation is instructor-only and
// excluded on purpose.
type QuestionView struct {
	ID        string       `json:"id"`
	Type      QuestionType `json:"type"`
	Text      string       `json:"text"`
	Options   []OptionView `json:"options"`
	AttemptID string       `json:"attemptId"`
}

// AttemptStart is the result of starting an attempt. Question is nil for
// a quiz with no questions; the attempt still exists and its ID is set.
type AttemptStart struct {
	AttemptID string        `json:"attemptId"`
	Question  *QuestionView `json:"question"`
}

// Progress is the tagged result of recording an answer: either the next
// unanswered question or an explicit completion marker, never both.
type Progress struct {
	AttemptID string        `json:"attemptId"`
	Completed bool          `json:"completed"`
	Next      *QuestionView `json:"next,omitempty"`
}

// AttemptResult summarizes a graded attempt.
type AttemptResult struct {
	AttemptID   string    `json:"attemptId"`
	Score       int       `json:"score"`
	Total       int       `json:"total"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// StudentView renders a question for a student taking the given attempt.
func StudentView(q Question, attemptID string) *QuestionView {
	options := make([]OptionView, 0, len(q.Options))
	for _, opt := range q.Options {
		options = append(options, OptionView{ID: opt.ID, Text: opt.Text})
	}
	return &QuestionView{
		ID:        q.ID,
		Type:      q.Type,
		Text:      q.Text,
		Options:   options,
		AttemptID: attemptID,
	}
}
