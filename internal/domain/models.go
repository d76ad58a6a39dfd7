package domain

import "time"

// Question is an immutable piece of quiz content with exactly one correct option.
type Question struct {
	ID            string   `json:"id"`
	Prompt        string   `json:"prompt"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
	Points        int      `json:"points"` // defaults to 10 if zero
	ImageURL      string   `json:"imageUrl,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
}

// Category is the content-source unit: an ordered set of questions.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// QuestionView is the client-facing projection of a question. It never
// carries the correct option index.
type QuestionView struct {
	Index      int      `json:"index"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"`
	Points     int      `json:"points"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Difficulty string   `json:"difficulty,omitempty"`
	TimeBudget int      `json:"timeBudget"`
}

// AnswerResult summarizes the outcome of a single answer event.
type AnswerResult struct {
	QuestionIndex  int     `json:"questionIndex"`
	SelectedOption int     `json:"selectedOption"`
	Correct        bool    `json:"correct"`
	TimedOut       bool    `json:"timedOut"`
	Awarded        int     `json:"awarded"`
	Streak         int     `json:"streak"`
	Combo          float64 `json:"combo"`
	TotalScore     int     `json:"totalScore"`
}

// HintResult reports which options a hint suppressed for the current question.
type HintResult struct {
	QuestionIndex  int   `json:"questionIndex"`
	HiddenOptions  []int `json:"hiddenOptions"`
	HintsRemaining int   `json:"hintsRemaining"`
}

// SettlementOutcome is the payout decision for a finished or abandoned session.
// AwardedPoints is the full accumulated score when the session is complete and
// zero otherwise, however high the running score climbed.
type SettlementOutcome struct {
	SessionID         string `json:"sessionId"`
	CategoryID        string `json:"categoryId"`
	Complete          bool   `json:"complete"`
	AwardedPoints     int    `json:"awardedPoints"`
	BestStreak        int    `json:"bestStreak"`
	QuestionsAnswered int    `json:"questionsAnswered"`
	QuestionCount     int    `json:"questionCount"`
}

// AnswerRecord is the unit buffered by the offline answer journal for later replay.
type AnswerRecord struct {
	SessionID     string    `json:"sessionId"`
	QuestionIndex int       `json:"questionIndex"`
	Correct       bool      `json:"correct"`
	Points        int       `json:"points"`
	Timestamp     time.Time `json:"timestamp"`
}

// EventType enumerates session transition events.
type EventType string

const (
	EventQuestion  EventType = "question"
	EventTick      EventType = "tick"
	EventAnswered  EventType = "answered"
	EventHint      EventType = "hint"
	EventCompleted EventType = "completed"
)

// SessionEvent is the transition signal delivered to subscribers. At most one
// of Question, Answer, Hint is set depending on Type.
type SessionEvent struct {
	Type          EventType     `json:"type"`
	SessionID     string        `json:"sessionId"`
	QuestionIndex int           `json:"questionIndex"`
	TimeRemaining int           `json:"timeRemaining,omitempty"`
	Question      *QuestionView `json:"question,omitempty"`
	Answer        *AnswerResult `json:"answer,omitempty"`
	Hint          *HintResult   `json:"hint,omitempty"`
}
