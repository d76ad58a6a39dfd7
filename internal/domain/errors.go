package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no active session matches the id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCategoryNotFound indicates the category content could not be loaded.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrInvalidQuestionSet is a fatal pre-start error: empty set, a question
	// with fewer than two options, or a correct index out of bounds.
	ErrInvalidQuestionSet = errors.New("invalid question set")
	// ErrAlreadyAnswered rejects a second answer on a locked question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrSessionCompleted rejects gameplay operations on a finished session.
	ErrSessionCompleted = errors.New("session completed")
	// ErrHintBudgetExhausted rejects a hint once the session budget is spent.
	ErrHintBudgetExhausted = errors.New("hint budget exhausted")
	// ErrQuestionAlreadyAnswered rejects a hint on a locked question.
	ErrQuestionAlreadyAnswered = errors.New("hint unavailable after answering")
	// ErrTooFewOptionsRemaining rejects a hint that would leave fewer than
	// two visible options.
	ErrTooFewOptionsRemaining = errors.New("too few options remaining for hint")
)
