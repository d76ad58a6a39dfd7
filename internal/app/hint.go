package app

import (
	"trivia-session-service/internal/domain"
)

// UseHint spends one unit of the session-wide hint budget on the current
// question. On success it keeps one incorrect option visible, chosen uniformly
// at random, and hides every other incorrect option still on screen. The
// correct option is never hidden, hiding is scoped to the current question
// only, and the budget carries across questions. A rejected hint leaves the
// session completely unchanged.
func (s *Session) UseHint() (domain.HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return domain.HintResult{}, domain.ErrSessionCompleted
	}
	if s.hintsUsed >= s.rules.HintBudget {
		return domain.HintResult{}, domain.ErrHintBudgetExhausted
	}
	if s.questionLocked {
		return domain.HintResult{}, domain.ErrQuestionAlreadyAnswered
	}

	q := s.questions[s.currentIndex]

	visibleIncorrect := make([]int, 0, len(q.Options))
	visibleTotal := 0
	for i := range q.Options {
		if _, hidden := s.filtered[i]; hidden {
			continue
		}
		visibleTotal++
		if i != q.CorrectOption {
			visibleIncorrect = append(visibleIncorrect, i)
		}
	}
	if visibleTotal <= 2 {
		return domain.HintResult{}, domain.ErrTooFewOptionsRemaining
	}

	keep := visibleIncorrect[s.rnd.Intn(len(visibleIncorrect))]
	hidden := make([]int, 0, len(visibleIncorrect)-1)
	for _, i := range visibleIncorrect {
		if i == keep {
			continue
		}
		s.filtered[i] = struct{}{}
		hidden = append(hidden, i)
	}
	s.hintsUsed++

	result := domain.HintResult{
		QuestionIndex:  s.currentIndex,
		HiddenOptions:  hidden,
		HintsRemaining: s.rules.HintBudget - s.hintsUsed,
	}
	s.broadcastLocked(domain.SessionEvent{
		Type:          domain.EventHint,
		SessionID:     s.id,
		QuestionIndex: s.currentIndex,
		Hint:          &result,
	})
	return result, nil
}
