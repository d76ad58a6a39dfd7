package app

import (
	"trivia-session-service/internal/domain"
)

// Settle decides the session payout. Completeness is judged solely from the
// set of recorded answer events, never from the cursor: a session pays out
// its full accumulated score only when every question index was answered
// (timeouts included), and zero otherwise. Skipped questions are never
// recorded, so a single skip forfeits everything. The call is idempotent and
// has no side effects; forwarding to the wallet is the caller's step.
func (s *Session) Settle() domain.SettlementOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	complete := len(s.answered) == len(s.questions)
	awarded := 0
	if complete {
		awarded = s.score
	}
	return domain.SettlementOutcome{
		SessionID:         s.id,
		CategoryID:        s.categoryID,
		Complete:          complete,
		AwardedPoints:     awarded,
		BestStreak:        s.bestStreak,
		QuestionsAnswered: len(s.answered),
		QuestionCount:     len(s.questions),
	}
}
