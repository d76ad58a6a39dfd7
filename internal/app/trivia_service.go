package app

import (
	"context"
	"log"

	"github.com/google/uuid"

	"trivia-session-service/internal/domain"
)

// SessionRepository abstracts how active sessions are stored (in-memory, Redis-backed, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionRepository loads category content (from cache/backing store).
type QuestionRepository interface {
	GetCategory(ctx context.Context, categoryID string) (domain.Category, error)
}

// PointsLedger is the external wallet. Earn is invoked only for complete
// sessions with a positive payout.
type PointsLedger interface {
	Earn(ctx context.Context, userID string, amount int, description string, outcome domain.SettlementOutcome) error
}

// AnswerJournal buffers answer records for later remote replay. It is
// best-effort: a journal failure never fails gameplay.
type AnswerJournal interface {
	Append(ctx context.Context, record domain.AnswerRecord) error
}

// TriviaService contains the trivia gameplay use cases.
type TriviaService struct {
	sessions SessionRepository
	content  QuestionRepository
	ledger   PointsLedger
	journal  AnswerJournal
	rules    Rules
}

func NewTriviaService(sessions SessionRepository, content QuestionRepository, ledger PointsLedger, journal AnswerJournal, rules Rules) *TriviaService {
	return &TriviaService{
		sessions: sessions,
		content:  content,
		ledger:   ledger,
		journal:  journal,
		rules:    rules.withDefaults(),
	}
}

// StartSession loads and validates a category's questions and begins a new
// timed session for the user.
func (s *TriviaService) StartSession(ctx context.Context, categoryID, userID string) (*Session, error) {
	category, err := s.content.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	questions := category.Questions
	if s.rules.QuestionsPerSession > 0 && len(questions) > s.rules.QuestionsPerSession {
		questions = questions[:s.rules.QuestionsPerSession]
	}
	if err := validateQuestionSet(questions); err != nil {
		return nil, err
	}

	session := NewSession(uuid.NewString(), categoryID, userID, questions, s.rules)
	s.sessions.Put(session)
	session.Start()
	return session, nil
}

// Answer forwards the player's pick to the session and journals the outcome.
func (s *TriviaService) Answer(ctx context.Context, sessionID string, optionIndex int) (domain.AnswerResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	result, err := session.Answer(optionIndex)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	s.journalAnswer(ctx, session, result)
	return result, nil
}

// Skip forfeits the current question and with it the session payout.
func (s *TriviaService) Skip(_ context.Context, sessionID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}
	return session.Skip()
}

// UseHint spends a hint on the session's current question.
func (s *TriviaService) UseHint(_ context.Context, sessionID string) (domain.HintResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.HintResult{}, domain.ErrSessionNotFound
	}
	return session.UseHint()
}

// Settle computes the payout decision and, for a complete session with a
// positive award, forwards it to the points ledger exactly once. Repeated
// calls return the same outcome without double-crediting.
func (s *TriviaService) Settle(ctx context.Context, sessionID string) (domain.SettlementOutcome, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.SettlementOutcome{}, domain.ErrSessionNotFound
	}

	outcome := session.Settle()
	if !outcome.Complete || outcome.AwardedPoints <= 0 {
		return outcome, nil
	}
	if !session.markForwarded() {
		return outcome, nil
	}
	if err := s.ledger.Earn(ctx, session.UserID(), outcome.AwardedPoints, "trivia session reward", outcome); err != nil {
		// Allow the caller to retry the transfer.
		session.unmarkForwarded()
		return outcome, err
	}
	return outcome, nil
}

// Abandon cancels the countdown and discards the session. Nothing is
// forwarded to the ledger; an abandoned session settles as permanently
// incomplete.
func (s *TriviaService) Abandon(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Shutdown()
	s.sessions.Delete(sessionID)
}

// Subscribe returns a channel that receives transition events for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *TriviaService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionEvent, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

func (s *TriviaService) journalAnswer(ctx context.Context, session *Session, result domain.AnswerResult) {
	if s.journal == nil {
		return
	}
	record := domain.AnswerRecord{
		SessionID:     session.ID(),
		QuestionIndex: result.QuestionIndex,
		Correct:       result.Correct,
		Points:        result.Awarded,
		Timestamp:     session.now(),
	}
	if err := s.journal.Append(ctx, record); err != nil {
		log.Printf("answer journal append failed: %v", err)
	}
}

// validateQuestionSet fails fast on structurally broken content: an empty
// set, a question with fewer than two options, or a correct index out of
// bounds.
func validateQuestionSet(questions []domain.Question) error {
	if len(questions) == 0 {
		return domain.ErrInvalidQuestionSet
	}
	for _, q := range questions {
		if len(q.Options) < 2 {
			return domain.ErrInvalidQuestionSet
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return domain.ErrInvalidQuestionSet
		}
	}
	return nil
}
