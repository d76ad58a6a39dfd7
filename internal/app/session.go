package app

import (
	"math/rand"
	"sync"
	"time"

	"trivia-session-service/internal/domain"
)

// Rules are the tunable gameplay constants, passed in explicitly at session
// construction instead of read from ambient globals.
type Rules struct {
	QuestionTime        int           // countdown budget per question, in time units
	TickInterval        time.Duration // real duration of one unit; 0 disables the internal clock (tests drive Tick directly)
	HintBudget          int           // hints available per session
	AdvanceDelay        time.Duration // pause between locking an answer and advancing; 0 advances inline
	QuestionsPerSession int           // cap on questions taken from a category; 0 means no cap
}

// DefaultRules returns the production gameplay constants.
func DefaultRules() Rules {
	return Rules{
		QuestionTime:        30,
		TickInterval:        time.Second,
		HintBudget:          2,
		AdvanceDelay:        900 * time.Millisecond,
		QuestionsPerSession: 10,
	}
}

func (r Rules) withDefaults() Rules {
	if r.QuestionTime <= 0 {
		r.QuestionTime = 30
	}
	if r.HintBudget <= 0 {
		r.HintBudget = 2
	}
	return r
}

// Session is one run through a fixed question set, from start to completion
// or abandonment. All mutation goes through Answer, Skip, UseHint and the
// internal tick/advance path; every operation is serialized by the session
// mutex, which turns a race between a late tap and a timer expiry into a
// deterministic first-writer-wins outcome on the per-question answer lock.
type Session struct {
	id         string
	categoryID string
	userID     string
	questions  []domain.Question
	rules      Rules
	now        func() time.Time

	mu           sync.Mutex
	currentIndex int
	score        int
	streak       int
	bestStreak   int
	combo        float64
	hintsUsed    int
	answered     map[int]struct{}
	startTime    time.Time
	completed    bool
	closed       bool
	forwarded    bool

	// per-question ephemeral state, reset on every advance
	questionLocked bool
	selectedOption int
	filtered       map[int]struct{}
	timeRemaining  int

	clock    *countdown
	clockGen uint64

	rnd         *rand.Rand
	subscribers map[chan domain.SessionEvent]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id, categoryID, userID string, questions []domain.Question, rules Rules) *Session {
	return newSessionWithClock(id, categoryID, userID, questions, rules, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id, categoryID, userID string, questions []domain.Question, rules Rules, now func() time.Time) *Session {
	return newSessionWithClock(id, categoryID, userID, questions, rules, now)
}

func newSessionWithClock(id, categoryID, userID string, questions []domain.Question, rules Rules, now func() time.Time) *Session {
	rules = rules.withDefaults()
	return &Session{
		id:             id,
		categoryID:     categoryID,
		userID:         userID,
		questions:      questions,
		rules:          rules,
		now:            now,
		combo:          1,
		answered:       make(map[int]struct{}),
		startTime:      now(),
		selectedOption: -1,
		filtered:       make(map[int]struct{}),
		timeRemaining:  rules.QuestionTime,
		rnd:            rand.New(rand.NewSource(now().UnixNano())),
		subscribers:    make(map[chan domain.SessionEvent]struct{}),
	}
}

// Start arms the countdown for the first question. It is separate from
// construction so the owner can register subscribers before ticks flow.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed || s.closed {
		return
	}
	s.armClockLocked()
	s.broadcastLocked(s.questionEventLocked())
}

func (s *Session) ID() string         { return s.id }
func (s *Session) CategoryID() string { return s.categoryID }
func (s *Session) UserID() string     { return s.userID }

// Score returns the running total of awarded points.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// Completed reports whether the cursor has passed the last question.
func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// CurrentIndex returns the question cursor.
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentIndex
}

// HintsUsed returns how much of the session hint budget is spent.
func (s *Session) HintsUsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hintsUsed
}

// Answer records the player's pick for the current question. A timeout is the
// synthetic Answer(-1), which is always incorrect. The first answer locks the
// question; later attempts are rejected with ErrAlreadyAnswered and leave all
// state untouched.
func (s *Session) Answer(optionIndex int) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answerLocked(optionIndex, false)
}

func (s *Session) answerLocked(optionIndex int, timedOut bool) (domain.AnswerResult, error) {
	if s.completed {
		return domain.AnswerResult{}, domain.ErrSessionCompleted
	}
	if s.questionLocked {
		return domain.AnswerResult{}, domain.ErrAlreadyAnswered
	}

	q := s.questions[s.currentIndex]
	s.questionLocked = true
	s.selectedOption = optionIndex
	s.stopClockLocked()

	correct := optionIndex >= 0 && optionIndex == q.CorrectOption
	fraction := float64(s.timeRemaining) / float64(s.rules.QuestionTime)
	awarded := price(correct, q.Points, fraction, s.combo)
	s.score += awarded
	s.answered[s.currentIndex] = struct{}{}

	if correct {
		s.streak++
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
		if s.streak%3 == 0 {
			s.combo += 0.5
		}
	} else {
		s.streak = 0
		s.combo = 1
	}

	result := domain.AnswerResult{
		QuestionIndex:  s.currentIndex,
		SelectedOption: optionIndex,
		Correct:        correct,
		TimedOut:       timedOut,
		Awarded:        awarded,
		Streak:         s.streak,
		Combo:          s.combo,
		TotalScore:     s.score,
	}
	s.broadcastLocked(domain.SessionEvent{
		Type:          domain.EventAnswered,
		SessionID:     s.id,
		QuestionIndex: result.QuestionIndex,
		Answer:        &result,
	})
	s.scheduleAdvanceLocked()
	return result, nil
}

// Skip forcibly ends the current question as an incorrect answer without
// recording it as answered, which permanently forfeits the session payout.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.completed {
		return domain.ErrSessionCompleted
	}
	if s.questionLocked {
		return domain.ErrAlreadyAnswered
	}

	s.questionLocked = true
	s.selectedOption = -1
	s.stopClockLocked()
	s.streak = 0
	s.combo = 1

	result := domain.AnswerResult{
		QuestionIndex:  s.currentIndex,
		SelectedOption: -1,
		Streak:         0,
		Combo:          1,
		TotalScore:     s.score,
	}
	s.broadcastLocked(domain.SessionEvent{
		Type:          domain.EventAnswered,
		SessionID:     s.id,
		QuestionIndex: result.QuestionIndex,
		Answer:        &result,
	})
	s.scheduleAdvanceLocked()
	return nil
}

// Tick advances the countdown for the current question by one unit. The
// internal clock calls this once per interval; tests with TickInterval zero
// drive it directly.
func (s *Session) Tick() {
	s.mu.Lock()
	gen := s.clockGen
	s.mu.Unlock()
	s.tick(gen)
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.clockGen || s.completed || s.questionLocked {
		return
	}
	if s.timeRemaining > 0 {
		s.timeRemaining--
	}
	if s.timeRemaining == 0 {
		_, _ = s.answerLocked(-1, true)
		return
	}
	s.broadcastLocked(domain.SessionEvent{
		Type:          domain.EventTick,
		SessionID:     s.id,
		QuestionIndex: s.currentIndex,
		TimeRemaining: s.timeRemaining,
	})
}

func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.clockGen || s.completed || s.questionLocked {
		return
	}
	s.timeRemaining = 0
	_, _ = s.answerLocked(-1, true)
}

func (s *Session) scheduleAdvanceLocked() {
	if s.rules.AdvanceDelay <= 0 {
		s.advanceLocked()
		return
	}
	idx := s.currentIndex
	time.AfterFunc(s.rules.AdvanceDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Stale if the session already moved on or was torn down.
		if s.closed || s.completed || s.currentIndex != idx || !s.questionLocked {
			return
		}
		s.advanceLocked()
	})
}

func (s *Session) advanceLocked() {
	s.currentIndex++
	if s.currentIndex >= len(s.questions) {
		s.completed = true
		s.stopClockLocked()
		s.broadcastLocked(domain.SessionEvent{
			Type:          domain.EventCompleted,
			SessionID:     s.id,
			QuestionIndex: s.currentIndex,
		})
		return
	}

	s.questionLocked = false
	s.selectedOption = -1
	s.filtered = make(map[int]struct{})
	s.timeRemaining = s.rules.QuestionTime
	s.armClockLocked()
	s.broadcastLocked(s.questionEventLocked())
}

func (s *Session) armClockLocked() {
	s.clockGen++
	if s.closed || s.rules.TickInterval <= 0 {
		return
	}
	gen := s.clockGen
	s.clock = startCountdown(s.rules.QuestionTime, s.rules.TickInterval,
		func(int) { s.tick(gen) },
		func() { s.expire(gen) },
	)
}

func (s *Session) stopClockLocked() {
	s.clockGen++
	if s.clock != nil {
		s.clock.stop()
		s.clock = nil
	}
}

// Shutdown cancels the active countdown and any pending advancement, and
// stops the session from progressing further. Used when the player abandons
// mid-game; an abandoned session stays frozen wherever it was.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopClockLocked()
}

// markForwarded flips the ledger-forwarding guard exactly once, so repeated
// settlement calls cannot double-credit the wallet.
func (s *Session) markForwarded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.forwarded {
		return false
	}
	s.forwarded = true
	return true
}

func (s *Session) unmarkForwarded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forwarded = false
}

// Subscribe returns a channel of session transition events plus a cancel
// function the caller must invoke to avoid leaks. The first delivery is the
// current state (question or completion), so late subscribers can catch up.
func (s *Session) Subscribe() (<-chan domain.SessionEvent, func()) {
	ch := make(chan domain.SessionEvent, 16)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	var initial domain.SessionEvent
	if s.completed {
		initial = domain.SessionEvent{
			Type:          domain.EventCompleted,
			SessionID:     s.id,
			QuestionIndex: s.currentIndex,
		}
	} else {
		initial = s.questionEventLocked()
	}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(event domain.SessionEvent) {
	for ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Drop the oldest pending event so slow consumers never block gameplay.
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

func (s *Session) questionEventLocked() domain.SessionEvent {
	view := s.questionViewLocked()
	return domain.SessionEvent{
		Type:          domain.EventQuestion,
		SessionID:     s.id,
		QuestionIndex: s.currentIndex,
		TimeRemaining: s.timeRemaining,
		Question:      &view,
	}
}

func (s *Session) questionViewLocked() domain.QuestionView {
	q := s.questions[s.currentIndex]
	points := q.Points
	if points == 0 {
		points = defaultBasePoints
	}
	return domain.QuestionView{
		Index:      s.currentIndex,
		Prompt:     q.Prompt,
		Options:    append([]string(nil), q.Options...),
		Points:     points,
		ImageURL:   q.ImageURL,
		Difficulty: q.Difficulty,
		TimeBudget: s.rules.QuestionTime,
	}
}
