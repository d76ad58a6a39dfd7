package memory

import (
	"context"
	"sync"

	"trivia-session-service/internal/domain"
)

// LedgerEntry is one recorded wallet credit.
type LedgerEntry struct {
	UserID      string
	Amount      int
	Description string
	Outcome     domain.SettlementOutcome
}

// Ledger is an in-process points ledger, used when no external wallet is
// configured and as a capture double in tests.
type Ledger struct {
	mu      sync.Mutex
	entries []LedgerEntry
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Earn(_ context.Context, userID string, amount int, description string, outcome domain.SettlementOutcome) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LedgerEntry{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Outcome:     outcome,
	})
	return nil
}

// Entries returns a copy of all recorded credits.
func (l *Ledger) Entries() []LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LedgerEntry(nil), l.entries...)
}

// Balance sums all credits for a user.
func (l *Ledger) Balance(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, e := range l.entries {
		if e.UserID == userID {
			total += e.Amount
		}
	}
	return total
}
