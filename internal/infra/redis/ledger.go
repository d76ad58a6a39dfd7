package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
)

// Ledger credits points into Redis: a running balance per user plus an
// append-only list of entry records for audit.
//
//	INCRBY trivia:balance:{userID} {amount}
//	LPUSH  trivia:ledger:{userID}  {json entry}
type Ledger struct {
	client *redis.Client
}

func NewLedger(client *redis.Client) *Ledger {
	return &Ledger{client: client}
}

type ledgerEntry struct {
	SessionID   string    `json:"sessionId"`
	CategoryID  string    `json:"categoryId"`
	Amount      int       `json:"amount"`
	Description string    `json:"description"`
	BestStreak  int       `json:"bestStreak"`
	Answered    int       `json:"answered"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (l *Ledger) Earn(ctx context.Context, userID string, amount int, description string, outcome domain.SettlementOutcome) error {
	entry := ledgerEntry{
		SessionID:   outcome.SessionID,
		CategoryID:  outcome.CategoryID,
		Amount:      amount,
		Description: description,
		BestStreak:  outcome.BestStreak,
		Answered:    outcome.QuestionsAnswered,
		CreatedAt:   time.Now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal ledger entry: %w", err)
	}

	pipe := l.client.TxPipeline()
	pipe.IncrBy(ctx, l.balanceKey(userID), int64(amount))
	pipe.LPush(ctx, l.entriesKey(userID), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("credit ledger: %w", err)
	}
	return nil
}

// Balance reads the running total for a user.
func (l *Ledger) Balance(ctx context.Context, userID string) (int, error) {
	val, err := l.client.Get(ctx, l.balanceKey(userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

func (l *Ledger) balanceKey(userID string) string {
	return "trivia:balance:" + userID
}

func (l *Ledger) entriesKey(userID string) string {
	return "trivia:ledger:" + userID
}
