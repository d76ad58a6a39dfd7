package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-session-service/internal/domain"
)

// Ledger persists wallet credits into the ledger_entries table. The session
// id carries a unique constraint, so a retried settlement cannot credit the
// same session twice even across process restarts.
type Ledger struct {
	pool *pgxpool.Pool
}

func NewLedger(pool *pgxpool.Pool) *Ledger {
	return &Ledger{pool: pool}
}

func (l *Ledger) Earn(ctx context.Context, userID string, amount int, description string, outcome domain.SettlementOutcome) error {
	meta, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal settlement metadata: %w", err)
	}
	_, err = l.pool.Exec(ctx,
		`INSERT INTO ledger_entries (session_id, user_id, category_id, amount, description, metadata)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_id) DO NOTHING`,
		outcome.SessionID, userID, outcome.CategoryID, amount, description, meta)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// Balance sums all credits for a user.
func (l *Ledger) Balance(ctx context.Context, userID string) (int, error) {
	var total int
	err := l.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id=$1`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum ledger: %w", err)
	}
	return total, nil
}
