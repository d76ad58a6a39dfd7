package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
)

// AnswerJournal buffers answer records in a Redis list for later replay to a
// remote collector. Records are appended as: RPUSH trivia:journal {json}
type AnswerJournal struct {
	client *redis.Client
}

func NewAnswerJournal(client *redis.Client) *AnswerJournal {
	return &AnswerJournal{client: client}
}

const journalKey = "trivia:journal"

func (j *AnswerJournal) Append(ctx context.Context, record domain.AnswerRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal answer record: %w", err)
	}
	if err := j.client.RPush(ctx, journalKey, data).Err(); err != nil {
		return fmt.Errorf("append answer record: %w", err)
	}
	return nil
}

// Drain pops up to max buffered records in arrival order, for replay.
func (j *AnswerJournal) Drain(ctx context.Context, max int) ([]domain.AnswerRecord, error) {
	records := make([]domain.AnswerRecord, 0, max)
	for len(records) < max {
		raw, err := j.client.LPop(ctx, journalKey).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return records, err
		}
		var record domain.AnswerRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			// Skip malformed entries rather than wedging the queue.
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
