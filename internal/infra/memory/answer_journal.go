package memory

import (
	"context"
	"sync"

	"trivia-session-service/internal/domain"
)

// AnswerJournal buffers answer records in memory. It exists so the service
// keeps a journal even when Redis is not configured; records are lost on
// restart, which is acceptable for a best-effort replay buffer.
type AnswerJournal struct {
	mu      sync.Mutex
	records []domain.AnswerRecord
}

func NewAnswerJournal() *AnswerJournal {
	return &AnswerJournal{}
}

func (j *AnswerJournal) Append(_ context.Context, record domain.AnswerRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, record)
	return nil
}

// Drain returns all buffered records and empties the journal.
func (j *AnswerJournal) Drain() []domain.AnswerRecord {
	j.mu.Lock()
	defer j.mu.Unlock()
	records := j.records
	j.records = nil
	return records
}
