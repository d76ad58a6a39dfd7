package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
)

func TestAnswerJournalAppendAndDrain(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	journal := NewAnswerJournal(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		record := domain.AnswerRecord{
			SessionID:     "s1",
			QuestionIndex: i,
			Correct:       i%2 == 0,
			Points:        i * 10,
			Timestamp:     time.Now(),
		}
		if err := journal.Append(ctx, record); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	records, err := journal.Drain(ctx, 2)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 drained records, got %d", len(records))
	}
	if records[0].QuestionIndex != 0 || records[1].QuestionIndex != 1 {
		t.Fatalf("expected arrival order, got %+v", records)
	}

	rest, err := journal.Drain(ctx, 10)
	if err != nil {
		t.Fatalf("drain rest: %v", err)
	}
	if len(rest) != 1 || rest[0].QuestionIndex != 2 {
		t.Fatalf("expected final record, got %+v", rest)
	}
}
