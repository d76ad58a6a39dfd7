package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/domain"
	"trivia-session-service/internal/infra/memory"
)

func TestCategoryRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CategoryLoader: memory.NewStaticCategoryLoader(map[string]domain.Category{
			"general": sampleCategory(),
		}),
	}
	repo := NewCategoryRepository(client, loader, time.Minute)

	category, err := repo.GetCategory(context.Background(), "general")
	if err != nil {
		t.Fatalf("get category: %v", err)
	}
	if len(category.Questions) != 1 || category.Questions[0].CorrectOption != 1 {
		t.Fatalf("unexpected category from loader: %+v", category)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("trivia:category:general") {
		t.Fatalf("expected cached redis key")
	}

	// Second call should hit cache, loader not incremented, content intact.
	cached, err := repo.GetCategory(context.Background(), "general")
	if err != nil {
		t.Fatalf("get category 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached.Questions) != 1 || cached.Questions[0].Prompt != "What is 2 + 2?" {
		t.Fatalf("cache lost question content: %+v", cached)
	}
}

type countingLoader struct {
	memory.CategoryLoader
	calls int
}

func (l *countingLoader) LoadCategory(ctx context.Context, categoryID string) (domain.Category, error) {
	l.calls++
	return l.CategoryLoader.LoadCategory(ctx, categoryID)
}

func sampleCategory() domain.Category {
	return domain.Category{
		ID:   "general",
		Name: "General Knowledge",
		Questions: []domain.Question{
			{
				ID:            "q1",
				Prompt:        "What is 2 + 2?",
				Options:       []string{"3", "4"},
				CorrectOption: 1,
				Points:        10,
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
