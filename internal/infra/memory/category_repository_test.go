package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"trivia-session-service/internal/domain"
)

func TestCategoryRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		CategoryLoader: NewStaticCategoryLoader(map[string]domain.Category{
			"general": sampleCategory(),
		}),
	}
	repo := NewCategoryRepository(loader, time.Minute)

	if _, err := repo.GetCategory(context.Background(), "general"); err != nil {
		t.Fatalf("get category: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetCategory(context.Background(), "general"); err != nil {
		t.Fatalf("get category 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestStaticLoaderUnknownCategory(t *testing.T) {
	repo := NewCategoryRepository(NewStaticCategoryLoader(nil), time.Minute)
	if _, err := repo.GetCategory(context.Background(), "missing"); !errors.Is(err, domain.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

type countingLoader struct {
	CategoryLoader
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
