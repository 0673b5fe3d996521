package memory

import (
	"context"
	"testing"
	"time"

	"labor-quiz-service/internal/app"
	"labor-quiz-service/internal/domain"
)

func TestCachedQuestionRepositoryCaches(t *testing.T) {
	inner := &countingRepository{QuestionRepository: seededRepository(t)}
	repo := NewCachedQuestionRepository(inner, time.Minute)

	if _, err := repo.List(context.Background()); err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if inner.lists != 1 {
		t.Fatalf("expected inner list once, got %d", inner.lists)
	}

	if _, err := repo.Get(context.Background(), 1); err != nil {
		t.Fatalf("get question: %v", err)
	}
	if inner.lists != 1 {
		t.Fatalf("expected cache hit, inner lists %d", inner.lists)
	}
}

func TestCachedQuestionRepositoryInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepository{QuestionRepository: seededRepository(t)}
	repo := NewCachedQuestionRepository(inner, time.Minute)

	_, _ = repo.List(ctx)
	if _, err := repo.Add(ctx, sampleInput("Second question here")); err != nil {
		t.Fatalf("add question: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected fresh list with 2 questions, got %d", len(list))
	}
	if inner.lists != 2 {
		t.Fatalf("expected reload after write, inner lists %d", inner.lists)
	}
}

func TestCachedQuestionRepositoryExpires(t *testing.T) {
	inner := &countingRepository{QuestionRepository: seededRepository(t)}
	repo := NewCachedQuestionRepository(inner, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.List(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = repo.List(context.Background())
	if inner.lists != 2 {
		t.Fatalf("expected reload after ttl, inner lists %d", inner.lists)
	}
}

type countingRepository struct {
	app.QuestionRepository
	lists int
}

func (r *countingRepository) List(ctx context.Context) ([]domain.Question, error) {
	r.lists++
	return r.QuestionRepository.List(ctx)
}

func seededRepository(t *testing.T) *QuestionRepository {
	t.Helper()
	repo := NewQuestionRepository()
	if _, err := repo.Add(context.Background(), sampleInput("What is a labor force?")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return repo
}

func sampleInput(prompt string) domain.QuestionInput {
	return domain.QuestionInput{
		Prompt:        prompt,
		Options:       []string{"a", "b", "c", "d"},
		CorrectAnswer: 1,
	}
}
