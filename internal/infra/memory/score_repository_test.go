package memory

import (
	"context"
	"testing"

	"labor-quiz-service/internal/domain"
)

func TestScoreRepositoryRanksStably(t *testing.T) {
	ctx := context.Background()
	repo := NewScoreRepository()

	first, _ := repo.Add(ctx, domain.ScoreInput{StudentName: "Ani", Score: 70, TotalQuestions: 10})
	top, _ := repo.Add(ctx, domain.ScoreInput{StudentName: "Budi", Score: 90, TotalQuestions: 10})
	second, _ := repo.Add(ctx, domain.ScoreInput{StudentName: "Citra", Score: 70, TotalQuestions: 10})

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{top.ID, first.ID, second.ID}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (%+v)", i, id, list[i].ID, list)
		}
	}
}

func TestScoreRepositoryDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	repo := NewScoreRepository()

	a, _ := repo.Add(ctx, domain.ScoreInput{StudentName: "Ani", Score: 50, TotalQuestions: 10})
	_, _ = repo.Add(ctx, domain.ScoreInput{StudentName: "Budi", Score: 60, TotalQuestions: 10})

	if ok, _ := repo.Delete(ctx, a.ID); !ok {
		t.Fatalf("expected delete to succeed")
	}
	if ok, _ := repo.Delete(ctx, "missing"); ok {
		t.Fatalf("expected delete of unknown id to report false")
	}
	list, _ := repo.List(ctx)
	if len(list) != 1 || list[0].StudentName != "Budi" {
		t.Fatalf("unexpected list after delete: %+v", list)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	list, _ = repo.List(ctx)
	if len(list) != 0 {
		t.Fatalf("expected empty list after clear, got %d", len(list))
	}
}
