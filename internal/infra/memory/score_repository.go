package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"labor-quiz-service/internal/domain"
)

// ScoreRepository keeps scores in insertion order so ranking ties stay stable.
type ScoreRepository struct {
	clock func() time.Time

	mu      sync.RWMutex
	records []domain.ScoreRecord
}

func NewScoreRepository() *ScoreRepository {
	return &ScoreRepository{clock: time.Now}
}

func (r *ScoreRepository) List(_ context.Context) ([]domain.ScoreRecord, error) {
	r.mu.RLock()
	out := make([]domain.ScoreRecord, len(r.records))
	copy(out, r.records)
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (r *ScoreRepository) Add(_ context.Context, in domain.ScoreInput) (domain.ScoreRecord, error) {
	record := domain.ScoreRecord{
		ID:             uuid.NewString(),
		StudentName:    in.StudentName,
		Score:          in.Score,
		TotalQuestions: in.TotalQuestions,
		CreatedAt:      r.clock().UTC(),
	}
	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()
	return record, nil
}

func (r *ScoreRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *ScoreRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
	return nil
}
