package memory

import (
	"context"
	"sort"
	"sync"

	"labor-quiz-service/internal/domain"
)

// QuestionRepository is an in-memory implementation of app.QuestionRepository.
type QuestionRepository struct {
	mu     sync.RWMutex
	nextID int
	items  map[int]domain.Question
}

func NewQuestionRepository() *QuestionRepository {
	return &QuestionRepository{
		nextID: 1,
		items:  make(map[int]domain.Question),
	}
}

func (r *QuestionRepository) List(_ context.Context) ([]domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Question, 0, len(r.items))
	for _, q := range r.items {
		out = append(out, cloneQuestion(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *QuestionRepository) Get(_ context.Context, id int) (domain.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.items[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

func (r *QuestionRepository) Add(_ context.Context, in domain.QuestionInput) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := fromInput(r.nextID, in)
	r.items[q.ID] = q
	r.nextID++
	return cloneQuestion(q), nil
}

func (r *QuestionRepository) Update(_ context.Context, id int, in domain.QuestionInput) (domain.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	q := fromInput(id, in)
	r.items[id] = q
	return cloneQuestion(q), nil
}

func (r *QuestionRepository) Delete(_ context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func fromInput(id int, in domain.QuestionInput) domain.Question {
	return domain.Question{
		ID:            id,
		Prompt:        in.Prompt,
		Options:       append([]string(nil), in.Options...),
		CorrectAnswer: in.CorrectAnswer,
	}
}

func cloneQuestion(q domain.Question) domain.Question {
	q.Options = append([]string(nil), q.Options...)
	return q
}
