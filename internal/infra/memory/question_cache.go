package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"labor-quiz-service/internal/app"
	"labor-quiz-service/internal/domain"
)

const listKey = "questions"

// CachedQuestionRepository caches the question list with a TTL to avoid
// repeated hits on the backing store. Writes go straight through and drop the
// cached list.
type CachedQuestionRepository struct {
	app.QuestionRepository

	ttl   time.Duration
	clock func() time.Time
	sf    singleflight.Group
	rnd   *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Question
	expiresAt time.Time
	version   uint64
}

func NewCachedQuestionRepository(inner app.QuestionRepository, ttl time.Duration) *CachedQuestionRepository {
	return &CachedQuestionRepository{
		QuestionRepository: inner,
		ttl:                ttl,
		clock:              time.Now,
		rnd:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CachedQuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	if list, ok := r.fresh(); ok {
		return list, nil
	}

	result, err, _ := r.sf.Do(listKey, func() (interface{}, error) {
		if list, ok := r.fresh(); ok {
			return list, nil
		}

		r.mu.RLock()
		version := r.version
		r.mu.RUnlock()

		list, err := r.QuestionRepository.List(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		// a write landed while loading; serve the result but do not cache it
		if r.version == version {
			r.cached = list
			r.expiresAt = r.clock().Add(r.ttlWithJitter())
		}
		r.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

func (r *CachedQuestionRepository) Get(ctx context.Context, id int) (domain.Question, error) {
	list, err := r.List(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	for _, q := range list {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}

func (r *CachedQuestionRepository) Add(ctx context.Context, in domain.QuestionInput) (domain.Question, error) {
	defer r.invalidate()
	return r.QuestionRepository.Add(ctx, in)
}

func (r *CachedQuestionRepository) Update(ctx context.Context, id int, in domain.QuestionInput) (domain.Question, error) {
	defer r.invalidate()
	return r.QuestionRepository.Update(ctx, id, in)
}

func (r *CachedQuestionRepository) Delete(ctx context.Context, id int) (bool, error) {
	defer r.invalidate()
	return r.QuestionRepository.Delete(ctx, id)
}

func (r *CachedQuestionRepository) fresh() ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached == nil || !r.expiresAt.After(r.clock()) {
		return nil, false
	}
	return copyQuestions(r.cached), true
}

func (r *CachedQuestionRepository) invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.version++
	r.mu.Unlock()
}

func (r *CachedQuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func copyQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		out[i] = cloneQuestion(q)
	}
	return out
}
