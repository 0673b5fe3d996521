package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"labor-quiz-service/internal/app"
	"labor-quiz-service/internal/domain"
)

const questionsKey = "quiz:questions"

// CachedQuestionRepository caches the full question list in Redis as one JSON
// value and falls back to the wrapped repository on a miss. Writes go through
// to the wrapped repository and delete the cached value, so every instance
// sharing the Redis sees the change.
type CachedQuestionRepository struct {
	app.QuestionRepository

	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCachedQuestionRepository(client *redis.Client, inner app.QuestionRepository, ttl time.Duration) *CachedQuestionRepository {
	return &CachedQuestionRepository{
		QuestionRepository: inner,
		client:             client,
		ttl:                ttl,
		rnd:                rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CachedQuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	if list, ok := r.readCache(ctx); ok {
		return list, nil
	}

	result, err, _ := r.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if list, ok := r.readCache(ctx); ok {
			return list, nil
		}

		list, err := r.QuestionRepository.List(ctx)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		if err := r.client.Set(ctx, questionsKey, data, r.ttlWithJitter()).Err(); err != nil {
			log.Warn().Err(err).Msg("cache question list")
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
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
	q, err := r.QuestionRepository.Add(ctx, in)
	r.invalidate(ctx)
	return q, err
}

func (r *CachedQuestionRepository) Update(ctx context.Context, id int, in domain.QuestionInput) (domain.Question, error) {
	q, err := r.QuestionRepository.Update(ctx, id, in)
	r.invalidate(ctx)
	return q, err
}

func (r *CachedQuestionRepository) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := r.QuestionRepository.Delete(ctx, id)
	r.invalidate(ctx)
	return deleted, err
}

func (r *CachedQuestionRepository) readCache(ctx context.Context) ([]domain.Question, bool) {
	data, err := r.client.Get(ctx, questionsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("read cached question list")
		}
		return nil, false
	}
	var list []domain.Question
	if err := json.Unmarshal(data, &list); err != nil {
		log.Warn().Err(err).Msg("decode cached question list")
		return nil, false
	}
	return list, true
}

func (r *CachedQuestionRepository) invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, questionsKey).Err(); err != nil {
		log.Warn().Err(err).Msg("invalidate cached question list")
	}
}

func (r *CachedQuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
