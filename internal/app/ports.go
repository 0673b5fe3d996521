package app

import (
	"context"

	"labor-quiz-service/internal/domain"
)

// QuestionRepository stores quiz questions (in-memory, Postgres, cached, etc).
type QuestionRepository interface {
	// List returns all questions ordered by ID.
	List(ctx context.Context) ([]domain.Question, error)
	Get(ctx context.Context, id int) (domain.Question, error)
	Add(ctx context.Context, in domain.QuestionInput) (domain.Question, error)
	// Update returns domain.ErrQuestionNotFound for unknown IDs.
	Update(ctx context.Context, id int, in domain.QuestionInput) (domain.Question, error)
	// Delete reports whether a question was removed.
	Delete(ctx context.Context, id int) (bool, error)
}

// ScoreRepository stores submitted results.
type ScoreRepository interface {
	// List returns scores by score descending; equal scores keep insertion order.
	List(ctx context.Context) ([]domain.ScoreRecord, error)
	Add(ctx context.Context, in domain.ScoreInput) (domain.ScoreRecord, error)
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}

// SessionStore keeps visitor sessions with an expiry.
type SessionStore interface {
	// Create assigns an ID and expiry to s and stores it.
	Create(ctx context.Context, s domain.Session) (domain.Session, error)
	// Get returns domain.ErrSessionNotFound for unknown or expired IDs.
	Get(ctx context.Context, id string) (domain.Session, error)
	// Save overwrites an existing session and refreshes its expiry.
	Save(ctx context.Context, s domain.Session) error
	Delete(ctx context.Context, id string) error
}
