package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"labor-quiz-service/internal/domain"
)

// ScoreRepository stores scores in the scores table, ranked by score then insertion sequence.
type ScoreRepository struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

func NewScoreRepository(pool *pgxpool.Pool) *ScoreRepository {
	return &ScoreRepository{pool: pool, clock: time.Now}
}

func (r *ScoreRepository) List(ctx context.Context) ([]domain.ScoreRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, student_name, score, total_questions, created_at FROM scores ORDER BY score DESC, seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ScoreRecord, 0)
	for rows.Next() {
		var s domain.ScoreRecord
		if err := rows.Scan(&s.ID, &s.StudentName, &s.Score, &s.TotalQuestions, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return out, nil
}

func (r *ScoreRepository) Add(ctx context.Context, in domain.ScoreInput) (domain.ScoreRecord, error) {
	record := domain.ScoreRecord{
		ID:             uuid.NewString(),
		StudentName:    in.StudentName,
		Score:          in.Score,
		TotalQuestions: in.TotalQuestions,
		CreatedAt:      r.clock().UTC().Truncate(time.Microsecond),
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO scores (id, student_name, score, total_questions, created_at) VALUES ($1, $2, $3, $4, $5)`,
		record.ID, record.StudentName, record.Score, record.TotalQuestions, record.CreatedAt,
	)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("insert score: %w", err)
	}
	return record, nil
}

func (r *ScoreRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scores WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete score: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ScoreRepository) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM scores`); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	return nil
}
