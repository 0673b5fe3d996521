package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"labor-quiz-service/internal/domain"
)

// QuestionRepository stores questions in the questions table; options live in a JSONB column.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

func (r *QuestionRepository) List(ctx context.Context) ([]domain.Question, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, prompt, options, correct_answer FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

func (r *QuestionRepository) Get(ctx context.Context, id int) (domain.Question, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, prompt, options, correct_answer FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return q, err
}

func (r *QuestionRepository) Add(ctx context.Context, in domain.QuestionInput) (domain.Question, error) {
	options, err := json.Marshal(in.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	var id int
	err = r.pool.QueryRow(ctx,
		`INSERT INTO questions (prompt, options, correct_answer) VALUES ($1, $2::jsonb, $3) RETURNING id`,
		in.Prompt, string(options), in.CorrectAnswer,
	).Scan(&id)
	if err != nil {
		return domain.Question{}, fmt.Errorf("insert question: %w", err)
	}
	return toQuestion(id, in), nil
}

func (r *QuestionRepository) Update(ctx context.Context, id int, in domain.QuestionInput) (domain.Question, error) {
	options, err := json.Marshal(in.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	tag, err := r.pool.Exec(ctx,
		`UPDATE questions SET prompt=$1, options=$2::jsonb, correct_answer=$3, updated_at=now() WHERE id=$4`,
		in.Prompt, string(options), in.CorrectAnswer, id,
	)
	if err != nil {
		return domain.Question{}, fmt.Errorf("update question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return toQuestion(id, in), nil
}

func (r *QuestionRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete question: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanQuestion(row pgx.Row) (domain.Question, error) {
	var (
		q   domain.Question
		raw []byte
	)
	if err := row.Scan(&q.ID, &q.Prompt, &raw, &q.CorrectAnswer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Question{}, err
		}
		return domain.Question{}, fmt.Errorf("scan question: %w", err)
	}
	if err := json.Unmarshal(raw, &q.Options); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return q, nil
}

func toQuestion(id int, in domain.QuestionInput) domain.Question {
	return domain.Question{
		ID:            id,
		Prompt:        in.Prompt,
		Options:       append([]string(nil), in.Options...),
		CorrectAnswer: in.CorrectAnswer,
	}
}
