package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"labor-quiz-service/internal/domain"
)

const maxStudentNameLength = 100

// QuizService contains the student and admin quiz use cases.
type QuizService struct {
	questions QuestionRepository
	scores    ScoreRepository
	sessions  SessionStore
	board     *Scoreboard
	shuffle   func([]domain.PublicQuestion)
}

func NewQuizService(questions QuestionRepository, scores ScoreRepository, sessions SessionStore) *QuizService {
	return &QuizService{
		questions: questions,
		scores:    scores,
		sessions:  sessions,
		board:     NewScoreboard(scores),
		shuffle: func(qs []domain.PublicQuestion) {
			rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		},
	}
}

// Result pairs a stored score with its feedback tier.
type Result struct {
	Score domain.ScoreRecord `json:"score"`
	Grade ResultGrade        `json:"grade"`
}

// StartSession opens a student session for the given display name.
func (s *QuizService) StartSession(ctx context.Context, studentName string) (domain.Session, error) {
	name := strings.TrimSpace(studentName)
	if err := validateStudentName(name); err != nil {
		return domain.Session{}, err
	}
	return s.sessions.Create(ctx, domain.Session{StudentName: name})
}

// Session loads a session by ID.
func (s *QuizService) Session(ctx context.Context, id string) (domain.Session, error) {
	if id == "" {
		return domain.Session{}, domain.ErrSessionNotFound
	}
	return s.sessions.Get(ctx, id)
}

// RecordReaction stores d as the session's best reaction time if it improves on it.
func (s *QuizService) RecordReaction(ctx context.Context, sessionID string, d time.Duration) error {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.BestReaction != nil && *session.BestReaction <= d {
		return nil
	}
	session.BestReaction = &d
	return s.sessions.Save(ctx, session)
}

// Questions returns every question in random order without the answer key.
func (s *QuizService) Questions(ctx context.Context) ([]domain.PublicQuestion, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]domain.PublicQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.Public())
	}
	s.shuffle(out)
	return out, nil
}

// SubmitAnswers scores the answers against the current question set, stores
// the result and remembers it on the session.
func (s *QuizService) SubmitAnswers(ctx context.Context, sessionID string, answers domain.AnswerSet) (domain.ScoreRecord, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return domain.ScoreRecord{}, err
	}
	if session.StudentName == "" {
		return domain.ScoreRecord{}, domain.ErrNameRequired
	}

	questions, err := s.questions.List(ctx)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("list questions: %w", err)
	}

	record, err := s.SubmitScore(ctx, domain.ScoreInput{
		StudentName:    session.StudentName,
		Score:          ComputeScore(questions, answers),
		TotalQuestions: len(questions),
	})
	if err != nil {
		return domain.ScoreRecord{}, err
	}

	session.LastResult = &record
	if err := s.sessions.Save(ctx, session); err != nil {
		log.Warn().Err(err).Str("session", session.ID).Msg("failed to keep result on session")
	}
	return record, nil
}

// SubmitScore validates and stores a client-computed score.
func (s *QuizService) SubmitScore(ctx context.Context, in domain.ScoreInput) (domain.ScoreRecord, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.ScoreRecord{}, err
	}
	record, err := s.scores.Add(ctx, in)
	if err != nil {
		return domain.ScoreRecord{}, fmt.Errorf("add score: %w", err)
	}
	log.Info().
		Str("student", record.StudentName).
		Int("score", record.Score).
		Int("total", record.TotalQuestions).
		Msg("score recorded")
	s.refreshScoreboard(ctx)
	return record, nil
}

// Result returns the last result stored on the session.
func (s *QuizService) Result(ctx context.Context, sessionID string) (Result, error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return Result{}, err
	}
	if session.LastResult == nil {
		return Result{}, domain.ErrScoreNotFound
	}
	r := *session.LastResult
	return Result{Score: r, Grade: Grade(r.Score, r.TotalQuestions)}, nil
}

// Scores returns the ranked score list.
func (s *QuizService) Scores(ctx context.Context) ([]domain.ScoreRecord, error) {
	return s.scores.List(ctx)
}

// SubscribeScores streams leaderboard updates.
func (s *QuizService) SubscribeScores(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	return s.board.Subscribe(ctx)
}

// AdminQuestions returns every question including the answer key.
func (s *QuizService) AdminQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.questions.List(ctx)
}

func (s *QuizService) AddQuestion(ctx context.Context, in domain.QuestionInput) (domain.Question, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Question{}, err
	}
	q, err := s.questions.Add(ctx, in)
	if err != nil {
		return domain.Question{}, fmt.Errorf("add question: %w", err)
	}
	log.Info().Int("question", q.ID).Msg("question added")
	return q, nil
}

func (s *QuizService) UpdateQuestion(ctx context.Context, id int, in domain.QuestionInput) (domain.Question, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return domain.Question{}, err
	}
	q, err := s.questions.Update(ctx, id, in)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			return domain.Question{}, err
		}
		return domain.Question{}, fmt.Errorf("update question %d: %w", id, err)
	}
	log.Info().Int("question", id).Msg("question updated")
	return q, nil
}

func (s *QuizService) DeleteQuestion(ctx context.Context, id int) error {
	deleted, err := s.questions.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete question %d: %w", id, err)
	}
	if !deleted {
		return domain.ErrQuestionNotFound
	}
	log.Info().Int("question", id).Msg("question deleted")
	return nil
}

func (s *QuizService) DeleteScore(ctx context.Context, id string) error {
	deleted, err := s.scores.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete score %s: %w", id, err)
	}
	if !deleted {
		return domain.ErrScoreNotFound
	}
	s.refreshScoreboard(ctx)
	return nil
}

func (s *QuizService) ClearScores(ctx context.Context) error {
	if err := s.scores.Clear(ctx); err != nil {
		return fmt.Errorf("clear scores: %w", err)
	}
	log.Info().Msg("scores cleared")
	s.refreshScoreboard(ctx)
	return nil
}

func (s *QuizService) refreshScoreboard(ctx context.Context) {
	if err := s.board.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("scoreboard refresh failed")
	}
}

func validateStudentName(name string) error {
	switch {
	case name == "":
		return &domain.ValidationError{Fields: []domain.FieldError{{Field: "studentName", Message: "is required"}}}
	case utf8.RuneCountInString(name) > maxStudentNameLength:
		return &domain.ValidationError{Fields: []domain.FieldError{{Field: "studentName", Message: fmt.Sprintf("must be at most %d characters", maxStudentNameLength)}}}
	}
	return nil
}
