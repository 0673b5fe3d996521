package domain

import "time"

// OptionCount is the fixed number of options per question.
const OptionCount = 4

// PointsPerQuestion is awarded for each correct answer.
const PointsPerQuestion = 10

// Question is a multiple-choice question with exactly four options.
type Question struct {
	ID            int      `json:"id"`
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// QuestionInput carries the admin-editable fields of a question.
type QuestionInput struct {
	Prompt        string   `json:"question" validate:"min=5"`
	Options       []string `json:"options" validate:"len=4,dive,required"`
	CorrectAnswer int      `json:"correctAnswer" validate:"gte=0,lte=3"`
}

// PublicQuestion is what quiz takers see; the correct answer is withheld.
type PublicQuestion struct {
	ID      int      `json:"id"`
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
}

// Public strips the answer key.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{ID: q.ID, Prompt: q.Prompt, Options: append([]string(nil), q.Options...)}
}

// AnswerSet maps question ID to the selected option index.
type AnswerSet map[int]int

// ScoreRecord is a stored quiz result. Records are never mutated.
type ScoreRecord struct {
	ID             string    `json:"id"`
	StudentName    string    `json:"studentName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ScoreInput is a score submission before it is stored.
type ScoreInput struct {
	StudentName    string `json:"studentName" validate:"required,max=100"`
	Score          int    `json:"score" validate:"gte=0,lte=100"`
	TotalQuestions int    `json:"totalQuestions" validate:"gte=1,lte=20"`
}

// Session is the per-visitor context shared by the student and admin flows.
type Session struct {
	ID           string         `json:"id"`
	StudentName  string         `json:"studentName,omitempty"`
	Admin        bool           `json:"admin,omitempty"`
	BestReaction *time.Duration `json:"bestReaction,omitempty"`
	LastResult   *ScoreRecord   `json:"lastResult,omitempty"`
	ExpiresAt    time.Time      `json:"expiresAt"`
}

// Leaderboard is the ranked score list pushed to live subscribers.
type Leaderboard struct {
	Entries   []ScoreRecord `json:"entries"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
