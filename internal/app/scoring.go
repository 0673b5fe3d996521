package app

import "labor-quiz-service/internal/domain"

// ComputeScore awards PointsPerQuestion for every question whose answer matches
// the correct option. Unanswered questions and answers for unknown question IDs
// score nothing.
func ComputeScore(questions []domain.Question, answers domain.AnswerSet) int {
	score := 0
	for _, q := range questions {
		if selected, ok := answers[q.ID]; ok && selected == q.CorrectAnswer {
			score += domain.PointsPerQuestion
		}
	}
	return score
}

// ResultGrade is the feedback tier shown with a result.
type ResultGrade string

const (
	GradePerfect      ResultGrade = "perfect"
	GradeExcellent    ResultGrade = "excellent"
	GradeGood         ResultGrade = "good"
	GradeFair         ResultGrade = "fair"
	GradeKeepLearning ResultGrade = "keep-learning"
)

// Grade maps a score to a tier by percentage of the maximum.
func Grade(score, totalQuestions int) ResultGrade {
	maxScore := totalQuestions * domain.PointsPerQuestion
	if maxScore <= 0 {
		return GradeKeepLearning
	}
	pct := score * 100 / maxScore
	switch {
	case score >= maxScore:
		return GradePerfect
	case pct >= 80:
		return GradeExcellent
	case pct >= 60:
		return GradeGood
	case pct >= 40:
		return GradeFair
	default:
		return GradeKeepLearning
	}
}
