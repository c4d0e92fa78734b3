package attempt

import (
	"math"

	"github.com/evalhub/evalhub/internal/evaluation"
	"github.com/google/uuid"
)

type QuestionResult struct {
	QuestionID   uuid.UUID
	Correct      bool
	PointsEarned float64
}

type ScoreResult struct {
	TotalScore   float64
	TotalPoints  float64
	Percent      int
	CorrectCount int
	PerQuestion  []QuestionResult
}

// Score grades a full answer set against an evaluation's questions. It is a
// pure function: no storage access, and identical inputs always produce
// identical output. Questions without a submitted answer are graded as an
// empty-string submission. With negative marking enabled each wrong answer
// subtracts negativePoints, and the resulting percentage is not clamped at
// zero.
func Score(questions []evaluation.LoadedQuestion, answers map[uuid.UUID]string, negativeMarking bool, negativePoints float64) ScoreResult {
	result := ScoreResult{
		PerQuestion: make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		result.TotalPoints += q.Points

		submitted := answers[q.ID]
		correct := q.Key.Matches(submitted)

		var earned float64
		if correct {
			earned = q.Points
			result.CorrectCount++
		} else if negativeMarking {
			earned = -negativePoints
		}

		result.TotalScore += earned
		result.PerQuestion = append(result.PerQuestion, QuestionResult{
			QuestionID:   q.ID,
			Correct:      correct,
			PointsEarned: earned,
		})
	}

	if result.TotalPoints > 0 {
		result.Percent = int(math.Round(result.TotalScore / result.TotalPoints * 100))
	}

	return result
}
