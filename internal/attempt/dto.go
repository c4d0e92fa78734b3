package attempt

import (
	"time"

	"github.com/evalhub/evalhub/internal/evaluation"
	"github.com/google/uuid"
)

type StartResponse struct {
	AttemptID        uuid.UUID                  `json:"attempt_id"`
	Status           Status                     `json:"status"`
	Resumed          bool                       `json:"resumed"`
	StartedAt        time.Time                  `json:"started_at"`
	RemainingSeconds *int                       `json:"remaining_seconds,omitempty"`
	Evaluation       *evaluation.EvaluationView `json:"evaluation"`
	SavedAnswers     map[string]string          `json:"saved_answers,omitempty"`
}

type SaveAnswersRequest struct {
	Answers map[string]string `json:"answers"`
}

type SaveAnswersResponse struct {
	SavedCount   int `json:"saved_count"`
	UpdatedCount int `json:"updated_count"`
}

type ViolationResponse struct {
	CurrentCount     int  `json:"current_count"`
	MaxCount         int  `json:"max_count"`
	ShouldAutoSubmit bool `json:"should_auto_submit"`
}

type SubmitRequest struct {
	Answers map[string]string `json:"answers"`
	Auto    bool              `json:"auto"`
}

type SubmitResponse struct {
	AttemptID        uuid.UUID `json:"attempt_id"`
	Score            int       `json:"score"`
	TotalPoints      float64   `json:"total_points"`
	TimeTakenSeconds int       `json:"time_taken_seconds"`
	CorrectCount     int       `json:"correct_count"`
	TotalCount       int       `json:"total_count"`
	AutoSubmitted    bool      `json:"auto_submitted"`
}

type AnswerDetail struct {
	QuestionID    uuid.UUID               `json:"question_id"`
	Content       string                  `json:"content"`
	Type          evaluation.QuestionType `json:"type"`
	UserAnswer    string                  `json:"user_answer"`
	CorrectAnswer string                  `json:"correct_answer,omitempty"`
	IsCorrect     *bool                   `json:"is_correct,omitempty"`
	PointsEarned  *float64                `json:"points_earned,omitempty"`
	Points        float64                 `json:"points"`
}

type AttemptDetail struct {
	Attempt          Attempt        `json:"attempt"`
	RemainingSeconds *int           `json:"remaining_seconds,omitempty"`
	Answers          []AnswerDetail `json:"answers,omitempty"`
}
