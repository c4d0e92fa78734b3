package evaluation

import (
	"time"

	"github.com/google/uuid"
)

// QuestionView is the student-safe projection of a question: no answer key.
type QuestionView struct {
	ID         uuid.UUID    `json:"id"`
	Type       QuestionType `json:"type"`
	Content    string       `json:"content"`
	Options    []string     `json:"options,omitempty"`
	OrderIndex int          `json:"order_index"`
	Points     float64      `json:"points"`
}

type EvaluationView struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Kind             Kind           `json:"kind"`
	TimeLimitSeconds *int           `json:"time_limit_seconds,omitempty"`
	StartTime        *time.Time     `json:"start_time,omitempty"`
	EndTime          *time.Time     `json:"end_time,omitempty"`
	MaxAttempts      *int           `json:"max_attempts,omitempty"`
	MaxViolations    int            `json:"max_violations"`
	DisableCopyPaste bool           `json:"disable_copy_paste"`
	QuestionCount    int            `json:"question_count"`
	TotalPoints      float64        `json:"total_points"`
	Questions        []QuestionView `json:"questions,omitempty"`
}
