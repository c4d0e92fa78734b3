package attempt

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one student's pass through an evaluation. The partial unique
// index keeps at most one IN_PROGRESS row per (evaluation, user); any
// concurrent second start loses on the index, not in application code.
type Attempt struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EvaluationID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uniq_active_attempt,where:status = 'IN_PROGRESS'" json:"evaluation_id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:uniq_active_attempt,where:status = 'IN_PROGRESS'" json:"user_id"`
	Status           Status     `gorm:"type:varchar(20);not null;default:'IN_PROGRESS';index" json:"status"`
	StartedAt        time.Time  `gorm:"not null" json:"started_at"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
	Score            *int       `json:"score,omitempty"`
	TotalPoints      float64    `gorm:"not null;default:0" json:"total_points"`
	TimeTakenSeconds *int       `json:"time_taken_seconds,omitempty"`
	IsAutoSubmitted  bool       `gorm:"not null;default:false" json:"is_auto_submitted"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type Answer struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_attempt_question" json:"attempt_id"`
	QuestionID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uniq_attempt_question" json:"question_id"`
	UserAnswer   string    `gorm:"type:text;not null;default:''" json:"user_answer"`
	IsCorrect    *bool     `json:"is_correct,omitempty"`
	PointsEarned *float64  `json:"points_earned,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Violation is an append-only proctoring event (tab/window switch) against an
// active attempt.
type Violation struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID    uuid.UUID `gorm:"type:uuid;not null;index" json:"attempt_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	EvaluationID uuid.UUID `gorm:"type:uuid;not null" json:"evaluation_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
