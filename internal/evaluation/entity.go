package evaluation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const DefaultMaxViolations = 3

type Evaluation struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title            string     `gorm:"type:text;not null" json:"title"`
	Kind             Kind       `gorm:"type:varchar(20);not null" json:"kind"`
	Status           Status     `gorm:"type:varchar(20);not null;default:'DRAFT'" json:"status"`
	TimeLimitSeconds *int       `json:"time_limit_seconds,omitempty"`
	StartTime        *time.Time `json:"start_time,omitempty"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	MaxAttempts      *int       `json:"max_attempts,omitempty"`
	MaxViolations    int        `gorm:"not null;default:3" json:"max_violations"`
	NegativeMarking  bool       `gorm:"not null;default:false" json:"negative_marking"`
	NegativePoints   float64    `gorm:"not null;default:0" json:"negative_points"`
	RandomOrder      bool       `gorm:"not null;default:false" json:"random_order"`
	ShowAnswers      bool       `gorm:"column:show_answers_after_submit;not null;default:false" json:"show_answers_after_submit"`
	DisableCopyPaste bool       `gorm:"not null;default:false" json:"disable_copy_paste"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Questions []EvaluationQuestion `gorm:"foreignKey:EvaluationID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

type Question struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Type          QuestionType   `gorm:"type:varchar(20);not null" json:"type"`
	Content       string         `gorm:"type:text;not null" json:"content"`
	Options       datatypes.JSON `gorm:"type:jsonb" json:"options,omitempty"`
	CorrectAnswer string         `gorm:"type:text;not null" json:"-"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

type EvaluationQuestion struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EvaluationID uuid.UUID `gorm:"type:uuid;not null;index" json:"evaluation_id"`
	QuestionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	OrderIndex   int       `gorm:"not null" json:"order_index"`
	Points       float64   `gorm:"not null;default:1" json:"points"`

	Question Question `gorm:"foreignKey:QuestionID" json:"question"`
}

type Enrollment struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EvaluationID uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_eval_user,unique" json:"evaluation_id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index:idx_enrollment_eval_user,unique" json:"user_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
