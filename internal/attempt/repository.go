package attempt

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionUpdate struct {
	SubmittedAt      time.Time
	Score            int
	TotalPoints      float64
	TimeTakenSeconds int
	IsAutoSubmitted  bool
}

type Repository interface {
	CreateIfNoneActive(a *Attempt) (*Attempt, bool, error)
	FindByID(id uuid.UUID) (*Attempt, error)
	FindInProgress(evaluationID, userID uuid.UUID) (*Attempt, error)
	ListByUser(userID uuid.UUID) ([]Attempt, error)
	CountSubmitted(evaluationID, userID uuid.UUID) (int64, error)

	UpsertAnswers(attemptID uuid.UUID, answers []Answer) error
	ListAnswers(attemptID uuid.UUID) ([]Answer, error)
	FinalizeSubmission(attemptID uuid.UUID, update SubmissionUpdate, answers []Answer) error

	CreateViolationIfUnderCap(v *Violation, max int) (int64, bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateIfNoneActive inserts a new attempt unless an IN_PROGRESS one already
// exists for the same evaluation and user, in which case the existing attempt
// is returned. The partial unique index on (evaluation_id, user_id) backs
// this up under concurrency: if two starts race past the existence check, one
// insert fails and is resolved to the surviving row.
func (r *repository) CreateIfNoneActive(a *Attempt) (*Attempt, bool, error) {
	var out *Attempt
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing Attempt
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("evaluation_id = ? AND user_id = ? AND status = ?", a.EvaluationID, a.UserID, StatusInProgress).
			First(&existing).Error
		if err == nil {
			out = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(a).Error; err != nil {
			return err
		}
		out = a
		created = true
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := r.FindInProgress(a.EvaluationID, a.UserID)
			if ferr == nil && existing != nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	return out, created, nil
}

func (r *repository) FindByID(id uuid.UUID) (*Attempt, error) {
	var a Attempt
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) FindInProgress(evaluationID, userID uuid.UUID) (*Attempt, error) {
	var a Attempt
	err := r.db.
		Where("evaluation_id = ? AND user_id = ? AND status = ?", evaluationID, userID, StatusInProgress).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListByUser(userID uuid.UUID) ([]Attempt, error) {
	var attempts []Attempt
	if err := r.db.
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (r *repository) CountSubmitted(evaluationID, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&Attempt{}).
		Where("evaluation_id = ? AND user_id = ? AND status = ?", evaluationID, userID, StatusSubmitted).
		Count(&count).Error
	return count, err
}

// UpsertAnswers saves raw answers keyed on (attempt_id, question_id) inside
// one transaction that holds a lock on the attempt row while it is still
// IN_PROGRESS. A save racing a submit either runs before the status flip or
// gets ErrAlreadySubmitted; it can never rewrite a graded answer.
func (r *repository) UpsertAnswers(attemptID uuid.UUID, answers []Answer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var a Attempt
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status = ?", attemptID, StatusInProgress).
			First(&a).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAlreadySubmitted
			}
			return err
		}

		for i := range answers {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"user_answer", "updated_at"}),
			}).Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ListAnswers(attemptID uuid.UUID) ([]Answer, error) {
	var answers []Answer
	if err := r.db.
		Where("attempt_id = ?", attemptID).
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

// FinalizeSubmission flips the attempt to SUBMITTED and persists the graded
// answers in one transaction. The status flip is conditional on the row still
// being IN_PROGRESS; a concurrent or repeated submit sees zero rows affected
// and gets ErrAlreadySubmitted, leaving the winner's result untouched.
func (r *repository) FinalizeSubmission(attemptID uuid.UUID, update SubmissionUpdate, answers []Answer) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Attempt{}).
			Where("id = ? AND status = ?", attemptID, StatusInProgress).
			Updates(map[string]interface{}{
				"status":             StatusSubmitted,
				"submitted_at":       update.SubmittedAt,
				"score":              update.Score,
				"total_points":       update.TotalPoints,
				"time_taken_seconds": update.TimeTakenSeconds,
				"is_auto_submitted":  update.IsAutoSubmitted,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySubmitted
		}

		for i := range answers {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"user_answer", "is_correct", "points_earned", "updated_at"}),
			}).Create(&answers[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateViolationIfUnderCap appends a violation only while the attempt has
// fewer than max on record. The count and the insert run in one transaction
// holding a lock on the attempt row, so concurrent reports serialize and the
// cap cannot be overshot. Returns the resulting count and whether the row
// was inserted.
func (r *repository) CreateViolationIfUnderCap(v *Violation, max int) (int64, bool, error) {
	var count int64
	created := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var a Attempt
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, "id = ?", v.AttemptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&Violation{}).
			Where("attempt_id = ?", v.AttemptID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(max) {
			return nil
		}

		if err := tx.Create(v).Error; err != nil {
			return err
		}
		count++
		created = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return count, created, nil
}
