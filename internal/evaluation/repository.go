package evaluation

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("evaluation not found")

type Repository interface {
	FindByID(id uuid.UUID) (*Evaluation, error)
	ListActive() ([]Evaluation, error)
	ListQuestions(evaluationID uuid.UUID) ([]EvaluationQuestion, error)
	IsEnrolled(evaluationID, userID uuid.UUID) (bool, error)
	HasAnyEnrollments(evaluationID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByID(id uuid.UUID) (*Evaluation, error) {
	var eval Evaluation
	if err := r.db.First(&eval, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &eval, nil
}

func (r *repository) ListActive() ([]Evaluation, error) {
	var evals []Evaluation
	if err := r.db.
		Where("status = ?", StatusActive).
		Order("created_at DESC").
		Find(&evals).Error; err != nil {
		return nil, err
	}
	return evals, nil
}

func (r *repository) ListQuestions(evaluationID uuid.UUID) ([]EvaluationQuestion, error) {
	var questions []EvaluationQuestion
	if err := r.db.
		Preload("Question").
		Where("evaluation_id = ?", evaluationID).
		Order("order_index ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *repository) IsEnrolled(evaluationID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.Model(&Enrollment{}).
		Where("evaluation_id = ? AND user_id = ?", evaluationID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) HasAnyEnrollments(evaluationID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.Model(&Enrollment{}).
		Where("evaluation_id = ?", evaluationID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
