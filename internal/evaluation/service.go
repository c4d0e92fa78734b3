package evaluation

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/evalhub/evalhub/internal/cache"
	"github.com/evalhub/evalhub/internal/config"
	"github.com/google/uuid"
)

const snapshotTTL = 30 * time.Second

type Service interface {
	Snapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	GetView(ctx context.Context, id uuid.UUID, withQuestions bool) (*EvaluationView, error)
	ListActive(ctx context.Context) ([]Evaluation, error)
	IsEnrolled(ctx context.Context, evaluationID, userID uuid.UUID) (bool, error)
	HasAnyEnrollments(ctx context.Context, evaluationID uuid.UUID) (bool, error)
}

type service struct {
	repo      Repository
	snapshots *cache.TTL[*Snapshot]
}

func NewService(repo Repository, snapshots *cache.TTL[*Snapshot]) Service {
	return &service{repo: repo, snapshots: snapshots}
}

func NewSnapshotCache() *cache.TTL[*Snapshot] {
	return cache.NewTTL[*Snapshot](snapshotTTL)
}

// Snapshot loads an evaluation with its questions and decoded answer keys.
// The result is cached briefly: an attempt's view of the evaluation is
// immutable for its lifetime, so frequent autosave/violation calls need not
// hit storage for the definition every time.
func (s *service) Snapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	log := config.WithContext(ctx)

	if snap, ok := s.snapshots.Get(id.String()); ok {
		return snap, nil
	}

	eval, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListQuestions(id)
	if err != nil {
		log.WithError(err).Error("Failed to list evaluation questions")
		return nil, err
	}

	questions := make([]LoadedQuestion, 0, len(rows))
	for _, row := range rows {
		key, err := DecodeAnswerKey(row.Question.Type, row.Question.CorrectAnswer)
		if err != nil {
			log.WithError(err).WithField("question_id", row.QuestionID).Error("Malformed answer key in question bank")
			return nil, err
		}

		var options []string
		if len(row.Question.Options) > 0 {
			if err := json.Unmarshal(row.Question.Options, &options); err != nil {
				log.WithError(err).WithField("question_id", row.QuestionID).Error("Malformed options in question bank")
				return nil, err
			}
		}

		questions = append(questions, LoadedQuestion{
			ID:         row.QuestionID,
			Type:       row.Question.Type,
			Content:    row.Question.Content,
			Options:    options,
			OrderIndex: row.OrderIndex,
			Points:     row.Points,
			Key:        key,
		})
	}

	snap := &Snapshot{Evaluation: *eval, Questions: questions}
	s.snapshots.Set(id.String(), snap)
	return snap, nil
}

func (s *service) GetView(ctx context.Context, id uuid.UUID, withQuestions bool) (*EvaluationView, error) {
	snap, err := s.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	return ViewFromSnapshot(snap, withQuestions), nil
}

func (s *service) ListActive(ctx context.Context) ([]Evaluation, error) {
	log := config.WithContext(ctx)

	evals, err := s.repo.ListActive()
	if err != nil {
		log.WithError(err).Error("Failed to list active evaluations")
		return nil, err
	}
	return evals, nil
}

func (s *service) IsEnrolled(ctx context.Context, evaluationID, userID uuid.UUID) (bool, error) {
	return s.repo.IsEnrolled(evaluationID, userID)
}

func (s *service) HasAnyEnrollments(ctx context.Context, evaluationID uuid.UUID) (bool, error) {
	return s.repo.HasAnyEnrollments(evaluationID)
}

// ViewFromSnapshot builds the student-safe projection. Question order is
// shuffled per call when the evaluation asks for random order.
func ViewFromSnapshot(snap *Snapshot, withQuestions bool) *EvaluationView {
	eval := snap.Evaluation
	view := &EvaluationView{
		ID:               eval.ID,
		Title:            eval.Title,
		Kind:             eval.Kind,
		TimeLimitSeconds: eval.TimeLimitSeconds,
		StartTime:        eval.StartTime,
		EndTime:          eval.EndTime,
		MaxAttempts:      eval.MaxAttempts,
		MaxViolations:    eval.MaxViolations,
		DisableCopyPaste: eval.DisableCopyPaste,
		QuestionCount:    len(snap.Questions),
		TotalPoints:      snap.TotalPoints(),
	}

	if !withQuestions {
		return view
	}

	views := make([]QuestionView, len(snap.Questions))
	for i, q := range snap.Questions {
		views[i] = QuestionView{
			ID:         q.ID,
			Type:       q.Type,
			Content:    q.Content,
			Options:    q.Options,
			OrderIndex: q.OrderIndex,
			Points:     q.Points,
		}
	}

	if eval.RandomOrder {
		rand.Shuffle(len(views), func(i, j int) {
			views[i], views[j] = views[j], views[i]
		})
	}

	view.Questions = views
	return view
}
