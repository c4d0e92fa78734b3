package attempt

import (
	"context"
	"time"

	"github.com/evalhub/evalhub/internal/auth"
	"github.com/evalhub/evalhub/internal/config"
	"github.com/evalhub/evalhub/internal/evaluation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type evaluationSource interface {
	Snapshot(ctx context.Context, id uuid.UUID) (*evaluation.Snapshot, error)
}

type Service interface {
	StartOrResume(ctx context.Context, evaluationID uuid.UUID) (*StartResponse, error)
	SaveAnswers(ctx context.Context, attemptID uuid.UUID, answers map[string]string) (*SaveAnswersResponse, error)
	RecordViolation(ctx context.Context, attemptID uuid.UUID) (*ViolationResponse, error)
	Submit(ctx context.Context, attemptID uuid.UUID, answers map[string]string, auto bool) (*SubmitResponse, error)
	Get(ctx context.Context, attemptID uuid.UUID) (*AttemptDetail, error)
	ListMine(ctx context.Context) ([]Attempt, error)
}

type service struct {
	repo    Repository
	evals   evaluationSource
	checker *AdmissionChecker
	now     func() time.Time
}

func NewService(repo Repository, evals evaluationSource, checker *AdmissionChecker) Service {
	return &service{
		repo:    repo,
		evals:   evals,
		checker: checker,
		now:     time.Now,
	}
}

func getUserIDFromContext(ctx context.Context, log logrus.FieldLogger, action string) (uuid.UUID, error) {
	claims, err := auth.GetUserClaimsFromContext(ctx)
	if err != nil {
		log.WithError(err).Warnf("Attempt to %s without authentication", action)
		return uuid.Nil, ErrUnauthorized
	}
	return uuid.MustParse(claims.UserID), nil
}

// findOwned loads an attempt and enforces ownership. A foreign attempt is
// reported as not found so existence never leaks across users.
func (s *service) findOwned(attemptID, userID uuid.UUID) (*Attempt, error) {
	a, err := s.repo.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *service) StartOrResume(ctx context.Context, evaluationID uuid.UUID) (*StartResponse, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "start attempt")
	if err != nil {
		return nil, err
	}

	snap, err := s.evals.Snapshot(ctx, evaluationID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindInProgress(evaluationID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to look up active attempt")
		return nil, err
	}
	if existing != nil {
		if Expired(snap.Evaluation.TimeLimitSeconds, existing.StartedAt, s.now()) {
			// Ran out of time while away: close it out and fall through to
			// the admission checks for a fresh start.
			if _, err := s.submit(ctx, snap, existing, nil, true); err != nil && err != ErrAlreadySubmitted {
				return nil, err
			}
		} else {
			if admission := s.checker.CanResume(snap, existing); !admission.Allowed {
				return nil, &AdmissionDeniedError{Reason: admission.Reason}
			}
			return s.resumeResponse(ctx, snap, existing)
		}
	}

	admission, err := s.checker.CanStart(ctx, snap, userID)
	if err != nil {
		log.WithError(err).Error("Admission check failed")
		return nil, err
	}
	if !admission.Allowed {
		return nil, &AdmissionDeniedError{Reason: admission.Reason}
	}

	a := &Attempt{
		ID:           uuid.New(),
		EvaluationID: evaluationID,
		UserID:       userID,
		Status:       StatusInProgress,
		StartedAt:    s.now(),
		TotalPoints:  snap.TotalPoints(),
	}

	created, wasCreated, err := s.repo.CreateIfNoneActive(a)
	if err != nil {
		log.WithError(err).Error("Failed to create attempt")
		return nil, err
	}
	if !wasCreated {
		// Lost a concurrent start: resume the surviving attempt.
		return s.resumeResponse(ctx, snap, created)
	}

	log.WithFields(logrus.Fields{
		"attempt_id":    created.ID,
		"evaluation_id": evaluationID,
		"user_id":       userID,
	}).Info("Attempt started")

	return &StartResponse{
		AttemptID:        created.ID,
		Status:           created.Status,
		Resumed:          false,
		StartedAt:        created.StartedAt,
		RemainingSeconds: RemainingSeconds(snap.Evaluation.TimeLimitSeconds, created.StartedAt, s.now()),
		Evaluation:       evaluation.ViewFromSnapshot(snap, true),
	}, nil
}

func (s *service) resumeResponse(ctx context.Context, snap *evaluation.Snapshot, a *Attempt) (*StartResponse, error) {
	log := config.WithContext(ctx)

	saved, err := s.repo.ListAnswers(a.ID)
	if err != nil {
		log.WithError(err).Error("Failed to load saved answers for resume")
		return nil, err
	}

	savedAnswers := make(map[string]string, len(saved))
	for _, ans := range saved {
		savedAnswers[ans.QuestionID.String()] = ans.UserAnswer
	}

	log.WithField("attempt_id", a.ID).Info("Attempt resumed")

	return &StartResponse{
		AttemptID:        a.ID,
		Status:           a.Status,
		Resumed:          true,
		StartedAt:        a.StartedAt,
		RemainingSeconds: RemainingSeconds(snap.Evaluation.TimeLimitSeconds, a.StartedAt, s.now()),
		Evaluation:       evaluation.ViewFromSnapshot(snap, true),
		SavedAnswers:     savedAnswers,
	}, nil
}

// SaveAnswers upserts raw answers without grading them. Question ids that do
// not belong to the evaluation are skipped, not failed: stale client state
// must not abort the rest of the batch.
func (s *service) SaveAnswers(ctx context.Context, attemptID uuid.UUID, answers map[string]string) (*SaveAnswersResponse, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "save answers")
	if err != nil {
		return nil, err
	}

	a, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInProgress {
		return nil, ErrAlreadySubmitted
	}

	snap, err := s.evals.Snapshot(ctx, a.EvaluationID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListAnswers(attemptID)
	if err != nil {
		log.WithError(err).Error("Failed to list existing answers")
		return nil, err
	}
	seen := make(map[uuid.UUID]bool, len(existing))
	for _, ans := range existing {
		seen[ans.QuestionID] = true
	}

	resp := &SaveAnswersResponse{}
	valid := make([]Answer, 0, len(answers))
	for qidStr, value := range answers {
		qid, err := uuid.Parse(qidStr)
		if err != nil || !snap.HasQuestion(qid) {
			log.WithField("question_id", qidStr).Warn("Skipping answer for unknown question")
			continue
		}

		valid = append(valid, Answer{
			ID:         uuid.New(),
			AttemptID:  attemptID,
			QuestionID: qid,
			UserAnswer: value,
		})
		if seen[qid] {
			resp.UpdatedCount++
		} else {
			resp.SavedCount++
		}
	}

	if len(valid) > 0 {
		// The repository re-checks the status under lock: a submit landing
		// between the check above and this write turns the batch into
		// ErrAlreadySubmitted instead of rewriting graded answers.
		if err := s.repo.UpsertAnswers(attemptID, valid); err != nil {
			if err != ErrAlreadySubmitted {
				log.WithError(err).Error("Failed to save answers")
			}
			return nil, err
		}
	}

	return resp, nil
}

// RecordViolation appends one proctoring violation. Once the evaluation's cap
// is reached further violations are rejected and the caller is told to
// auto-submit.
func (s *service) RecordViolation(ctx context.Context, attemptID uuid.UUID) (*ViolationResponse, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "record violation")
	if err != nil {
		return nil, err
	}

	a, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInProgress {
		return nil, ErrAlreadySubmitted
	}

	snap, err := s.evals.Snapshot(ctx, a.EvaluationID)
	if err != nil {
		return nil, err
	}

	max := snap.Evaluation.MaxViolations
	if max <= 0 {
		max = evaluation.DefaultMaxViolations
	}

	count, created, err := s.repo.CreateViolationIfUnderCap(&Violation{
		ID:           uuid.New(),
		AttemptID:    attemptID,
		UserID:       userID,
		EvaluationID: a.EvaluationID,
	}, max)
	if err != nil {
		log.WithError(err).Error("Failed to record violation")
		return nil, err
	}

	if !created {
		return &ViolationResponse{
			CurrentCount:     int(count),
			MaxCount:         max,
			ShouldAutoSubmit: true,
		}, ErrThresholdExceeded
	}

	log.WithFields(logrus.Fields{
		"attempt_id": attemptID,
		"count":      count,
		"max":        max,
	}).Warn("Proctoring violation recorded")

	return &ViolationResponse{
		CurrentCount:     int(count),
		MaxCount:         max,
		ShouldAutoSubmit: int(count) >= max,
	}, nil
}

func (s *service) Submit(ctx context.Context, attemptID uuid.UUID, answers map[string]string, auto bool) (*SubmitResponse, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "submit attempt")
	if err != nil {
		return nil, err
	}

	a, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInProgress {
		return nil, ErrAlreadySubmitted
	}

	snap, err := s.evals.Snapshot(ctx, a.EvaluationID)
	if err != nil {
		return nil, err
	}

	return s.submit(ctx, snap, a, answers, auto)
}

// submit merges call-provided answers over autosaved ones, scores the full
// question set once and flips the attempt to SUBMITTED. Auto-submission
// (violation threshold or expired timer) takes this exact same path so
// scoring can never diverge between manual and forced submits. A storage
// failure leaves the attempt IN_PROGRESS; retrying is safe.
func (s *service) submit(ctx context.Context, snap *evaluation.Snapshot, a *Attempt, answers map[string]string, auto bool) (*SubmitResponse, error) {
	log := config.WithContext(ctx)

	saved, err := s.repo.ListAnswers(a.ID)
	if err != nil {
		log.WithError(err).Error("Failed to load saved answers for submit")
		return nil, err
	}

	merged := make(map[uuid.UUID]string, len(saved)+len(answers))
	for _, ans := range saved {
		merged[ans.QuestionID] = ans.UserAnswer
	}
	for qidStr, value := range answers {
		qid, err := uuid.Parse(qidStr)
		if err != nil || !snap.HasQuestion(qid) {
			continue
		}
		merged[qid] = value
	}

	result := Score(snap.Questions, merged, snap.Evaluation.NegativeMarking, snap.Evaluation.NegativePoints)

	now := s.now()
	finalAnswers := make([]Answer, 0, len(result.PerQuestion))
	for _, qr := range result.PerQuestion {
		correct := qr.Correct
		earned := qr.PointsEarned
		finalAnswers = append(finalAnswers, Answer{
			ID:           uuid.New(),
			AttemptID:    a.ID,
			QuestionID:   qr.QuestionID,
			UserAnswer:   merged[qr.QuestionID],
			IsCorrect:    &correct,
			PointsEarned: &earned,
		})
	}

	update := SubmissionUpdate{
		SubmittedAt:      now,
		Score:            result.Percent,
		TotalPoints:      result.TotalPoints,
		TimeTakenSeconds: int(now.Sub(a.StartedAt).Seconds()),
		IsAutoSubmitted:  auto,
	}

	if err := s.repo.FinalizeSubmission(a.ID, update, finalAnswers); err != nil {
		if err != ErrAlreadySubmitted {
			log.WithError(err).Error("Failed to finalize submission")
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"attempt_id": a.ID,
		"score":      result.Percent,
		"auto":       auto,
	}).Info("Attempt submitted")

	return &SubmitResponse{
		AttemptID:        a.ID,
		Score:            result.Percent,
		TotalPoints:      result.TotalPoints,
		TimeTakenSeconds: update.TimeTakenSeconds,
		CorrectCount:     result.CorrectCount,
		TotalCount:       len(snap.Questions),
		AutoSubmitted:    auto,
	}, nil
}

func (s *service) Get(ctx context.Context, attemptID uuid.UUID) (*AttemptDetail, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "get attempt")
	if err != nil {
		return nil, err
	}

	a, err := s.findOwned(attemptID, userID)
	if err != nil {
		return nil, err
	}

	snap, err := s.evals.Snapshot(ctx, a.EvaluationID)
	if err != nil {
		return nil, err
	}

	detail := &AttemptDetail{Attempt: *a}

	if a.Status == StatusInProgress {
		detail.RemainingSeconds = RemainingSeconds(snap.Evaluation.TimeLimitSeconds, a.StartedAt, s.now())
		return detail, nil
	}

	if !snap.Evaluation.ShowAnswers {
		return detail, nil
	}

	saved, err := s.repo.ListAnswers(attemptID)
	if err != nil {
		log.WithError(err).Error("Failed to load answers for attempt detail")
		return nil, err
	}
	byQuestion := make(map[uuid.UUID]Answer, len(saved))
	for _, ans := range saved {
		byQuestion[ans.QuestionID] = ans
	}

	for _, q := range snap.Questions {
		ans := byQuestion[q.ID]
		detail.Answers = append(detail.Answers, AnswerDetail{
			QuestionID:    q.ID,
			Content:       q.Content,
			Type:          q.Type,
			UserAnswer:    ans.UserAnswer,
			CorrectAnswer: q.Key.Display(),
			IsCorrect:     ans.IsCorrect,
			PointsEarned:  ans.PointsEarned,
			Points:        q.Points,
		})
	}

	return detail, nil
}

func (s *service) ListMine(ctx context.Context) ([]Attempt, error) {
	log := config.WithContext(ctx)
	userID, err := getUserIDFromContext(ctx, log, "list attempts")
	if err != nil {
		return nil, err
	}

	attempts, err := s.repo.ListByUser(userID)
	if err != nil {
		log.WithError(err).Error("Failed to list attempts by user")
		return nil, err
	}
	return attempts, nil
}
