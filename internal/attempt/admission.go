package attempt

import (
	"context"
	"time"

	"github.com/evalhub/evalhub/internal/evaluation"
	"github.com/google/uuid"
)

// Quizzes admit late joiners for a fixed window after the scheduled start.
const quizLateJoinGrace = 30 * time.Minute

type Admission struct {
	Allowed bool
	Reason  DeniedReason
}

func denied(reason DeniedReason) Admission {
	return Admission{Allowed: false, Reason: reason}
}

type enrollmentSource interface {
	IsEnrolled(ctx context.Context, evaluationID, userID uuid.UUID) (bool, error)
	HasAnyEnrollments(ctx context.Context, evaluationID uuid.UUID) (bool, error)
}

type submittedCounter interface {
	CountSubmitted(evaluationID, userID uuid.UUID) (int64, error)
}

// AdmissionChecker gates starting and resuming attempts. Every check is a
// pure read; callers may poll it freely before starting.
type AdmissionChecker struct {
	enrollments enrollmentSource
	attempts    submittedCounter
	now         func() time.Time
}

func NewAdmissionChecker(enrollments enrollmentSource, attempts submittedCounter) *AdmissionChecker {
	return &AdmissionChecker{
		enrollments: enrollments,
		attempts:    attempts,
		now:         time.Now,
	}
}

// CanStart evaluates the admission rules in order; the first failing rule
// wins. All time comparisons use server wall-clock time only.
func (c *AdmissionChecker) CanStart(ctx context.Context, snap *evaluation.Snapshot, userID uuid.UUID) (Admission, error) {
	eval := snap.Evaluation
	now := c.now()

	if eval.Status != evaluation.StatusActive {
		return denied(ReasonNotActive), nil
	}

	if eval.StartTime != nil {
		if now.Before(*eval.StartTime) {
			return denied(ReasonNotStarted), nil
		}
		if eval.Kind == evaluation.KindQuiz && now.After(eval.StartTime.Add(quizLateJoinGrace)) {
			return denied(ReasonWindowExpired), nil
		}
	}

	if eval.EndTime != nil && now.After(*eval.EndTime) {
		return denied(ReasonExpired), nil
	}

	hasEnrollments, err := c.enrollments.HasAnyEnrollments(ctx, eval.ID)
	if err != nil {
		return Admission{}, err
	}
	if hasEnrollments {
		enrolled, err := c.enrollments.IsEnrolled(ctx, eval.ID, userID)
		if err != nil {
			return Admission{}, err
		}
		if !enrolled {
			return denied(ReasonNotEnrolled), nil
		}
	}

	if eval.MaxAttempts != nil {
		submitted, err := c.attempts.CountSubmitted(eval.ID, userID)
		if err != nil {
			return Admission{}, err
		}
		if submitted >= int64(*eval.MaxAttempts) {
			return denied(ReasonAttemptsExhausted), nil
		}
	}

	return Admission{Allowed: true}, nil
}

// CanResume checks whether an existing IN_PROGRESS attempt may continue.
// Expiry is computed from the attempt's own StartedAt plus the evaluation's
// time limit; it is never persisted as a status.
func (c *AdmissionChecker) CanResume(snap *evaluation.Snapshot, a *Attempt) Admission {
	eval := snap.Evaluation
	now := c.now()

	if eval.Status != evaluation.StatusActive {
		return denied(ReasonNotActive)
	}

	if eval.EndTime != nil && now.After(*eval.EndTime) {
		return denied(ReasonExpired)
	}

	if Expired(eval.TimeLimitSeconds, a.StartedAt, now) {
		return denied(ReasonExpired)
	}

	return Admission{Allowed: true}
}

func Expired(timeLimitSeconds *int, startedAt, now time.Time) bool {
	if timeLimitSeconds == nil {
		return false
	}
	return now.After(startedAt.Add(time.Duration(*timeLimitSeconds) * time.Second))
}

// RemainingSeconds reports the seconds left on a timed attempt, floored at
// zero. Untimed evaluations return nil.
func RemainingSeconds(timeLimitSeconds *int, startedAt, now time.Time) *int {
	if timeLimitSeconds == nil {
		return nil
	}
	remaining := *timeLimitSeconds - int(now.Sub(startedAt).Seconds())
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}
