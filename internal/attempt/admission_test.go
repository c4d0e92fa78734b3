package attempt_test

import (
	"context"
	"testing"
	"time"

	"github.com/evalhub/evalhub/internal/attempt"
	"github.com/evalhub/evalhub/internal/evaluation"
	"github.com/google/uuid"
)

type fakeEnrollments struct {
	hasAny   bool
	enrolled map[uuid.UUID]bool
}

func (f *fakeEnrollments) IsEnrolled(_ context.Context, _, userID uuid.UUID) (bool, error) {
	return f.enrolled[userID], nil
}

func (f *fakeEnrollments) HasAnyEnrollments(_ context.Context, _ uuid.UUID) (bool, error) {
	return f.hasAny, nil
}

type fakeCounter struct {
	submitted int64
}

func (f *fakeCounter) CountSubmitted(_, _ uuid.UUID) (int64, error) {
	return f.submitted, nil
}

func activeSnapshot(mutate func(*evaluation.Evaluation)) *evaluation.Snapshot {
	eval := evaluation.Evaluation{
		ID:            uuid.New(),
		Title:         "Midterm",
		Kind:          evaluation.KindAssessment,
		Status:        evaluation.StatusActive,
		MaxViolations: 3,
	}
	if mutate != nil {
		mutate(&eval)
	}
	return &evaluation.Snapshot{Evaluation: eval}
}

func TestCanStart(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	hour := time.Hour

	cases := []struct {
		name        string
		snap        *evaluation.Snapshot
		enrollments *fakeEnrollments
		counter     *fakeCounter
		wantAllowed bool
		wantReason  attempt.DeniedReason
	}{
		{
			name:        "ActiveOpenEvaluation",
			snap:        activeSnapshot(nil),
			wantAllowed: true,
		},
		{
			name: "NotActive",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				e.Status = evaluation.StatusDraft
			}),
			wantReason: attempt.ReasonNotActive,
		},
		{
			name: "NotStarted",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				start := time.Now().Add(hour)
				e.StartTime = &start
			}),
			wantReason: attempt.ReasonNotStarted,
		},
		{
			name: "QuizLateJoinWindowExpired",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				e.Kind = evaluation.KindQuiz
				start := time.Now().Add(-hour)
				e.StartTime = &start
			}),
			wantReason: attempt.ReasonWindowExpired,
		},
		{
			name: "QuizWithinLateJoinGrace",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				e.Kind = evaluation.KindQuiz
				start := time.Now().Add(-10 * time.Minute)
				e.StartTime = &start
			}),
			wantAllowed: true,
		},
		{
			name: "AssessmentHasNoLateJoinCutoff",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				start := time.Now().Add(-hour)
				e.StartTime = &start
			}),
			wantAllowed: true,
		},
		{
			name: "Expired",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				end := time.Now().Add(-hour)
				e.EndTime = &end
			}),
			wantReason: attempt.ReasonExpired,
		},
		{
			name:        "NotEnrolled",
			snap:        activeSnapshot(nil),
			enrollments: &fakeEnrollments{hasAny: true},
			wantReason:  attempt.ReasonNotEnrolled,
		},
		{
			name:        "Enrolled",
			snap:        activeSnapshot(nil),
			enrollments: &fakeEnrollments{hasAny: true, enrolled: map[uuid.UUID]bool{userID: true}},
			wantAllowed: true,
		},
		{
			name: "AttemptsExhausted",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				max := 2
				e.MaxAttempts = &max
			}),
			counter:    &fakeCounter{submitted: 2},
			wantReason: attempt.ReasonAttemptsExhausted,
		},
		{
			name: "AttemptsRemaining",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				max := 2
				e.MaxAttempts = &max
			}),
			counter:     &fakeCounter{submitted: 1},
			wantAllowed: true,
		},
		{
			name: "FirstFailingRuleWins",
			snap: activeSnapshot(func(e *evaluation.Evaluation) {
				e.Status = evaluation.StatusArchived
				end := time.Now().Add(-hour)
				e.EndTime = &end
			}),
			wantReason: attempt.ReasonNotActive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			enrollments := tc.enrollments
			if enrollments == nil {
				enrollments = &fakeEnrollments{}
			}
			counter := tc.counter
			if counter == nil {
				counter = &fakeCounter{}
			}

			checker := attempt.NewAdmissionChecker(enrollments, counter)
			admission, err := checker.CanStart(ctx, tc.snap, userID)
			if err != nil {
				t.Fatalf("CanStart failed: %v", err)
			}

			if admission.Allowed != tc.wantAllowed {
				t.Fatalf("allowed = %v, want %v (reason %s)", admission.Allowed, tc.wantAllowed, admission.Reason)
			}
			if !tc.wantAllowed && admission.Reason != tc.wantReason {
				t.Errorf("reason = %s, want %s", admission.Reason, tc.wantReason)
			}
		})
	}
}

func TestCanStartIsPure(t *testing.T) {
	// Poll-before-start: repeated checks must not change the outcome.
	checker := attempt.NewAdmissionChecker(&fakeEnrollments{}, &fakeCounter{})
	snap := activeSnapshot(nil)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		admission, err := checker.CanStart(context.Background(), snap, userID)
		if err != nil {
			t.Fatalf("CanStart failed on call %d: %v", i, err)
		}
		if !admission.Allowed {
			t.Fatalf("CanStart denied on call %d: %s", i, admission.Reason)
		}
	}
}

func TestCanResume(t *testing.T) {
	checker := attempt.NewAdmissionChecker(&fakeEnrollments{}, &fakeCounter{})
	limit := 1800

	t.Run("WithinTimeLimit", func(t *testing.T) {
		snap := activeSnapshot(func(e *evaluation.Evaluation) {
			e.TimeLimitSeconds = &limit
		})
		a := &attempt.Attempt{StartedAt: time.Now().Add(-10 * time.Minute), Status: attempt.StatusInProgress}

		if admission := checker.CanResume(snap, a); !admission.Allowed {
			t.Errorf("expected resume allowed, denied with %s", admission.Reason)
		}
	})

	t.Run("TimeLimitExpired", func(t *testing.T) {
		snap := activeSnapshot(func(e *evaluation.Evaluation) {
			e.TimeLimitSeconds = &limit
		})
		a := &attempt.Attempt{StartedAt: time.Now().Add(-time.Hour), Status: attempt.StatusInProgress}

		admission := checker.CanResume(snap, a)
		if admission.Allowed {
			t.Fatal("expected resume denied after time limit")
		}
		if admission.Reason != attempt.ReasonExpired {
			t.Errorf("reason = %s, want %s", admission.Reason, attempt.ReasonExpired)
		}
	})

	t.Run("UntimedNeverExpires", func(t *testing.T) {
		snap := activeSnapshot(nil)
		a := &attempt.Attempt{StartedAt: time.Now().Add(-48 * time.Hour), Status: attempt.StatusInProgress}

		if admission := checker.CanResume(snap, a); !admission.Allowed {
			t.Errorf("untimed attempt must always resume, denied with %s", admission.Reason)
		}
	})

	t.Run("EvaluationWindowClosed", func(t *testing.T) {
		snap := activeSnapshot(func(e *evaluation.Evaluation) {
			end := time.Now().Add(-time.Minute)
			e.EndTime = &end
		})
		a := &attempt.Attempt{StartedAt: time.Now().Add(-10 * time.Minute), Status: attempt.StatusInProgress}

		if admission := checker.CanResume(snap, a); admission.Allowed {
			t.Error("expected resume denied after the evaluation window closed")
		}
	})
}

func TestRemainingSeconds(t *testing.T) {
	limit := 600

	t.Run("Untimed", func(t *testing.T) {
		if got := attempt.RemainingSeconds(nil, time.Now(), time.Now()); got != nil {
			t.Errorf("expected nil for untimed evaluation, got %d", *got)
		}
	})

	t.Run("PartiallyElapsed", func(t *testing.T) {
		started := time.Now()
		got := attempt.RemainingSeconds(&limit, started, started.Add(4*time.Minute))
		if got == nil || *got != 360 {
			t.Errorf("expected 360 seconds remaining, got %v", got)
		}
	})

	t.Run("FlooredAtZero", func(t *testing.T) {
		started := time.Now()
		got := attempt.RemainingSeconds(&limit, started, started.Add(time.Hour))
		if got == nil || *got != 0 {
			t.Errorf("expected 0 seconds remaining, got %v", got)
		}
	})
}
