package evaluation_test

import (
	"testing"

	"github.com/evalhub/evalhub/internal/evaluation"
)

func TestDecodeAnswerKey(t *testing.T) {
	t.Run("SingleToken", func(t *testing.T) {
		for _, qType := range []evaluation.QuestionType{evaluation.QuestionTrueFalse, evaluation.QuestionMultipleChoice} {
			key, err := evaluation.DecodeAnswerKey(qType, "b")
			if err != nil {
				t.Fatalf("DecodeAnswerKey(%s) failed: %v", qType, err)
			}
			if key.Token != "b" {
				t.Errorf("token = %q, want \"b\"", key.Token)
			}
		}
	})

	t.Run("MultiSelect", func(t *testing.T) {
		key, err := evaluation.DecodeAnswerKey(evaluation.QuestionMultiSelect, `["c","a","b"]`)
		if err != nil {
			t.Fatalf("DecodeAnswerKey failed: %v", err)
		}
		if len(key.Tokens) != 3 || key.Tokens[0] != "a" || key.Tokens[2] != "c" {
			t.Errorf("tokens not decoded and sorted: %v", key.Tokens)
		}
	})

	t.Run("MultiSelectMalformed", func(t *testing.T) {
		if _, err := evaluation.DecodeAnswerKey(evaluation.QuestionMultiSelect, "not json"); err == nil {
			t.Error("expected error for malformed multi-select key")
		}
	})

	t.Run("FillInBlank", func(t *testing.T) {
		key, err := evaluation.DecodeAnswerKey(evaluation.QuestionFillInBlank, "The Answer")
		if err != nil {
			t.Fatalf("DecodeAnswerKey failed: %v", err)
		}
		if key.Text != "The Answer" {
			t.Errorf("text = %q", key.Text)
		}
	})

	t.Run("UnknownType", func(t *testing.T) {
		if _, err := evaluation.DecodeAnswerKey("ESSAY", "x"); err == nil {
			t.Error("expected error for unknown question type")
		}
	})
}

func TestAnswerKeyMatches(t *testing.T) {
	t.Run("MultiSelectAcceptsSingleRawToken", func(t *testing.T) {
		key, _ := evaluation.DecodeAnswerKey(evaluation.QuestionMultiSelect, `["a"]`)
		if !key.Matches("a") {
			t.Error("a bare token submission must match a single-element key")
		}
	})

	t.Run("MultiSelectEmptySubmission", func(t *testing.T) {
		key, _ := evaluation.DecodeAnswerKey(evaluation.QuestionMultiSelect, `["a","b"]`)
		if key.Matches("") {
			t.Error("empty submission must not match a non-empty key")
		}
	})

	t.Run("FillInBlankEmptyKey", func(t *testing.T) {
		// Unlikely but allowed: an empty correct answer matches an empty
		// (or unanswered) submission.
		key, _ := evaluation.DecodeAnswerKey(evaluation.QuestionFillInBlank, "")
		if !key.Matches("") {
			t.Error("empty key must match empty submission")
		}
	})
}

func TestViewFromSnapshot(t *testing.T) {
	mkLoaded := func(qType evaluation.QuestionType, raw string, points float64) evaluation.LoadedQuestion {
		key, err := evaluation.DecodeAnswerKey(qType, raw)
		if err != nil {
			t.Fatalf("DecodeAnswerKey failed: %v", err)
		}
		return evaluation.LoadedQuestion{Type: qType, Points: points, Key: key}
	}

	snap := &evaluation.Snapshot{
		Evaluation: evaluation.Evaluation{Title: "Final", Status: evaluation.StatusActive, MaxViolations: 3},
		Questions: []evaluation.LoadedQuestion{
			mkLoaded(evaluation.QuestionTrueFalse, "true", 1),
			mkLoaded(evaluation.QuestionFillInBlank, "secret", 2),
		},
	}

	view := evaluation.ViewFromSnapshot(snap, true)

	if view.QuestionCount != 2 {
		t.Errorf("question_count = %d, want 2", view.QuestionCount)
	}
	if view.TotalPoints != 3 {
		t.Errorf("total_points = %v, want 3", view.TotalPoints)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("expected 2 questions in view, got %d", len(view.Questions))
	}

	withoutQuestions := evaluation.ViewFromSnapshot(snap, false)
	if withoutQuestions.Questions != nil {
		t.Error("metadata view must not include questions")
	}
}
