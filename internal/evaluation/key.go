package evaluation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// AnswerKey is the decoded form of a question's stored correct answer. The
// raw column is a single token for TRUE_FALSE/MULTIPLE_CHOICE, a JSON array
// of tokens for MULTI_SELECT and free text for FILL_IN_BLANK; decoding once
// at load time keeps that format knowledge out of the scoring path.
type AnswerKey struct {
	Type   QuestionType
	Token  string
	Tokens []string
	Text   string
}

func DecodeAnswerKey(qType QuestionType, raw string) (AnswerKey, error) {
	switch qType {
	case QuestionTrueFalse, QuestionMultipleChoice:
		return AnswerKey{Type: qType, Token: raw}, nil
	case QuestionMultiSelect:
		var tokens []string
		if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
			return AnswerKey{}, fmt.Errorf("invalid multi-select answer key: %w", err)
		}
		sort.Strings(tokens)
		return AnswerKey{Type: qType, Tokens: tokens}, nil
	case QuestionFillInBlank:
		return AnswerKey{Type: qType, Text: raw}, nil
	default:
		return AnswerKey{}, fmt.Errorf("unknown question type %q", qType)
	}
}

// Matches reports whether a submitted raw answer is correct against the key.
// Unanswered questions arrive here as the empty string.
func (k AnswerKey) Matches(submitted string) bool {
	switch k.Type {
	case QuestionTrueFalse, QuestionMultipleChoice:
		return submitted == k.Token
	case QuestionMultiSelect:
		tokens := parseTokenList(submitted)
		sort.Strings(tokens)
		// Sorted-slice equality: duplicates in the submission are not
		// collapsed, so ["a","a","b"] does not match ["a","b"].
		if len(tokens) != len(k.Tokens) {
			return false
		}
		for i := range tokens {
			if tokens[i] != k.Tokens[i] {
				return false
			}
		}
		return true
	case QuestionFillInBlank:
		return strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(k.Text))
	default:
		return false
	}
}

// Display renders the key for post-submission review screens.
func (k AnswerKey) Display() string {
	switch k.Type {
	case QuestionTrueFalse, QuestionMultipleChoice:
		return k.Token
	case QuestionMultiSelect:
		return strings.Join(k.Tokens, ", ")
	case QuestionFillInBlank:
		return k.Text
	default:
		return ""
	}
}

func parseTokenList(raw string) []string {
	if raw == "" {
		return nil
	}
	var tokens []string
	if err := json.Unmarshal([]byte(raw), &tokens); err == nil {
		return tokens
	}
	// Not a JSON array: treat the raw value as a single token.
	return []string{raw}
}

// LoadedQuestion is one question of an evaluation snapshot with its key
// already decoded.
type LoadedQuestion struct {
	ID         uuid.UUID
	Type       QuestionType
	Content    string
	Options    []string
	OrderIndex int
	Points     float64
	Key        AnswerKey
}

// Snapshot is the read-only view of an evaluation the attempt engine works
// against, fetched once per start/resume and cached.
type Snapshot struct {
	Evaluation Evaluation
	Questions  []LoadedQuestion
}

func (s *Snapshot) TotalPoints() float64 {
	var total float64
	for _, q := range s.Questions {
		total += q.Points
	}
	return total
}

func (s *Snapshot) HasQuestion(id uuid.UUID) bool {
	for _, q := range s.Questions {
		if q.ID == id {
			return true
		}
	}
	return false
}
