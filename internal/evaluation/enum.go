package evaluation

type Kind string

const (
	KindQuiz       Kind = "QUIZ"
	KindAssessment Kind = "ASSESSMENT"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

type QuestionType string

const (
	QuestionTrueFalse      QuestionType = "TRUE_FALSE"
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionMultiSelect    QuestionType = "MULTI_SELECT"
	QuestionFillInBlank    QuestionType = "FILL_IN_BLANK"
)
