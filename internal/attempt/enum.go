package attempt

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusSubmitted  Status = "SUBMITTED"
)

type DeniedReason string

const (
	ReasonNotActive         DeniedReason = "NotActive"
	ReasonNotStarted        DeniedReason = "NotStarted"
	ReasonWindowExpired     DeniedReason = "WindowExpired"
	ReasonExpired           DeniedReason = "Expired"
	ReasonNotEnrolled       DeniedReason = "NotEnrolled"
	ReasonAttemptsExhausted DeniedReason = "AttemptsExhausted"
)
