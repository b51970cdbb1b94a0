package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrAdminAccessOnly   ErrCode = "ADMIN_ACCESS_ONLY"
	ErrNotSessionOwner   ErrCode = "NOT_SESSION_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation      ErrCode = "VALIDATION_ERROR"
	ErrInvalidID       ErrCode = "INVALID_ID"
	ErrInvalidPayload  ErrCode = "INVALID_PAYLOAD"
	ErrInvalidQuestion ErrCode = "INVALID_QUESTION"
	ErrInvalidGrade    ErrCode = "INVALID_GRADE"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound          ErrCode = "NOT_FOUND"
	ErrConflict          ErrCode = "CONFLICT"
	ErrUsernameTaken     ErrCode = "USERNAME_TAKEN"
	ErrDuplicateQuestion ErrCode = "DUPLICATE_QUESTION"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrExamNotPublished     ErrCode = "EXAM_NOT_PUBLISHED"
	ErrNoQuestions          ErrCode = "NO_QUESTIONS"
	ErrExamHasNoPool        ErrCode = "EXAM_HAS_NO_POOL"
	ErrAlreadyTaken         ErrCode = "EXAM_ALREADY_TAKEN"
	ErrAlreadySubmitted     ErrCode = "SESSION_ALREADY_SUBMITTED"
	ErrQuestionNotInSession ErrCode = "QUESTION_NOT_IN_SESSION"
	ErrQuestionNotAnswered  ErrCode = "QUESTION_NOT_ANSWERED"
	ErrNotManuallyGraded    ErrCode = "NOT_MANUALLY_GRADED"
	ErrResultNotPublished   ErrCode = "RESULT_NOT_PUBLISHED"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid username or password."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid or expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrStudentAccessOnly:
		return "This resource is restricted to students."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."
	case ErrNotSessionOwner:
		return "This exam session belongs to another student."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrInvalidQuestion:
		return "Invalid question."
	case ErrInvalidGrade:
		return "Grade is outside the question's marks."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrUsernameTaken:
		return "Username is already taken."
	case ErrDuplicateQuestion:
		return "A question with this ID already exists in the pool."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrExamNotPublished:
		return "Exam is not published."
	case ErrNoQuestions:
		return "Exam has no questions."
	case ErrExamHasNoPool:
		return "Exam has no question pool."
	case ErrAlreadyTaken:
		return "You have already taken this exam."
	case ErrAlreadySubmitted:
		return "Exam session has already been submitted."
	case ErrQuestionNotInSession:
		return "Question is not part of this exam session."
	case ErrQuestionNotAnswered:
		return "Question was not answered in this exam session."
	case ErrNotManuallyGraded:
		return "Only essay answers can be graded manually."
	case ErrResultNotPublished:
		return "Result has not been published yet."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."

	default:
		return "An unknown error occurred."
	}
}
