package service

import "errors"

// Service errors surfaced to handlers.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already taken")

	ErrExamNotFound        = errors.New("exam not found")
	ErrPoolNotFound        = errors.New("question pool not found")
	ErrExamHasNoPool       = errors.New("exam has no question pool")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrNotManuallyGraded   = errors.New("question is not manually graded")
	ErrQuestionNotAnswered = errors.New("question was not answered in this session")
	ErrResultNotFound      = errors.New("result not found")
	ErrResultNotPublished  = errors.New("result not published yet")
	ErrExamNotPublished    = errors.New("exam is not published")
	ErrAlreadyTaken        = errors.New("exam already taken by this student")
	ErrSessionNotFound     = errors.New("exam session not found")
	ErrNotSessionOwner     = errors.New("exam session belongs to another student")
)
