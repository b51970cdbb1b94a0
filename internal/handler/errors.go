package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/response"
	"github.com/stemsi/examsession/internal/service"
	"github.com/stemsi/examsession/internal/session"
)

type errMapping struct {
	err    error
	status int
	code   response.ErrCode
}

// errMappings translates domain sentinels to API errors. First match wins.
var errMappings = []errMapping{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrUsernameTaken, http.StatusConflict, response.ErrUsernameTaken},
	{service.ErrExamNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrPoolNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrQuestionNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrResultNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrSessionNotFound, http.StatusNotFound, response.ErrNotFound},
	{service.ErrExamHasNoPool, http.StatusBadRequest, response.ErrExamHasNoPool},
	{service.ErrNotManuallyGraded, http.StatusBadRequest, response.ErrNotManuallyGraded},
	{service.ErrQuestionNotAnswered, http.StatusBadRequest, response.ErrQuestionNotAnswered},
	{service.ErrResultNotPublished, http.StatusForbidden, response.ErrResultNotPublished},
	{service.ErrExamNotPublished, http.StatusForbidden, response.ErrExamNotPublished},
	{service.ErrAlreadyTaken, http.StatusConflict, response.ErrAlreadyTaken},
	{service.ErrNotSessionOwner, http.StatusForbidden, response.ErrNotSessionOwner},
	{session.ErrAlreadySubmitted, http.StatusConflict, response.ErrAlreadySubmitted},
	{session.ErrQuestionNotInSession, http.StatusBadRequest, response.ErrQuestionNotInSession},
	{model.ErrNoQuestions, http.StatusUnprocessableEntity, response.ErrNoQuestions},
	{model.ErrInvalidQuestion, http.StatusBadRequest, response.ErrInvalidQuestion},
	{model.ErrDuplicateQuestion, http.StatusConflict, response.ErrDuplicateQuestion},
	{model.ErrInvalidGrade, http.StatusBadRequest, response.ErrInvalidGrade},
	{model.ErrInvalidRandomCount, http.StatusBadRequest, response.ErrValidation},
	{model.ErrInvalidExamDuration, http.StatusBadRequest, response.ErrValidation},
}

// failWithError writes the API error for err. Unknown errors are logged and
// reported as INTERNAL_ERROR.
func failWithError(c *gin.Context, log zerolog.Logger, err error) {
	for _, m := range errMappings {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}
	log.Error().Err(err).
		Str("request_id", response.RequestID(c)).
		Str("path", c.FullPath()).
		Msg("Unhandled error")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// parseIDParam parses a UUID path parameter, writing INVALID_ID on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}
