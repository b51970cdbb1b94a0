package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/middleware"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/response"
	"github.com/stemsi/examsession/internal/service"
	"github.com/stemsi/examsession/internal/session"
	"github.com/stemsi/examsession/internal/validator"
)

// StudentPortalHandler handles student-facing exam endpoints.
type StudentPortalHandler struct {
	examService    *service.ExamService
	sessionService *service.ExamSessionService
	log            zerolog.Logger
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(examService *service.ExamService, sessionService *service.ExamSessionService, log zerolog.Logger) *StudentPortalHandler {
	return &StudentPortalHandler{
		examService:    examService,
		sessionService: sessionService,
		log:            log.With().Str("component", "student_portal_handler").Logger(),
	}
}

// ListExams godoc
// GET /api/v1/student/exams
// Lists published exams. Answer keys are never included.
func (h *StudentPortalHandler) ListExams(c *gin.Context) {
	exams := h.examService.ListPublished(c.Request.Context())
	views := make([]model.ExamView, len(exams))
	for i, e := range exams {
		views[i] = e.View(false)
	}
	response.OK(c, gin.H{"exams": views})
}

// StartExam godoc
// POST /api/v1/student/exams/:exam_id/start
// Creates the student's session for the exam and starts its countdown.
func (h *StudentPortalHandler) StartExam(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	sess, err := h.sessionService.StartExam(c.Request.Context(), middleware.CurrentStudent(c), examID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Created(c, gin.H{"session": sess.View()})
}

// GetSession godoc
// GET /api/v1/student/sessions/:session_id
func (h *StudentPortalHandler) GetSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	sess, err := h.sessionService.Get(c.Request.Context(), middleware.CurrentStudent(c), sessionID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"session": sess.View()})
}

// Advance godoc
// POST /api/v1/student/sessions/:session_id/advance
func (h *StudentPortalHandler) Advance(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	sess, err := h.sessionService.Advance(c.Request.Context(), middleware.CurrentStudent(c), sessionID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"session": sess.View()})
}

// SubmitAnswer godoc
// PUT /api/v1/student/sessions/:session_id/answers
// Records or replaces the answer to one question.
func (h *StudentPortalHandler) SubmitAnswer(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	var req session.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.Answer(c.Request.Context(), middleware.CurrentStudent(c), sessionID, &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"session": sess.View()})
}

// SubmitSession godoc
// POST /api/v1/student/sessions/:session_id/submit
// Finalizes the session. Repeating the call returns the same score.
func (h *StudentPortalHandler) SubmitSession(c *gin.Context) {
	sessionID, ok := parseIDParam(c, "session_id")
	if !ok {
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), middleware.CurrentStudent(c), sessionID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{
		"result_id":   result.ID,
		"score":       result.Score,
		"total_marks": result.TotalMarks,
		"reason":      result.Reason,
	})
}

// GetResult godoc
// GET /api/v1/student/exams/:exam_id/result
// Returns the student's result once an admin has published it.
func (h *StudentPortalHandler) GetResult(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	result, err := h.sessionService.StudentResult(c.Request.Context(), middleware.CurrentStudent(c), examID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"result": result.View()})
}
