package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/middleware"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/response"
	"github.com/stemsi/examsession/internal/service"
	"github.com/stemsi/examsession/internal/validator"
)

// ExamHandler handles exam authoring and result review for admins.
type ExamHandler struct {
	examService *service.ExamService
	log         zerolog.Logger
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(examService *service.ExamService, log zerolog.Logger) *ExamHandler {
	return &ExamHandler{
		examService: examService,
		log:         log.With().Str("component", "exam_handler").Logger(),
	}
}

// CreateExam godoc
// POST /api/v1/admin/exams
// Creates a new draft exam, optionally backed by a question pool.
func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.Create(c.Request.Context(), middleware.CurrentAdmin(c), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Created(c, gin.H{"exam": exam.View(false)})
}

// ListExams godoc
// GET /api/v1/admin/exams
func (h *ExamHandler) ListExams(c *gin.Context) {
	exams := h.examService.List(c.Request.Context())
	views := make([]model.ExamView, len(exams))
	for i, e := range exams {
		views[i] = e.View(false)
	}
	response.OK(c, gin.H{"exams": views})
}

// GetExam godoc
// GET /api/v1/admin/exams/:exam_id
// Returns the exam with its explicit questions and answer keys.
func (h *ExamHandler) GetExam(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	exam, err := h.examService.Get(c.Request.Context(), examID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"exam": exam.View(true)})
}

// AddQuestion godoc
// POST /api/v1/admin/exams/:exam_id/questions
// Adds an inline question or a reference to a question of the exam's pool.
func (h *ExamHandler) AddQuestion(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.AddExamQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.examService.AddQuestion(c.Request.Context(), examID, &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Created(c, gin.H{"question": model.DetailQuestion(q)})
}

// SetRandomCount godoc
// PUT /api/v1/admin/exams/:exam_id/random-count
func (h *ExamHandler) SetRandomCount(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	var req model.SetRandomCountRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.examService.SetRandomQuestionCount(c.Request.Context(), examID, *req.Count)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"exam": exam.View(false)})
}

// PublishExam godoc
// POST /api/v1/admin/exams/:exam_id/publish
// Publishes an exam. Exams that would give students no questions are refused.
func (h *ExamHandler) PublishExam(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	exam, err := h.examService.Publish(c.Request.Context(), examID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"exam": exam.View(false)})
}

// ListResults godoc
// GET /api/v1/admin/exams/:exam_id/results
// Lists results of submitted sessions only.
func (h *ExamHandler) ListResults(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	results, err := h.examService.Results(c.Request.Context(), examID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	views := make([]model.ResultView, len(results))
	for i, r := range results {
		views[i] = r.View()
	}
	response.OK(c, gin.H{"results": views})
}

// Summary godoc
// GET /api/v1/admin/exams/:exam_id/summary
func (h *ExamHandler) Summary(c *gin.Context) {
	examID, ok := parseIDParam(c, "exam_id")
	if !ok {
		return
	}

	summary, err := h.examService.Summary(c.Request.Context(), examID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"summary": summary})
}

// SetComments godoc
// PUT /api/v1/admin/results/:result_id/comments
func (h *ExamHandler) SetComments(c *gin.Context) {
	resultID, ok := parseIDParam(c, "result_id")
	if !ok {
		return
	}

	var req model.CommentsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.examService.SetComments(c.Request.Context(), resultID, req.Comments)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"result": result.View()})
}

// PublishResult godoc
// POST /api/v1/admin/results/:result_id/publish
func (h *ExamHandler) PublishResult(c *gin.Context) {
	resultID, ok := parseIDParam(c, "result_id")
	if !ok {
		return
	}

	result, err := h.examService.PublishResult(c.Request.Context(), resultID)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"result": result.View()})
}

// GradeAnswer godoc
// POST /api/v1/admin/results/:result_id/grades
// Records a manual grade for an essay answer.
func (h *ExamHandler) GradeAnswer(c *gin.Context) {
	resultID, ok := parseIDParam(c, "result_id")
	if !ok {
		return
	}

	var req model.ManualGradeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.examService.GradeAnswer(c.Request.Context(), resultID, req.QuestionID, *req.Marks)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, gin.H{"result": result.View()})
}
