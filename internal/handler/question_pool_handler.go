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

// QuestionPoolHandler handles question pool endpoints.
type QuestionPoolHandler struct {
	poolService *service.QuestionPoolService
	log         zerolog.Logger
}

// NewQuestionPoolHandler creates a new QuestionPoolHandler.
func NewQuestionPoolHandler(poolService *service.QuestionPoolService, log zerolog.Logger) *QuestionPoolHandler {
	return &QuestionPoolHandler{
		poolService: poolService,
		log:         log.With().Str("component", "question_pool_handler").Logger(),
	}
}

// CreatePool godoc
// POST /api/v1/admin/pools
func (h *QuestionPoolHandler) CreatePool(c *gin.Context) {
	var req model.CreatePoolRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pool, err := h.poolService.Create(c.Request.Context(), middleware.CurrentAdmin(c), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Created(c, gin.H{"pool": pool.View()})
}

// ListPools godoc
// GET /api/v1/admin/pools
func (h *QuestionPoolHandler) ListPools(c *gin.Context) {
	pools := h.poolService.List(c.Request.Context())
	views := make([]model.PoolView, len(pools))
	for i, p := range pools {
		views[i] = p.View()
	}
	response.OK(c, gin.H{"pools": views})
}

// AddQuestion godoc
// POST /api/v1/admin/pools/:pool_id/questions
// Authors a question inside the pool. Question IDs are unique per pool.
func (h *QuestionPoolHandler) AddQuestion(c *gin.Context) {
	poolID, ok := parseIDParam(c, "pool_id")
	if !ok {
		return
	}

	var req model.AddQuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.poolService.AddQuestion(c.Request.Context(), poolID, &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Created(c, gin.H{"question": model.DetailQuestion(q)})
}
