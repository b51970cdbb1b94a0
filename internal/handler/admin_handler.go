package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/model"
	"github.com/stemsi/examsession/internal/response"
	"github.com/stemsi/examsession/internal/service"
	"github.com/stemsi/examsession/internal/validator"
)

// AdminHandler handles student account management.
type AdminHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService *service.AuthService, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		log:         log.With().Str("component", "admin_handler").Logger(),
	}
}

// CreateStudent godoc
// POST /api/v1/admin/students
// Registers a student account.
func (h *AdminHandler) CreateStudent(c *gin.Context) {
	var req model.CreateStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	account, err := h.authService.CreateStudent(c.Request.Context(), &req)
	if err != nil {
		failWithError(c, h.log, err)
		return
	}

	response.Created(c, gin.H{"student": account})
}

// ListStudents godoc
// GET /api/v1/admin/students
func (h *AdminHandler) ListStudents(c *gin.Context) {
	response.OK(c, gin.H{"students": h.authService.ListStudents(c.Request.Context())})
}
