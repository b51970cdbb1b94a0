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

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// AdminLogin godoc
// POST /api/v1/auth/admin/login
// Authenticates an admin and returns a JWT.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	h.login(c, model.RoleAdmin)
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Authenticates a student and returns a JWT.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	h.login(c, model.RoleStudent)
}

func (h *AuthHandler) login(c *gin.Context, role model.Role) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), role, &req)
	if err != nil {
		h.log.Info().Str("username", req.Username).Str("role", string(role)).Msg("Login rejected")
		failWithError(c, h.log, err)
		return
	}

	response.OK(c, resp)
}
