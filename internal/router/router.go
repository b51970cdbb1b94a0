package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/examsession/internal/config"
	"github.com/stemsi/examsession/internal/handler"
	"github.com/stemsi/examsession/internal/middleware"
	"github.com/stemsi/examsession/internal/response"
	"github.com/stemsi/examsession/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth          *handler.AuthHandler
	Admin         *handler.AdminHandler
	Pool          *handler.QuestionPoolHandler
	Exam          *handler.ExamHandler
	StudentPortal *handler.StudentPortalHandler
	WS            *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// loginLimiter may be nil to disable login rate limiting.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	loginLimiter *middleware.RateLimiter,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the access log can carry it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	if loginLimiter != nil {
		auth.Use(loginLimiter.Middleware())
	}
	{
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)
	}

	// ─── 2. Student Group (JWT) ────────────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/exams", handlers.StudentPortal.ListExams)
		studentAPI.POST("/exams/:exam_id/start", handlers.StudentPortal.StartExam)
		studentAPI.GET("/exams/:exam_id/result", handlers.StudentPortal.GetResult)

		studentAPI.GET("/sessions/:session_id", handlers.StudentPortal.GetSession)
		studentAPI.POST("/sessions/:session_id/advance", handlers.StudentPortal.Advance)
		studentAPI.PUT("/sessions/:session_id/answers", handlers.StudentPortal.SubmitAnswer)
		studentAPI.POST("/sessions/:session_id/submit", handlers.StudentPortal.SubmitSession)
	}

	// ─── 3. WebSocket Group (Student WS Auth) ──────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/sessions/:session_id/stream", handlers.WS.SessionStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/students", handlers.Admin.ListStudents)
		adminAPI.POST("/students", handlers.Admin.CreateStudent)

		adminAPI.GET("/pools", handlers.Pool.ListPools)
		adminAPI.POST("/pools", handlers.Pool.CreatePool)
		adminAPI.POST("/pools/:pool_id/questions", handlers.Pool.AddQuestion)

		adminAPI.GET("/exams", handlers.Exam.ListExams)
		adminAPI.POST("/exams", handlers.Exam.CreateExam)
		adminAPI.GET("/exams/:exam_id", handlers.Exam.GetExam)
		adminAPI.POST("/exams/:exam_id/questions", handlers.Exam.AddQuestion)
		adminAPI.PUT("/exams/:exam_id/random-count", handlers.Exam.SetRandomCount)
		adminAPI.POST("/exams/:exam_id/publish", handlers.Exam.PublishExam)
		adminAPI.GET("/exams/:exam_id/results", handlers.Exam.ListResults)
		adminAPI.GET("/exams/:exam_id/summary", handlers.Exam.Summary)

		adminAPI.PUT("/results/:result_id/comments", handlers.Exam.SetComments)
		adminAPI.POST("/results/:result_id/publish", handlers.Exam.PublishResult)
		adminAPI.POST("/results/:result_id/grades", handlers.Exam.GradeAnswer)
	}

	return router
}
