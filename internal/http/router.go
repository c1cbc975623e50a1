package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/microlearn-backend/internal/http/handlers"
	httpMW "github.com/yungbote/microlearn-backend/internal/http/middleware"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	ProcessHandler     *httpH.ProcessHandler
	ProgressHandler    *httpH.ProgressHandler
	StudyHandler       *httpH.StudyHandler
	ChatHandler        *httpH.ChatHandler
	PreferencesHandler *httpH.PreferencesHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(otelgin.Middleware("microlearn-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}

	// Content pipeline
	if cfg.ProcessHandler != nil {
		r.POST("/process", cfg.ProcessHandler.Process)
	}

	// Progress
	if cfg.ProgressHandler != nil {
		r.POST("/update-progress", cfg.ProgressHandler.UpdateProgress)
		r.GET("/progress/:session_id", cfg.ProgressHandler.GetProgress)
		r.POST("/flashcard-review", cfg.ProgressHandler.FlashcardReview)
		r.POST("/quiz-complete", cfg.ProgressHandler.QuizComplete)
		r.GET("/analytics/:session_id", cfg.ProgressHandler.Analytics)
	}

	// Study sessions
	if cfg.StudyHandler != nil {
		r.POST("/study-session", cfg.StudyHandler.Start)
		r.POST("/study-session/complete", cfg.StudyHandler.Complete)
	}

	// Chat
	if cfg.ChatHandler != nil {
		r.POST("/chat", cfg.ChatHandler.Chat)
	}

	// Preferences
	if cfg.PreferencesHandler != nil {
		r.POST("/preferences", cfg.PreferencesHandler.Save)
		r.GET("/preferences/:session_id", cfg.PreferencesHandler.Get)
	}

	return r
}
