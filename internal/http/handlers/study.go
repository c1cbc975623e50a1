package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/microlearn-backend/internal/http/response"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
	"github.com/yungbote/microlearn-backend/internal/services"
)

type StudyHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewStudyHandler(log *logger.Logger, progress services.ProgressService) *StudyHandler {
	return &StudyHandler{
		log:      log.With("handler", "StudyHandler"),
		progress: progress,
	}
}

// POST /study-session
func (h *StudyHandler) Start(c *gin.Context) {
	sessionID := strings.TrimSpace(c.PostForm("session_id"))
	if sessionID == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "missing_session_id", errors.New("session_id is required"))
		return
	}
	duration, ok := formInt(c, "duration", services.DefaultStudyDuration)
	if !ok {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_duration", errors.New("duration must be an integer"))
		return
	}

	session, err := h.progress.StartStudySession(sessionID, duration)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success": true,
		"session": session,
		"message": fmt.Sprintf("Study session started for %d minutes", session.PlannedDuration),
	})
}

// POST /study-session/complete
func (h *StudyHandler) Complete(c *gin.Context) {
	sessionID := strings.TrimSpace(c.PostForm("session_id"))
	if sessionID == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "missing_session_id", errors.New("session_id is required"))
		return
	}
	actual, ok := formInt(c, "actual_duration", 0)
	if !ok {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_actual_duration", errors.New("actual_duration must be an integer"))
		return
	}

	total, err := h.progress.CompleteStudySession(sessionID, actual)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":          true,
		"total_study_time": total,
		"message":          fmt.Sprintf("Study session completed: %d minutes", actual),
	})
}

func formInt(c *gin.Context, field string, def int) (int, bool) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
