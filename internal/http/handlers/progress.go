package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/microlearn-backend/internal/http/response"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
	"github.com/yungbote/microlearn-backend/internal/services"
)

type ProgressHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:      log.With("handler", "ProgressHandler"),
		progress: progress,
	}
}

// POST /update-progress
func (h *ProgressHandler) UpdateProgress(c *gin.Context) {
	sessionID := strings.TrimSpace(c.PostForm("session_id"))
	action := strings.TrimSpace(c.PostForm("action"))
	if sessionID == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "missing_session_id", errors.New("session_id is required"))
		return
	}
	if action == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "missing_action", errors.New("action is required"))
		return
	}

	var data map[string]any
	if raw := c.PostForm("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			// Unparseable payloads ride along under a single key instead of
			// failing the update.
			data = map[string]any{"data": raw}
		}
	}

	rec, err := h.progress.UpdateProgress(sessionID, action, data)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "progress": rec})
}

// GET /progress/:session_id
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	rec, err := h.progress.GetProgress(c.Param("session_id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": rec})
}

// POST /flashcard-review
func (h *ProgressHandler) FlashcardReview(c *gin.Context) {
	sessionID := strings.TrimSpace(c.PostForm("session_id"))
	cardID := strings.TrimSpace(c.PostForm("card_id"))
	correctRaw := strings.TrimSpace(c.PostForm("correct"))
	if sessionID == "" || cardID == "" || correctRaw == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "missing_fields", errors.New("session_id, card_id and correct are required"))
		return
	}
	correct := strings.EqualFold(correctRaw, "true")

	rec, err := h.progress.ReviewFlashcard(sessionID, cardID, correct)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "progress": rec})
}

// POST /quiz-complete
func (h *ProgressHandler) QuizComplete(c *gin.Context) {
	sessionID := strings.TrimSpace(c.PostForm("session_id"))
	quizID := strings.TrimSpace(c.PostForm("quiz_id"))
	scoreRaw := strings.TrimSpace(c.PostForm("score"))
	if sessionID == "" || quizID == "" || scoreRaw == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "missing_fields", errors.New("session_id, quiz_id and score are required"))
		return
	}
	score, err := strconv.ParseFloat(scoreRaw, 64)
	if err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_score", err)
		return
	}

	rec, err := h.progress.CompleteQuiz(sessionID, quizID, score)
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "progress": rec})
}

// GET /analytics/:session_id
func (h *ProgressHandler) Analytics(c *gin.Context) {
	summary, err := h.progress.Analytics(c.Param("session_id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "analytics": summary})
}
