package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/microlearn-backend/internal/http/response"
	"github.com/yungbote/microlearn-backend/internal/platform/logger"
	"github.com/yungbote/microlearn-backend/internal/services"
)

type PreferencesHandler struct {
	log      *logger.Logger
	progress services.ProgressService
}

func NewPreferencesHandler(log *logger.Logger, progress services.ProgressService) *PreferencesHandler {
	return &PreferencesHandler{
		log:      log.With("handler", "PreferencesHandler"),
		progress: progress,
	}
}

// POST /preferences
func (h *PreferencesHandler) Save(c *gin.Context) {
	sessionID := strings.TrimSpace(c.PostForm("session_id"))
	rawPrefs := strings.TrimSpace(c.PostForm("preferences"))
	if sessionID == "" || rawPrefs == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "missing_fields", errors.New("session_id and preferences are required"))
		return
	}

	var prefs map[string]any
	if err := json.Unmarshal([]byte(rawPrefs), &prefs); err != nil {
		response.RespondError(c, http.StatusUnprocessableEntity, "invalid_preferences", err)
		return
	}

	if err := h.progress.SavePreferences(sessionID, prefs); err != nil {
		response.RespondAppError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "message": "Preferences saved successfully"})
}

// GET /preferences/:session_id
func (h *PreferencesHandler) Get(c *gin.Context) {
	prefs, err := h.progress.GetPreferences(c.Param("session_id"))
	if err != nil {
		response.RespondAppError(c, err)
		return
	}
	// Unknown sessions answer with a null blob rather than 404 so clients can
	// probe before creating a session.
	response.RespondOK(c, gin.H{"success": true, "preferences": prefs})
}
