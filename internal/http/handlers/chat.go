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

type ChatHandler struct {
	log       *logger.Logger
	responder services.ResponderService
}

func NewChatHandler(log *logger.Logger, responder services.ResponderService) *ChatHandler {
	return &ChatHandler{
		log:       log.With("handler", "ChatHandler"),
		responder: responder,
	}
}

// POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	message := strings.TrimSpace(c.PostForm("message"))
	if message == "" {
		response.RespondError(c, http.StatusUnprocessableEntity, "missing_message", errors.New("message is required"))
		return
	}
	sessionID := strings.TrimSpace(c.PostForm("session_id"))

	var cc services.ChatContext
	if raw := c.PostForm("context"); raw != "" {
		var parsed services.ChatContext
		if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
			h.log.Debug("ignoring malformed chat context", "error", err, "session_id", sessionID)
		} else {
			cc = parsed
		}
	}

	reply := h.responder.Respond(message, cc, sessionID)
	response.RespondOK(c, gin.H{"success": true, "response": reply})
}
