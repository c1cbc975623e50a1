package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/microlearn-backend/internal/http/response"
)

const (
	serviceName    = "Enhanced Microlearning API"
	serviceVersion = "2.0.0"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

// GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	response.RespondOK(c, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}
