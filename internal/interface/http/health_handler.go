package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-movie-catalog/pkg/response"
)

const readinessTimeout = 2 * time.Second

// Pinger is implemented by every storage backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Storage Pinger
}

func NewHealthHandler(storage Pinger) *HealthHandler {
	return &HealthHandler{Storage: storage}
}

func (h *HealthHandler) Live(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "alive", nil)
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	if err := h.Storage.Ping(ctx); err != nil {
		response.Error(c, http.StatusServiceUnavailable, "storage unavailable", err.Error())
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ready"}, "ready", nil)
}
