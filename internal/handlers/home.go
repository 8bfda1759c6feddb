package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HomeHandler struct {
	ping func(context.Context) error
}

// NewHomeHandler takes the store probe used by Health.
func NewHomeHandler(ping func(context.Context) error) *HomeHandler {
	return &HomeHandler{ping: ping}
}

func (h *HomeHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "welcome to my api"})
}

func (h *HomeHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
