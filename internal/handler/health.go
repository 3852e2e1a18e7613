package handler

import (
	"net/http"
	"time"

	"taa-signals/pkg/tracing"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Reports liveness and the server clock in UTC
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": tracing.ServiceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
