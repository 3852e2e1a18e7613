package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListETFs godoc
// @Summary      ETF catalogue
// @Description  Lists the ingestion universe with the number of stored daily rows per symbol
// @Tags         etfs
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/etfs [get]
func (h *Handler) ListETFs(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-etfs")
	defer span.End()

	etfs, err := h.etfs.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"etfs": etfs})
}
