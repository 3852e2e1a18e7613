package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type ingestBody struct {
	Symbols []string `json:"symbols"`
}

// TriggerIngestRun godoc
// @Summary      Run price ingestion manually
// @Description  Fetches daily prices into the warehouse for the given symbols, or the whole catalogue when none are given
// @Tags         ingest
// @Accept       json
// @Produce      json
// @Param        body  body  ingestBody  false  "Symbols to ingest"
// @Success      200  {object}  service.IngestReport
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/ingest/run [post]
func (h *Handler) TriggerIngestRun(c *gin.Context) {
	if h.ingestRunner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingest service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-ingest-run")
	defer span.End()

	var body ingestBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
			return
		}
	}

	universe := make([]string, 0, len(body.Symbols))
	for _, s := range body.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			universe = append(universe, s)
		}
	}
	if len(universe) == 0 {
		universe = h.etfs.Universe()
	}
	span.SetAttributes(attribute.Int("symbols", len(universe)))

	c.JSON(http.StatusOK, h.ingestRunner.Run(ctx, universe))
}
