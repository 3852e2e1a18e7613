package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSignals godoc
// @Summary      Live trend signals
// @Description  Returns the trend signal of every basket asset. Flagged demo data is served when live prices are unavailable.
// @Tags         signals
// @Produce      json
// @Param        user_id  query  string  false  "User whose preferences select the basket"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/signals [get]
func (h *Handler) GetSignals(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signals")
	defer span.End()

	prefs, ok := h.loadPreferences(ctx, c)
	if !ok {
		return
	}
	signals := h.signals.SignalsOrDemo(ctx, prefs)

	demo := len(signals) > 0 && signals[0].IsMock
	span.SetAttributes(attribute.Bool("demo", demo))

	c.JSON(http.StatusOK, gin.H{
		"signals":    signals,
		"trend_type": prefs.TrendType,
		"period":     prefs.Period,
		"is_demo":    demo,
	})
}
