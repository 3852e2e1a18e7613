package handler

import (
	"net/http"
	"strconv"

	"taa-signals/internal/domain"
	"taa-signals/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

var supportedWindows = []int{1, 3, 10}

// GetBacktest godoc
// @Summary      Simulate the strategy
// @Description  Runs the allocation simulator over warehouse history. Engine failures are reported in the error field with status 200.
// @Tags         backtest
// @Produce      json
// @Param        user_id    query  string  false  "User whose preferences configure the run"
// @Param        years      query  int     false  "Trailing window in years (1, 3 or 10). Omit for full history"
// @Param        rebalance  query  string  false  "Monthly or Yearly, overrides the stored preference"
// @Success      200  {object}  domain.BacktestResult
// @Failure      400  {object}  map[string]string
// @Router       /api/backtest [get]
func (h *Handler) GetBacktest(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-backtest")
	defer span.End()

	req := service.BacktestRequest{}
	if y := c.Query("years"); y != "" {
		n, err := strconv.Atoi(y)
		if err != nil || !isSupportedWindow(n) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":           "unsupported years: " + y,
				"supported_years": supportedWindows,
			})
			return
		}
		req.Years = n
	}
	if r := c.Query("rebalance"); r != "" {
		freq := domain.RebalanceFrequency(r)
		if !freq.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported rebalance: " + r})
			return
		}
		req.Rebalance = freq
	}
	span.SetAttributes(attribute.Int("years", req.Years))

	prefs, ok := h.loadPreferences(ctx, c)
	if !ok {
		return
	}
	req.Prefs = prefs

	c.JSON(http.StatusOK, h.backtests.Run(ctx, req))
}

func isSupportedWindow(n int) bool {
	for _, w := range supportedWindows {
		if n == w {
			return true
		}
	}
	return false
}
