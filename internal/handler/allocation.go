package handler

import (
	"net/http"

	"taa-signals/internal/service"

	"github.com/gin-gonic/gin"
)

type allocationBody struct {
	UserID        string             `json:"user_id"`
	Capital       float64            `json:"capital" binding:"gte=0"`
	Concentration int                `json:"concentration"`
	Holdings      map[string]float64 `json:"holdings"`
	WithQuotes    bool               `json:"with_quotes"`
}

// PlanAllocation godoc
// @Summary      Size an allocation
// @Description  Splits capital equally across the top-ranked Risk-On assets and keeps the rest in cash
// @Tags         allocation
// @Accept       json
// @Produce      json
// @Param        body  body  allocationBody  true  "Capital and optional holdings"
// @Success      200  {object}  domain.AllocationPlan
// @Failure      400  {object}  map[string]string
// @Router       /api/allocation [post]
func (h *Handler) PlanAllocation(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.plan-allocation")
	defer span.End()

	var body allocationBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	prefs, err := h.prefs.Load(ctx, body.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if body.Concentration == 0 {
		body.Concentration = prefs.Concentration
	}

	signals := h.signals.SignalsOrDemo(ctx, prefs)
	plan, err := h.allocations.Plan(ctx, signals, service.AllocationRequest{
		Capital:       body.Capital,
		Concentration: body.Concentration,
		Holdings:      body.Holdings,
		WithQuotes:    body.WithQuotes,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan)
}
