package handler

import (
	"errors"
	"net/http"
	"strings"

	"taa-signals/internal/domain"
	"taa-signals/internal/preferences"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetPreferences godoc
// @Summary      Read strategy preferences
// @Description  Returns the canonical preferences of a user, or the defaults for unknown users
// @Tags         preferences
// @Produce      json
// @Param        user_id  query  string  false  "User id"
// @Success      200  {object}  preferences.Preferences
// @Failure      500  {object}  map[string]string
// @Router       /api/preferences [get]
func (h *Handler) GetPreferences(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-preferences")
	defer span.End()

	prefs, ok := h.loadPreferences(ctx, c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// PutPreferences godoc
// @Summary      Store strategy preferences
// @Description  Validates and stores the preferences of a user
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        user_id  query  string                   true  "User id"
// @Param        body     body   preferences.Preferences  true  "Preferences"
// @Success      200  {object}  preferences.Preferences
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/preferences [put]
func (h *Handler) PutPreferences(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.put-preferences")
	defer span.End()

	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	var prefs preferences.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	if err := h.prefs.Save(ctx, userID, prefs); err != nil {
		if errors.Is(err, domain.ErrInvalidPreferences) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("save preferences", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, prefs)
}
