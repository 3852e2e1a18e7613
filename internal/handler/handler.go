package handler

import (
	"context"
	"net/http"

	"taa-signals/internal/domain"
	"taa-signals/internal/preferences"
	"taa-signals/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SignalSource interface {
	SignalsOrDemo(ctx context.Context, prefs preferences.Preferences) []domain.TrendSignal
}

type BacktestRunner interface {
	Run(ctx context.Context, req service.BacktestRequest) domain.BacktestResult
}

type PreferenceManager interface {
	Load(ctx context.Context, userID string) (preferences.Preferences, error)
	Save(ctx context.Context, userID string, prefs preferences.Preferences) error
}

type ETFLister interface {
	List(ctx context.Context) ([]service.ETFStatus, error)
	Universe() []string
}

type AllocationPlanner interface {
	Plan(ctx context.Context, signals []domain.TrendSignal, req service.AllocationRequest) (domain.AllocationPlan, error)
}

type IngestRunner interface {
	Run(ctx context.Context, universe []string) service.IngestReport
}

type Handler struct {
	tracer       trace.Tracer
	logger       *zap.Logger
	signals      SignalSource
	backtests    BacktestRunner
	prefs        PreferenceManager
	etfs         ETFLister
	allocations  AllocationPlanner
	ingestRunner IngestRunner
}

func New(
	tracer trace.Tracer,
	logger *zap.Logger,
	signals SignalSource,
	backtests BacktestRunner,
	prefs PreferenceManager,
	etfs ETFLister,
	allocations AllocationPlanner,
) *Handler {
	return &Handler{
		tracer:      tracer,
		logger:      logger.With(zap.String("component", "handler")),
		signals:     signals,
		backtests:   backtests,
		prefs:       prefs,
		etfs:        etfs,
		allocations: allocations,
	}
}

// SetIngestRunner enables the manual ingestion endpoint.
func (h *Handler) SetIngestRunner(r IngestRunner) {
	h.ingestRunner = r
}

// RegisterRoutes mounts the API. Mutating routes require apiKey when it is
// set.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.Use(RequestID())
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/signals", h.GetSignals)
	api.GET("/backtest", h.GetBacktest)
	api.GET("/preferences", h.GetPreferences)
	api.GET("/etfs", h.ListETFs)
	api.POST("/allocation", h.PlanAllocation)

	protected := api.Group("", APIKeyAuth(apiKey))
	protected.PUT("/preferences", h.PutPreferences)
	protected.POST("/ingest/run", h.TriggerIngestRun)
}

// loadPreferences resolves the user_id query parameter into preferences.
func (h *Handler) loadPreferences(ctx context.Context, c *gin.Context) (preferences.Preferences, bool) {
	prefs, err := h.prefs.Load(ctx, c.Query("user_id"))
	if err != nil {
		h.logger.Error("load preferences", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return preferences.Preferences{}, false
	}
	return prefs, true
}
