package service

import (
	"context"
	"fmt"
	"math"

	"taa-signals/internal/domain"
	"taa-signals/internal/signal"
	"taa-signals/internal/ta"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SpotQuoter supplies latest traded prices. Missing symbols are simply
// absent from the result.
type SpotQuoter interface {
	SpotPrices(ctx context.Context, symbols []string) map[string]float64
}

// AllocationRequest sizes a plan. Holdings maps symbols to the current
// market value of the position and is only used for drift.
type AllocationRequest struct {
	Capital       float64            `json:"capital"`
	Concentration int                `json:"concentration"`
	Holdings      map[string]float64 `json:"holdings,omitempty"`
	WithQuotes    bool               `json:"with_quotes,omitempty"`
}

type AllocationService struct {
	tracer trace.Tracer
	logger *zap.Logger
	quoter SpotQuoter
}

func NewAllocationService(tracer trace.Tracer, logger *zap.Logger, quoter SpotQuoter) *AllocationService {
	return &AllocationService{
		tracer: tracer,
		logger: logger.With(zap.String("component", "allocation-service")),
		quoter: quoter,
	}
}

// Plan gives every top-ranked Risk-On asset an equal share of capital and
// leaves the remaining slots in cash.
func (s *AllocationService) Plan(ctx context.Context, signals []domain.TrendSignal, req AllocationRequest) (domain.AllocationPlan, error) {
	ctx, span := s.tracer.Start(ctx, "allocation-service.plan")
	defer span.End()
	span.SetAttributes(attribute.Int("concentration", req.Concentration))

	if req.Capital < 0 || math.IsNaN(req.Capital) {
		return domain.AllocationPlan{}, fmt.Errorf("capital must be non-negative, got %v", req.Capital)
	}
	if req.Concentration < 1 {
		return domain.AllocationPlan{}, fmt.Errorf("concentration must be positive, got %d", req.Concentration)
	}

	ranked := signal.Rank(signal.Candidates(signals), req.Concentration)
	selected := make(map[string]domain.RankedAsset, len(ranked))
	for _, r := range ranked {
		selected[r.Symbol] = r
	}

	var quotes map[string]float64
	if req.WithQuotes && s.quoter != nil && len(selected) > 0 {
		symbols := make([]string, 0, len(ranked))
		for _, r := range ranked {
			symbols = append(symbols, r.Symbol)
		}
		quotes = s.quoter.SpotPrices(ctx, symbols)
	}

	slot := ta.EqualWeightAllocation(req.Capital, req.Concentration)
	plan := domain.AllocationPlan{
		Capital:       req.Capital,
		Concentration: req.Concentration,
		Legs:          make([]domain.AllocationLeg, 0, len(signals)),
	}
	for _, sig := range signals {
		leg := domain.AllocationLeg{
			Symbol: sig.Symbol,
			Name:   sig.Name,
			Status: sig.Status,
			Action: domain.AllocHoldCash,
			Buffer: sig.Buffer,
			Price:  sig.Price,
		}
		if q, ok := quotes[sig.Symbol]; ok && q > 0 {
			leg.Price = q
		}
		if r, ok := selected[sig.Symbol]; ok {
			leg.Action = domain.AllocBuy
			leg.Rank = r.Rank
			leg.TargetWeight = r.TargetWeight
			leg.TargetValue = slot
			if leg.Price > 0 {
				leg.Shares = math.Round(slot/leg.Price*100) / 100
			}
			plan.Invested += slot
		}
		if cur, ok := req.Holdings[sig.Symbol]; ok {
			leg.CurrentValue = cur
			leg.Drift = ta.RebalanceDrift(cur, leg.TargetValue)
		}
		plan.Legs = append(plan.Legs, leg)
	}
	plan.Cash = req.Capital - plan.Invested

	s.logger.Debug("allocation planned",
		zap.Int("selected", len(ranked)),
		zap.Float64("invested", plan.Invested),
		zap.Float64("cash", plan.Cash),
	)
	return plan, nil
}
