package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"taa-signals/internal/backtest"
	"taa-signals/internal/cache"
	"taa-signals/internal/domain"
	"taa-signals/internal/preferences"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MonthlySource supplies month-end series from the price warehouse.
type MonthlySource interface {
	GetMonthEnds(ctx context.Context, symbol string) (domain.MonthlySeries, error)
}

// BacktestRequest is one simulation. A zero Rebalance uses the one in
// Prefs; zero Years reports the full history.
type BacktestRequest struct {
	Prefs     preferences.Preferences
	Years     int
	Rebalance domain.RebalanceFrequency
}

// BacktestService loads warehouse history and runs the simulator. It never
// returns an error: failures are reported in the result.
type BacktestService struct {
	tracer   trace.Tracer
	logger   *zap.Logger
	source   MonthlySource
	store    cache.Store
	ttl      time.Duration
	riskFree float64
	workers  int
}

func NewBacktestService(
	tracer trace.Tracer,
	logger *zap.Logger,
	source MonthlySource,
	store cache.Store,
	ttl time.Duration,
	riskFree float64,
	workers int,
) *BacktestService {
	if workers <= 0 {
		workers = 1
	}
	return &BacktestService{
		tracer:   tracer,
		logger:   logger.With(zap.String("component", "backtest-service")),
		source:   source,
		store:    store,
		ttl:      ttl,
		riskFree: riskFree,
		workers:  workers,
	}
}

func (r BacktestRequest) params(riskFree float64) backtest.Params {
	freq := r.Rebalance
	if freq == "" {
		freq = r.Prefs.Rebalance
	}
	return backtest.Params{
		TrendType:     r.Prefs.TrendType,
		Period:        r.Prefs.Period,
		Concentration: r.Prefs.Concentration,
		Rebalance:     freq,
		WindowYears:   r.Years,
		RiskFree:      riskFree,
	}
}

func backtestCacheKey(basket []string, benchmark string, p backtest.Params) string {
	return fmt.Sprintf("backtest:%s:%s:%s:%d:%d:%s:%d:%g",
		strings.Join(basket, ","), benchmark, p.TrendType, p.Period, p.Concentration, p.Rebalance, p.WindowYears, p.RiskFree)
}

func (s *BacktestService) Run(ctx context.Context, req BacktestRequest) domain.BacktestResult {
	ctx, span := s.tracer.Start(ctx, "backtest-service.run")
	defer span.End()

	basket := req.Prefs.Symbols()
	benchmark := req.Prefs.Tickers.Benchmark
	params := req.params(s.riskFree)
	span.SetAttributes(
		attribute.String("rebalance", string(params.Rebalance)),
		attribute.Int("years", params.WindowYears),
	)

	key := backtestCacheKey(basket, benchmark, params)
	if s.store != nil {
		var cached domain.BacktestResult
		if ok, err := cache.GetJSON(ctx, s.store, key, &cached); err != nil {
			s.logger.Warn("backtest cache read failed", zap.Error(err))
		} else if ok {
			return cached
		}
	}

	data, err := s.load(ctx, append(append([]string{}, basket...), benchmark))
	if err != nil {
		return s.failed(err)
	}

	result, err := backtest.Run(basket, benchmark, data, params)
	if err != nil {
		return s.failed(err)
	}

	if s.store != nil {
		if err := cache.SetJSON(ctx, s.store, key, result, s.ttl); err != nil {
			s.logger.Warn("backtest cache write failed", zap.Error(err))
		}
	}
	return result
}

func (s *BacktestService) failed(err error) domain.BacktestResult {
	s.logger.Warn("backtest failed", zap.Error(err))
	return domain.BacktestResult{Error: err.Error()}
}

func (s *BacktestService) load(ctx context.Context, symbols []string) (map[string]domain.MonthlySeries, error) {
	var (
		mu   sync.Mutex
		data = make(map[string]domain.MonthlySeries, len(symbols))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, sym := range symbols {
		g.Go(func() error {
			series, err := s.source.GetMonthEnds(gctx, sym)
			if err != nil {
				return fmt.Errorf("%w: load %s: %v", domain.ErrProviderFailure, sym, err)
			}
			mu.Lock()
			data[sym] = series
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}
