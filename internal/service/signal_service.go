package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taa-signals/internal/cache"
	"taa-signals/internal/domain"
	"taa-signals/internal/preferences"
	"taa-signals/internal/signal"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DailySource supplies chronological daily prices for a symbol.
type DailySource interface {
	FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error)
}

// SignalService computes the live trend signal of every basket asset.
type SignalService struct {
	tracer  trace.Tracer
	logger  *zap.Logger
	source  DailySource
	store   cache.Store
	ttl     time.Duration
	workers int
	now     func() time.Time
}

func NewSignalService(
	tracer trace.Tracer,
	logger *zap.Logger,
	source DailySource,
	store cache.Store,
	ttl time.Duration,
	workers int,
) *SignalService {
	if workers <= 0 {
		workers = 1
	}
	return &SignalService{
		tracer:  tracer,
		logger:  logger.With(zap.String("component", "signal-service")),
		source:  source,
		store:   store,
		ttl:     ttl,
		workers: workers,
		now:     time.Now,
	}
}

// lookbackMonths covers the trend window, the reported history and a margin
// for partial months at either end.
func lookbackMonths(period int) int {
	return period + signal.DefaultHistoryMonths + 4
}

func signalCacheKey(p preferences.Preferences) string {
	return fmt.Sprintf("signals:%s:%d:%s", p.TrendType, p.Period, strings.Join(p.Symbols(), ","))
}

// Signals fetches and computes every basket asset concurrently. A failure
// for one symbol does not stop the others; all failures are returned
// joined.
func (s *SignalService) Signals(ctx context.Context, prefs preferences.Preferences) ([]domain.TrendSignal, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.signals")
	defer span.End()

	key := signalCacheKey(prefs)
	if s.store != nil {
		var cached []domain.TrendSignal
		ok, err := cache.GetJSON(ctx, s.store, key, &cached)
		if err != nil {
			s.logger.Warn("signal cache read failed", zap.Error(err))
		}
		if ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return cached, nil
		}
	}

	basket := prefs.Basket()
	now := s.now().UTC()
	from := now.AddDate(0, -lookbackMonths(prefs.Period), 0)
	opts := signal.Options{TrendType: prefs.TrendType, Period: prefs.Period, AsOf: now}

	results := make([]domain.TrendSignal, len(basket))
	errs := make([]error, len(basket))

	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, asset := range basket {
		g.Go(func() error {
			points, err := s.source.FetchDaily(ctx, asset.Symbol, from, now)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", asset.Symbol, err)
				return nil
			}
			sig, err := signal.Build(asset, points, opts)
			if err != nil {
				errs[i] = err
				return nil
			}
			results[i] = sig
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		return nil, err
	}

	if s.store != nil {
		if err := cache.SetJSON(ctx, s.store, key, results, s.ttl); err != nil {
			s.logger.Warn("signal cache write failed", zap.Error(err))
		}
	}
	return results, nil
}

// SignalsOrDemo never fails: when live signals cannot be computed it
// returns the flagged placeholder dataset.
func (s *SignalService) SignalsOrDemo(ctx context.Context, prefs preferences.Preferences) []domain.TrendSignal {
	signals, err := s.Signals(ctx, prefs)
	if err != nil {
		s.logger.Warn("live signals unavailable, serving demo data", zap.Error(err))
		return signal.DemoSignals(domain.DemoBasket)
	}
	return signals
}
