package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taa-signals/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// overlapDays is re-fetched before the latest stored date so late
// adjustments from the provider are picked up.
const overlapDays = 7

// PriceStore is the warehouse side of ingestion.
type PriceStore interface {
	UpsertPrices(ctx context.Context, symbol string, points []domain.PricePoint) error
	LatestDate(ctx context.Context, symbol string) (time.Time, bool, error)
}

// IngestReport summarises one ingestion batch.
type IngestReport struct {
	Symbols int               `json:"symbols"`
	Rows    int               `json:"rows"`
	Failed  map[string]string `json:"failed,omitempty"`
}

type IngestService struct {
	tracer  trace.Tracer
	logger  *zap.Logger
	source  DailySource
	store   PriceStore
	start   time.Time
	workers int
	now     func() time.Time
}

func NewIngestService(tracer trace.Tracer, logger *zap.Logger, source DailySource, store PriceStore, start time.Time, workers int) *IngestService {
	if workers <= 0 {
		workers = 1
	}
	return &IngestService{
		tracer:  tracer,
		logger:  logger.With(zap.String("component", "ingest-service")),
		source:  source,
		store:   store,
		start:   start,
		workers: workers,
		now:     time.Now,
	}
}

// Run fetches every symbol of universe into the warehouse. Symbols that
// already have rows are fetched from shortly before their latest date. A
// failing symbol is recorded in the report and never aborts the batch.
func (s *IngestService) Run(ctx context.Context, universe []string) IngestReport {
	ctx, span := s.tracer.Start(ctx, "ingest-service.run")
	defer span.End()
	span.SetAttributes(attribute.Int("symbols", len(universe)))

	var (
		mu     sync.Mutex
		report = IngestReport{Symbols: len(universe), Failed: make(map[string]string)}
	)
	to := s.now().UTC()

	var g errgroup.Group
	g.SetLimit(s.workers)
	for _, sym := range universe {
		g.Go(func() error {
			n, err := s.ingest(ctx, sym, to)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed[sym] = err.Error()
				s.logger.Warn("ingest failed", zap.String("symbol", sym), zap.Error(err))
				return nil
			}
			report.Rows += n
			return nil
		})
	}
	_ = g.Wait()

	if len(report.Failed) == 0 {
		report.Failed = nil
	}
	s.logger.Info("ingest finished",
		zap.Int("symbols", report.Symbols),
		zap.Int("rows", report.Rows),
		zap.Int("failed", len(report.Failed)),
	)
	return report
}

func (s *IngestService) ingest(ctx context.Context, symbol string, to time.Time) (int, error) {
	from := s.start
	latest, ok, err := s.store.LatestDate(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("latest date: %w", err)
	}
	if ok {
		from = latest.AddDate(0, 0, -overlapDays)
	}

	points, err := s.source.FetchDaily(ctx, symbol, from, to)
	if err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, nil
	}
	if err := s.store.UpsertPrices(ctx, symbol, points); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return len(points), nil
}
