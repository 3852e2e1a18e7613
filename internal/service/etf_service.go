package service

import (
	"context"
	"sort"

	"taa-signals/internal/catalog"

	"go.opentelemetry.io/otel/trace"
)

// RowCounter reports how many warehouse rows each symbol has.
type RowCounter interface {
	CountBySymbol(ctx context.Context) (map[string]int64, error)
}

// ETFStatus is a catalogue entry joined with its warehouse coverage.
type ETFStatus struct {
	catalog.ETF
	Rows int64 `json:"rows"`
}

type ETFService struct {
	tracer  trace.Tracer
	catalog *catalog.Catalog
	counter RowCounter
}

func NewETFService(tracer trace.Tracer, cat *catalog.Catalog, counter RowCounter) *ETFService {
	return &ETFService{tracer: tracer, catalog: cat, counter: counter}
}

// Universe lists the ingestion universe.
func (s *ETFService) Universe() []string {
	return s.catalog.Symbols()
}

// List returns every catalogue entry with its row count, then any stored
// symbol the catalogue does not know.
func (s *ETFService) List(ctx context.Context) ([]ETFStatus, error) {
	ctx, span := s.tracer.Start(ctx, "etf-service.list")
	defer span.End()

	counts := map[string]int64{}
	if s.counter != nil {
		var err error
		if counts, err = s.counter.CountBySymbol(ctx); err != nil {
			return nil, err
		}
	}

	all := s.catalog.All()
	out := make([]ETFStatus, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, e := range all {
		out = append(out, ETFStatus{ETF: e, Rows: counts[e.Symbol]})
		seen[e.Symbol] = true
	}
	var extra []string
	for sym := range counts {
		if !seen[sym] {
			extra = append(extra, sym)
		}
	}
	sort.Strings(extra)
	for _, sym := range extra {
		e, _ := s.catalog.Lookup(sym)
		out = append(out, ETFStatus{ETF: e, Rows: counts[sym]})
	}
	return out, nil
}
