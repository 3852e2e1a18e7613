package handler

import (
	"context"

	"taa-signals/internal/domain"
	"taa-signals/internal/preferences"
	"taa-signals/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type signalStub struct {
	signals  []domain.TrendSignal
	lastPref preferences.Preferences
}

func (s *signalStub) SignalsOrDemo(ctx context.Context, prefs preferences.Preferences) []domain.TrendSignal {
	s.lastPref = prefs
	return s.signals
}

type backtestStub struct {
	result  domain.BacktestResult
	lastReq service.BacktestRequest
	calls   int
}

func (b *backtestStub) Run(ctx context.Context, req service.BacktestRequest) domain.BacktestResult {
	b.calls++
	b.lastReq = req
	return b.result
}

type prefStub struct {
	prefs   preferences.Preferences
	loadErr error
	saveErr error
	saved   map[string]preferences.Preferences
}

func (p *prefStub) Load(ctx context.Context, userID string) (preferences.Preferences, error) {
	if p.loadErr != nil {
		return preferences.Preferences{}, p.loadErr
	}
	return p.prefs, nil
}

func (p *prefStub) Save(ctx context.Context, userID string, prefs preferences.Preferences) error {
	if p.saveErr != nil {
		return p.saveErr
	}
	if err := prefs.Validate(); err != nil {
		return err
	}
	if p.saved == nil {
		p.saved = make(map[string]preferences.Preferences)
	}
	p.saved[userID] = prefs
	return nil
}

type etfStub struct {
	etfs     []service.ETFStatus
	err      error
	universe []string
}

func (e *etfStub) List(ctx context.Context) ([]service.ETFStatus, error) { return e.etfs, e.err }
func (e *etfStub) Universe() []string { return e.universe }

type allocationStub struct {
	plan    domain.AllocationPlan
	err     error
	lastReq service.AllocationRequest
}

func (a *allocationStub) Plan(ctx context.Context, signals []domain.TrendSignal, req service.AllocationRequest) (domain.AllocationPlan, error) {
	a.lastReq = req
	return a.plan, a.err
}

type ingestStub struct {
	report   service.IngestReport
	universe []string
}

func (i *ingestStub) Run(ctx context.Context, universe []string) service.IngestReport {
	i.universe = universe
	return i.report
}

type testDeps struct {
	signals   *signalStub
	backtests *backtestStub
	prefs     *prefStub
	etfs      *etfStub
	alloc     *allocationStub
}

func newTestDeps() testDeps {
	return testDeps{
		signals:   &signalStub{},
		backtests: &backtestStub{},
		prefs:     &prefStub{prefs: preferences.Default()},
		etfs:      &etfStub{universe: []string{"VTI", "IEF"}},
		alloc:     &allocationStub{},
	}
}

func (d testDeps) handler() *Handler {
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	return New(tracer, zap.NewNop(), d.signals, d.backtests, d.prefs, d.etfs, d.alloc)
}

func newTestHandler() *Handler {
	return newTestDeps().handler()
}

func newTestRouter(h *Handler, apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r, apiKey)
	return r
}
