package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"taa-signals/internal/domain"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	yahooBaseURL   = "https://query1.finance.yahoo.com"
	yahooBulkLimit = 5
)

// YahooProvider reads near real-time quotes from the public chart API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	logger  *zap.Logger
}

func NewYahooProvider(tracer trace.Tracer, logger *zap.Logger) *YahooProvider {
	return &YahooProvider{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: yahooBaseURL,
		tracer:  tracer,
		logger:  logger.With(zap.String("provider", "yahoo")),
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

// SpotPrice returns the latest traded price of symbol.
func (p *YahooProvider) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	ctx, span := p.tracer.Start(ctx, "yahoo.spot-price")
	defer span.End()

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", p.baseURL, url.PathEscape(symbol))
	var raw yahooChart
	if err := getJSON(ctx, p.client, nil, "yahoo", endpoint, &raw); err != nil {
		return 0, fmt.Errorf("%w: quote %s: %v", domain.ErrProviderFailure, symbol, err)
	}
	if len(raw.Chart.Result) == 0 || raw.Chart.Result[0].Meta.RegularMarketPrice <= 0 {
		return 0, fmt.Errorf("%w: no quote for %s", domain.ErrProviderFailure, symbol)
	}
	return raw.Chart.Result[0].Meta.RegularMarketPrice, nil
}

// SpotPrices quotes every symbol with bounded concurrency. Symbols that
// fail are left out of the result.
func (p *YahooProvider) SpotPrices(ctx context.Context, symbols []string) map[string]float64 {
	var (
		mu  sync.Mutex
		out = make(map[string]float64, len(symbols))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(yahooBulkLimit)
	for _, sym := range symbols {
		g.Go(func() error {
			price, err := p.SpotPrice(gctx, sym)
			if err != nil {
				p.logger.Warn("spot price unavailable", zap.String("symbol", sym), zap.Error(err))
				return nil
			}
			mu.Lock()
			out[sym] = price
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}
