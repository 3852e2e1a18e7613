package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"taa-signals/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tiingoBaseURL = "https://api.tiingo.com"

// TiingoProvider fetches split and dividend adjusted end-of-day history.
// Several API keys may be configured; a key that is rate limited is skipped
// in favour of the next one.
type TiingoProvider struct {
	client  *http.Client
	baseURL string
	keys    []string
	tracer  trace.Tracer
	limiter *RateLimiter
	logger  *zap.Logger
}

func NewTiingoProvider(tracer trace.Tracer, logger *zap.Logger, keys []string, perMinute int) *TiingoProvider {
	return &TiingoProvider{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: tiingoBaseURL,
		keys:    keys,
		tracer:  tracer,
		limiter: PerMinute(perMinute),
		logger:  logger.With(zap.String("provider", "tiingo")),
	}
}

type tiingoPrice struct {
	Date     string  `json:"date"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
	Volume   float64 `json:"volume"`
}

// FetchDaily returns daily points for symbol between from and to inclusive,
// oldest first.
func (p *TiingoProvider) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	ctx, span := p.tracer.Start(ctx, "tiingo.fetch-daily")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol))

	if len(p.keys) == 0 {
		return nil, fmt.Errorf("%w: no tiingo api keys configured", domain.ErrProviderFailure)
	}

	var lastErr error
	for i, key := range p.keys {
		q := url.Values{}
		q.Set("startDate", from.Format("2006-01-02"))
		q.Set("endDate", to.Format("2006-01-02"))
		q.Set("token", key)
		endpoint := fmt.Sprintf("%s/tiingo/daily/%s/prices?%s", p.baseURL, url.PathEscape(strings.ToLower(symbol)), q.Encode())

		var raw []tiingoPrice
		err := getJSON(ctx, p.client, p.limiter, "tiingo", endpoint, &raw)
		if err == nil {
			return toPricePoints(raw)
		}

		var status *StatusError
		if errors.As(err, &status) && status.Code == http.StatusTooManyRequests {
			p.logger.Warn("api key rate limited, rotating", zap.Int("key", i+1), zap.String("symbol", symbol))
		}
		lastErr = err
	}

	span.RecordError(lastErr)
	return nil, fmt.Errorf("%w: fetch %s: %v", domain.ErrProviderFailure, symbol, lastErr)
}

func toPricePoints(raw []tiingoPrice) ([]domain.PricePoint, error) {
	out := make([]domain.PricePoint, 0, len(raw))
	for _, r := range raw {
		d, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: parse date %q: %v", domain.ErrProviderFailure, r.Date, err)
		}
		out = append(out, domain.PricePoint{
			Date:     d.UTC(),
			AdjClose: r.AdjClose,
			Close:    r.Close,
			Volume:   r.Volume,
		})
	}
	return out, nil
}
