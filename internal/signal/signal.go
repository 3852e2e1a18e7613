// Package signal turns month-end series into live trend signals and ranks
// basket assets by momentum.
package signal

import (
	"fmt"
	"time"

	"taa-signals/internal/domain"
	"taa-signals/internal/series"
	"taa-signals/internal/ta"
)

// DefaultHistoryMonths is how many trailing months a signal reports.
const DefaultHistoryMonths = 12

// Options parameterize signal construction.
type Options struct {
	TrendType     domain.TrendType
	Period        int
	HistoryMonths int
	AsOf          time.Time
}

func (o Options) historyMonths() int {
	if o.HistoryMonths <= 0 {
		return DefaultHistoryMonths
	}
	return o.HistoryMonths
}

// Build computes the trend signal of one asset from its daily history.
// The trend is taken over every month-end from the first available month
// so that EMA windows stay consistent between calls.
func Build(asset domain.Asset, daily []domain.PricePoint, opts Options) (domain.TrendSignal, error) {
	months := series.MonthEnds(daily)
	if err := series.RequireMonths(asset.Symbol, months, opts.Period+1); err != nil {
		return domain.TrendSignal{}, err
	}
	prices := months.Prices()
	n := len(prices)

	history := make([]domain.SignalHistory, 0, opts.historyMonths())
	for i := n - opts.historyMonths(); i < n; i++ {
		// The previous month needs a defined trend of its own.
		if i < opts.Period {
			continue
		}
		price := prices[i]
		trend := ta.MovingAverage(prices[:i+1], opts.TrendType, opts.Period)
		prevTrend := ta.MovingAverage(prices[:i], opts.TrendType, opts.Period)
		history = append(history, domain.SignalHistory{
			Month:  domain.KeyOf(months[i].Date).Label(),
			Price:  price,
			Trend:  trend,
			Status: ta.StatusOf(price, trend),
			Action: ta.Action(price, trend, prices[i-1], prevTrend),
		})
	}

	price := prices[n-1]
	trend := ta.MovingAverage(prices, opts.TrendType, opts.Period)
	buffer := ta.SafetyBuffer(price, trend)

	return domain.TrendSignal{
		Symbol:      asset.Symbol,
		Name:        asset.Name,
		Price:       price,
		Trend:       trend,
		Buffer:      buffer,
		Status:      ta.StatusOf(price, trend),
		LastUpdated: opts.AsOf.UTC().Format(time.RFC3339),
		History:     history,
		Audit: domain.CalculationAudit{
			Price:   price,
			Trend:   trend,
			Buffer:  buffer,
			Formula: fmt.Sprintf("(%.2f - %.2f) / %.2f * 100", price, trend, trend),
		},
	}, nil
}

// DemoSignals is the clearly flagged placeholder dataset served when live
// data cannot be computed.
func DemoSignals(assets []domain.Asset) []domain.TrendSignal {
	out := make([]domain.TrendSignal, 0, len(assets))
	for _, a := range assets {
		history := make([]domain.SignalHistory, DefaultHistoryMonths)
		for i := range history {
			history[i] = domain.SignalHistory{
				Month:  "Jan 24",
				Price:  100,
				Trend:  95,
				Status: domain.RiskOn,
				Action: domain.ActionHold,
			}
		}
		out = append(out, domain.TrendSignal{
			Symbol:      a.Symbol,
			Name:        "Mock " + a.Name,
			Price:       100,
			Trend:       95,
			Buffer:      5,
			Status:      domain.RiskOn,
			LastUpdated: "DEMO",
			History:     history,
			Audit: domain.CalculationAudit{
				Price: 100, Trend: 95, Buffer: 5,
				Formula: "(100.00 - 95.00) / 95.00 * 100",
			},
			IsMock: true,
		})
	}
	return out
}
