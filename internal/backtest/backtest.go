// Package backtest replays the trend-following rotation over monthly
// history and compares it with a buy-and-hold benchmark.
package backtest

import (
	"errors"
	"fmt"

	"taa-signals/internal/domain"
	"taa-signals/internal/series"
	"taa-signals/internal/signal"
	"taa-signals/internal/ta"
)

const startingEquity = 100

var ErrInvalidParams = errors.New("invalid backtest parameters")

// Params configure a simulation. WindowYears of zero reports the full
// aligned history.
type Params struct {
	TrendType     domain.TrendType
	Period        int
	Concentration int
	Rebalance     domain.RebalanceFrequency
	WindowYears   int
	RiskFree      float64
}

func (p Params) validate() error {
	switch {
	case !p.TrendType.IsValid():
		return fmt.Errorf("%w: trend type %q", ErrInvalidParams, p.TrendType)
	case p.Period <= 0:
		return fmt.Errorf("%w: period %d", ErrInvalidParams, p.Period)
	case p.Concentration <= 0:
		return fmt.Errorf("%w: concentration %d", ErrInvalidParams, p.Concentration)
	case !p.Rebalance.IsValid():
		return fmt.Errorf("%w: rebalance %q", ErrInvalidParams, p.Rebalance)
	case p.WindowYears < 0:
		return fmt.Errorf("%w: window %d years", ErrInvalidParams, p.WindowYears)
	}
	return nil
}

// Run simulates basket against benchmark. data holds the month-end series
// of every symbol involved.
func Run(basket []string, benchmark string, data map[string]domain.MonthlySeries, p Params) (domain.BacktestResult, error) {
	if err := p.validate(); err != nil {
		return domain.BacktestResult{}, err
	}
	if len(basket) == 0 || benchmark == "" {
		return domain.BacktestResult{}, fmt.Errorf("%w: empty basket or benchmark", ErrInvalidParams)
	}
	unique := make(map[string]struct{}, len(basket))
	for _, sym := range basket {
		if _, dup := unique[sym]; dup {
			return domain.BacktestResult{}, fmt.Errorf("%w: %s appears twice in the basket", ErrInvalidParams, sym)
		}
		unique[sym] = struct{}{}
	}

	used := make(map[string]domain.MonthlySeries, len(basket)+1)
	for _, sym := range append(append([]string{}, basket...), benchmark) {
		s := data[sym]
		if err := series.RequireMonths(sym, s, p.Period+1); err != nil {
			return domain.BacktestResult{}, err
		}
		used[sym] = s
	}

	aligned := series.Align(used)
	n := len(aligned.Months)
	if n < p.Period+2 {
		return domain.BacktestResult{}, fmt.Errorf("%w: %d common months, need %d", domain.ErrNoCommonHistory, n, p.Period+2)
	}

	labels := []string{aligned.Months[p.Period-1].Label()}
	equity := []float64{startingEquity}
	bench := []float64{startingEquity}
	var audit [][]domain.AuditEntry

	benchPrices := aligned.Prices[benchmark]
	weights := domain.WeightMap{}
	for t := p.Period; t < n; t++ {
		month := aligned.Months[t].Label()

		candidates := make([]domain.Candidate, len(basket))
		for i, sym := range basket {
			prices := aligned.Prices[sym]
			seen := prices[:t]
			price := seen[t-1]
			trend := ta.MovingAverage(seen, p.TrendType, p.Period)
			candidates[i] = domain.Candidate{
				Symbol:       sym,
				IsRiskOn:     price > trend,
				Buffer:       ta.SafetyBuffer(price, trend),
				PeriodReturn: prices[t]/prices[t-1] - 1,
			}
		}

		res := Step(StepInput{
			Month:         month,
			Index:         t - p.Period,
			Rebalance:     p.Rebalance,
			Concentration: p.Concentration,
			Prev:          weights,
			Candidates:    candidates,
			Selected:      signal.Rank(candidates, p.Concentration),
		})
		weights = res.End

		labels = append(labels, month)
		equity = append(equity, equity[len(equity)-1]*(1+res.Return))
		bench = append(bench, bench[len(bench)-1]*(benchPrices[t]/benchPrices[t-1]))
		audit = append(audit, res.Entries)
	}

	if window := p.WindowYears * ta.MonthsPerYear; window > 0 && window < len(audit) {
		cut := len(audit) - window
		labels = labels[cut:]
		equity = equity[cut:]
		bench = bench[cut:]
		audit = audit[cut:]
	}

	equity = rebase(equity)
	bench = rebase(bench)
	returns := percentReturns(equity)
	benchReturns := percentReturns(bench)

	var log []domain.AuditEntry
	for _, entries := range audit {
		log = append(log, entries...)
	}

	return domain.BacktestResult{
		EquityCurve:          curve(labels, equity),
		BenchmarkCurve:       curve(labels, bench),
		MonthlyReturns:       returns,
		BenchmarkReturns:     benchReturns,
		Performance:          ta.Summarize(returns, equity, p.RiskFree),
		BenchmarkPerformance: ta.Summarize(benchReturns, bench, p.RiskFree),
		AuditLog:             log,
	}, nil
}

func rebase(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 || values[0] == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / values[0] * startingEquity
	}
	return out
}

func percentReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] != 0 {
			out[i-1] = (values[i]/values[i-1] - 1) * 100
		}
	}
	return out
}

func curve(labels []string, values []float64) []domain.EquityPoint {
	out := make([]domain.EquityPoint, len(values))
	for i, v := range values {
		out[i] = domain.EquityPoint{Label: labels[i], Value: v}
	}
	return out
}
