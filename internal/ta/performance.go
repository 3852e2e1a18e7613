package ta

import (
	"math"

	"taa-signals/internal/domain"

	"gonum.org/v1/gonum/stat"
)

const (
	// DefaultRiskFreeRate is the annual risk-free rate used for Sharpe and Sortino.
	DefaultRiskFreeRate = 0.04
	MonthsPerYear       = 12
)

// StdDev is the sample standard deviation (N-1). Fewer than two values
// yield 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}

// Sharpe annualizes the mean monthly excess return over its deviation.
// returns are monthly percentages; riskFree is annual and fractional.
func Sharpe(returns []float64, riskFree float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	monthlyRf := riskFree / MonthsPerYear
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r/100 - monthlyRf
	}
	sd := StdDev(excess)
	if sd == 0 {
		return 0
	}
	return stat.Mean(excess, nil) / sd * math.Sqrt(MonthsPerYear)
}

// Sortino uses the downside deviation of negative excess months, divided
// by the full sample size.
func Sortino(returns []float64, riskFree float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	monthlyRf := riskFree / MonthsPerYear
	var sumSq float64
	for _, r := range returns {
		if d := r/100 - monthlyRf; d < 0 {
			sumSq += d * d
		}
	}
	downside := math.Sqrt(sumSq / float64(len(returns)))
	if downside == 0 {
		return 0
	}
	avg := stat.Mean(returns, nil) / 100
	return (avg - monthlyRf) / downside * math.Sqrt(MonthsPerYear)
}

// CAGR compounds percentage returns into an annualized percentage rate.
func CAGR(returns []float64, periodsPerYear int) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0
	}
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r/100
	}
	if growth <= 0 {
		return -100
	}
	years := float64(len(returns)) / float64(periodsPerYear)
	return (math.Pow(growth, 1/years) - 1) * 100
}

// MaxDrawdown is the largest peak-to-trough decline of a price or equity
// series, in percent.
func MaxDrawdown(values []float64) float64 {
	var maxDD float64
	peak := math.Inf(-1)
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// Volatility is the annualized sample deviation of monthly percentage
// returns.
func Volatility(returns []float64) float64 {
	return StdDev(returns) * math.Sqrt(MonthsPerYear)
}

// Summarize computes every statistic for a monthly return series and the
// equity curve it came from.
func Summarize(returns, equity []float64, riskFree float64) domain.PerformanceSummary {
	return domain.PerformanceSummary{
		Sharpe:      Sharpe(returns, riskFree),
		Sortino:     Sortino(returns, riskFree),
		CAGR:        CAGR(returns, MonthsPerYear),
		MaxDrawdown: MaxDrawdown(equity),
		Volatility:  Volatility(returns),
	}
}
