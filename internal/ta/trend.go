package ta

import (
	"taa-signals/internal/domain"
)

// SMA returns the arithmetic mean of the last period prices, or 0 when
// fewer than period prices exist.
func SMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}
	var sum float64
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// EMA smooths the whole window with k = 2/(period+1), seeded with the
// window's first price. Returns 0 when fewer than period prices exist.
func EMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}
	series := EMASeries(prices, period)
	return series[len(series)-1]
}

// EMASeries returns the running EMA of values seeded with values[0].
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if period <= 1 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	alpha := 2.0 / float64(period+1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// MovingAverage dispatches to SMA or EMA.
func MovingAverage(prices []float64, trendType domain.TrendType, period int) float64 {
	if trendType == domain.TrendEMA {
		return EMA(prices, period)
	}
	return SMA(prices, period)
}

// SafetyBuffer is the signed percentage distance of price from trend.
// A zero trend means no signal and yields 0.
func SafetyBuffer(price, trend float64) float64 {
	if trend == 0 {
		return 0
	}
	return (price - trend) / trend * 100
}

func StatusOf(price, trend float64) domain.Status {
	if price > trend {
		return domain.RiskOn
	}
	return domain.RiskOff
}

// Action derives the month's action from the previous and current status.
func Action(price, trend, prevPrice, prevTrend float64) domain.SignalAction {
	return Transition(StatusOf(prevPrice, prevTrend), StatusOf(price, trend))
}

// Transition is the four-state status transition table.
func Transition(prev, cur domain.Status) domain.SignalAction {
	switch {
	case prev == domain.RiskOff && cur == domain.RiskOn:
		return domain.ActionBuy
	case prev == domain.RiskOn && cur == domain.RiskOff:
		return domain.ActionSell
	case cur == domain.RiskOn:
		return domain.ActionHold
	default:
		return domain.ActionStayCash
	}
}

// TotalReturn is the percentage return from start to end including
// distributions.
func TotalReturn(start, end, dividends float64) float64 {
	if start == 0 {
		return 0
	}
	return (end + dividends - start) / start * 100
}

// RebalanceDrift is the percentage a position sits away from its target.
func RebalanceDrift(current, target float64) float64 {
	if target == 0 {
		return 0
	}
	return (current - target) / target * 100
}

// EqualWeightAllocation splits capital evenly across concentration slots.
func EqualWeightAllocation(capital float64, concentration int) float64 {
	if concentration <= 0 {
		return 0
	}
	return capital / float64(concentration)
}
