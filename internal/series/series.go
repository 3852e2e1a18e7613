// Package series reduces daily price observations to month-end series and
// aligns several series on their shared calendar months.
package series

import (
	"fmt"
	"math"
	"sort"

	"taa-signals/internal/domain"
)

// MonthEnds keeps the latest observation of every calendar month, sorted
// oldest to newest. Non-positive and NaN prices are ignored.
func MonthEnds(points []domain.PricePoint) domain.MonthlySeries {
	latest := make(map[domain.MonthKey]domain.PricePoint)
	for _, p := range points {
		if p.AdjClose <= 0 || math.IsNaN(p.AdjClose) {
			continue
		}
		k := domain.KeyOf(p.Date)
		if cur, ok := latest[k]; !ok || p.Date.After(cur.Date) {
			latest[k] = p
		}
	}

	out := make(domain.MonthlySeries, 0, len(latest))
	for _, p := range latest {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// RequireMonths fails with ErrInsufficientHistory when s has fewer than
// min points.
func RequireMonths(symbol string, s domain.MonthlySeries, min int) error {
	if len(s) < min {
		return fmt.Errorf("%w: %s has %d monthly points, need %d", domain.ErrInsufficientHistory, symbol, len(s), min)
	}
	return nil
}

// Aligned is a set of series restricted to the months every one of them has.
type Aligned struct {
	Months []domain.MonthKey
	Prices map[string][]float64
}

// Align intersects the calendar months of all series. Months missing from
// any one series are dropped entirely.
func Align(all map[string]domain.MonthlySeries) Aligned {
	counts := make(map[domain.MonthKey]int)
	for _, s := range all {
		for _, p := range s {
			counts[domain.KeyOf(p.Date)]++
		}
	}

	var months []domain.MonthKey
	for k, n := range counts {
		if n == len(all) {
			months = append(months, k)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	index := make(map[domain.MonthKey]int, len(months))
	for i, k := range months {
		index[k] = i
	}

	prices := make(map[string][]float64, len(all))
	for symbol, s := range all {
		row := make([]float64, len(months))
		for _, p := range s {
			if i, ok := index[domain.KeyOf(p.Date)]; ok {
				row[i] = p.AdjClose
			}
		}
		prices[symbol] = row
	}
	return Aligned{Months: months, Prices: prices}
}
