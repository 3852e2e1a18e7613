package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"taa-signals/internal/domain"
)

func growth(start time.Time, n int, rate float64) domain.MonthlySeries {
	out := make(domain.MonthlySeries, n)
	p := 100.0
	for i := range out {
		out[i] = domain.PricePoint{Date: start.AddDate(0, i, 0), AdjClose: p, Close: p}
		p *= 1 + rate
	}
	return out
}

var jan2010 = time.Date(2010, time.January, 28, 0, 0, 0, 0, time.UTC)

func params(freq domain.RebalanceFrequency, k int) Params {
	return Params{
		TrendType:     domain.TrendSMA,
		Period:        10,
		Concentration: k,
		Rebalance:     freq,
		RiskFree:      0.04,
	}
}

func TestRunRisingBasketMonthly(t *testing.T) {
	data := map[string]domain.MonthlySeries{
		"AAA": growth(jan2010, 36, 0.03),
		"BBB": growth(jan2010, 36, 0.02),
		"CCC": growth(jan2010, 36, 0.01),
		"BM":  growth(jan2010, 36, 0.01),
	}
	res, err := Run([]string{"AAA", "BBB", "CCC"}, "BM", data, params(domain.RebalanceMonthly, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	simulated := 36 - 10
	if len(res.EquityCurve) != simulated+1 {
		t.Fatalf("expected %d curve points, got %d", simulated+1, len(res.EquityCurve))
	}
	if len(res.BenchmarkCurve) != len(res.EquityCurve) {
		t.Fatalf("benchmark curve length %d differs from %d", len(res.BenchmarkCurve), len(res.EquityCurve))
	}
	if len(res.MonthlyReturns) != simulated {
		t.Fatalf("expected %d returns, got %d", simulated, len(res.MonthlyReturns))
	}
	if res.EquityCurve[0].Value != 100 || res.BenchmarkCurve[0].Value != 100 {
		t.Fatalf("curves must start at 100, got %v and %v", res.EquityCurve[0].Value, res.BenchmarkCurve[0].Value)
	}
	if res.EquityCurve[0].Label != "Oct 10" {
		t.Fatalf("expected first label Oct 10, got %q", res.EquityCurve[0].Label)
	}
	for i := 1; i < len(res.EquityCurve); i++ {
		if res.EquityCurve[i].Value <= res.EquityCurve[i-1].Value {
			t.Fatalf("equity not increasing at %d: %v -> %v", i, res.EquityCurve[i-1].Value, res.EquityCurve[i].Value)
		}
	}
	for _, e := range res.AuditLog {
		if e.Weight > 0.5+1e-12 {
			t.Fatalf("monthly weight above 1/K: %+v", e)
		}
		if e.Symbol == "CCC" && e.Weight > 0 {
			t.Fatalf("weakest asset should never be selected: %+v", e)
		}
	}
	if res.Performance.CAGR <= res.BenchmarkPerformance.CAGR {
		t.Fatalf("expected strategy CAGR %v above benchmark %v", res.Performance.CAGR, res.BenchmarkPerformance.CAGR)
	}
	if res.Performance.MaxDrawdown != 0 {
		t.Fatalf("expected no drawdown, got %v", res.Performance.MaxDrawdown)
	}
}

func TestRunYearlyLetsWeightsDrift(t *testing.T) {
	data := map[string]domain.MonthlySeries{
		"FAST": growth(jan2010, 35, 0.05),
		"SLOW": growth(jan2010, 35, 0.01),
		"BM":   growth(jan2010, 35, 0.01),
	}
	res, err := Run([]string{"FAST", "SLOW"}, "BM", data, params(domain.RebalanceYearly, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var drifted, reset bool
	for _, e := range res.AuditLog {
		if e.Symbol != "FAST" {
			continue
		}
		switch e.Reason {
		case domain.ReasonHold:
			if e.Weight > 0.5 {
				drifted = true
			}
		case domain.ReasonRebalance:
			if math.Abs(e.Weight-0.5) > 1e-12 {
				t.Fatalf("reset month should restore 1/K, got %v", e.Weight)
			}
			reset = true
		}
	}
	if !drifted {
		t.Fatal("expected the faster asset to drift above 1/K between resets")
	}
	if !reset {
		t.Fatal("expected at least one yearly reset")
	}
}

func TestRunWindowRebasesToHundred(t *testing.T) {
	data := map[string]domain.MonthlySeries{
		"AAA": growth(jan2010, 48, 0.02),
		"BM":  growth(jan2010, 48, 0.01),
	}
	p := params(domain.RebalanceMonthly, 1)
	p.WindowYears = 1
	res, err := Run([]string{"AAA"}, "BM", data, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.EquityCurve) != 13 {
		t.Fatalf("expected 13 points, got %d", len(res.EquityCurve))
	}
	if res.EquityCurve[0].Value != 100 || res.BenchmarkCurve[0].Value != 100 {
		t.Fatalf("window must be rebased to 100, got %v", res.EquityCurve[0].Value)
	}
	if len(res.AuditLog) != 12 {
		t.Fatalf("expected 12 audit entries in window, got %d", len(res.AuditLog))
	}
	if res.AuditLog[0].Month != res.EquityCurve[1].Label {
		t.Fatalf("audit starts at %q, curve at %q", res.AuditLog[0].Month, res.EquityCurve[1].Label)
	}
	for _, r := range res.MonthlyReturns {
		if math.Abs(r-2) > 1e-9 {
			t.Fatalf("expected 2%% monthly returns, got %v", r)
		}
	}
}

func TestRunFallingBasketStaysInCash(t *testing.T) {
	data := map[string]domain.MonthlySeries{
		"AAA": growth(jan2010, 24, -0.02),
		"BM":  growth(jan2010, 24, -0.02),
	}
	res, err := Run([]string{"AAA"}, "BM", data, params(domain.RebalanceMonthly, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, p := range res.EquityCurve {
		if p.Value != 100 {
			t.Fatalf("expected flat equity in cash, got %v", p.Value)
		}
	}
	if last := res.BenchmarkCurve[len(res.BenchmarkCurve)-1].Value; last >= 100 {
		t.Fatalf("expected benchmark to lose value, got %v", last)
	}
}

func TestRunErrors(t *testing.T) {
	later := jan2010.AddDate(5, 0, 0)
	tests := []struct {
		name string
		data map[string]domain.MonthlySeries
		p    Params
		want error
	}{
		{
			name: "short series",
			data: map[string]domain.MonthlySeries{"AAA": growth(jan2010, 10, 0.01), "BM": growth(jan2010, 30, 0.01)},
			p:    params(domain.RebalanceMonthly, 1),
			want: domain.ErrInsufficientHistory,
		},
		{
			name: "missing benchmark",
			data: map[string]domain.MonthlySeries{"AAA": growth(jan2010, 30, 0.01)},
			p:    params(domain.RebalanceMonthly, 1),
			want: domain.ErrInsufficientHistory,
		},
		{
			name: "disjoint history",
			data: map[string]domain.MonthlySeries{"AAA": growth(jan2010, 20, 0.01), "BM": growth(later, 20, 0.01)},
			p:    params(domain.RebalanceMonthly, 1),
			want: domain.ErrNoCommonHistory,
		},
		{
			name: "zero concentration",
			data: map[string]domain.MonthlySeries{"AAA": growth(jan2010, 30, 0.01), "BM": growth(jan2010, 30, 0.01)},
			p:    params(domain.RebalanceMonthly, 0),
			want: ErrInvalidParams,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Run([]string{"AAA"}, "BM", tc.data, tc.p)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRunRejectsRepeatedBasketSymbol(t *testing.T) {
	data := map[string]domain.MonthlySeries{
		"AAA": growth(jan2010, 30, 0.01),
		"BM":  growth(jan2010, 30, 0.01),
	}
	_, err := Run([]string{"AAA", "AAA"}, "BM", data, params(domain.RebalanceMonthly, 2))
	if !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}
