package signal

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"taa-signals/internal/domain"
)

func monthly(prices ...float64) []domain.PricePoint {
	start := time.Date(2022, time.January, 28, 0, 0, 0, 0, time.UTC)
	out := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = domain.PricePoint{Date: start.AddDate(0, i, 0), AdjClose: p, Close: p}
	}
	return out
}

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)
	}
	return out
}

var vti = domain.Asset{Symbol: "VTI", Name: "US Stocks"}

func TestBuildRisingSeriesIsRiskOnThroughout(t *testing.T) {
	asOf := time.Date(2024, time.January, 2, 15, 0, 0, 0, time.UTC)
	sig, err := Build(vti, monthly(rising(24)...), Options{TrendType: domain.TrendSMA, Period: 10, AsOf: asOf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sig.Status != domain.RiskOn {
		t.Fatalf("expected Risk-On, got %s", sig.Status)
	}
	if sig.Price != 123 {
		t.Fatalf("expected latest price 123, got %v", sig.Price)
	}
	if sig.Buffer <= 0 {
		t.Fatalf("expected positive buffer, got %v", sig.Buffer)
	}
	if len(sig.History) != DefaultHistoryMonths {
		t.Fatalf("expected %d history rows, got %d", DefaultHistoryMonths, len(sig.History))
	}
	for _, h := range sig.History {
		if h.Status != domain.RiskOn {
			t.Fatalf("month %s: expected Risk-On, got %s", h.Month, h.Status)
		}
		if h.Action != domain.ActionHold {
			t.Fatalf("month %s: expected Hold, got %s", h.Month, h.Action)
		}
	}
	if sig.History[len(sig.History)-1].Month != "Dec 23" {
		t.Fatalf("unexpected last history label %q", sig.History[len(sig.History)-1].Month)
	}
	if sig.LastUpdated != "2024-01-02T15:00:00Z" {
		t.Fatalf("unexpected timestamp %q", sig.LastUpdated)
	}
	if sig.Audit.Buffer != sig.Buffer || !strings.Contains(sig.Audit.Formula, "123.00") {
		t.Fatalf("audit does not mirror signal: %+v", sig.Audit)
	}
	if sig.IsMock {
		t.Fatal("live signal flagged as mock")
	}
}

func TestBuildDetectsCrossBelowTrend(t *testing.T) {
	prices := append(rising(20), 60)
	sig, err := Build(vti, monthly(prices...), Options{TrendType: domain.TrendEMA, Period: 12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Status != domain.RiskOff {
		t.Fatalf("expected Risk-Off, got %s", sig.Status)
	}
	if sig.Buffer >= 0 {
		t.Fatalf("expected negative buffer, got %v", sig.Buffer)
	}
	last := sig.History[len(sig.History)-1]
	if last.Action != domain.ActionSell {
		t.Fatalf("expected Sell on the crossing month, got %s", last.Action)
	}
}

func TestBuildSkipsMonthsWithoutPriorTrend(t *testing.T) {
	sig, err := Build(vti, monthly(rising(13)...), Options{TrendType: domain.TrendSMA, Period: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sig.History) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(sig.History))
	}
}

func TestBuildInsufficientHistory(t *testing.T) {
	_, err := Build(vti, monthly(rising(10)...), Options{TrendType: domain.TrendSMA, Period: 10})
	if !errors.Is(err, domain.ErrInsufficientHistory) {
		t.Fatalf("expected ErrInsufficientHistory, got %v", err)
	}
}

func TestDemoSignalsAreFlagged(t *testing.T) {
	demo := DemoSignals(domain.DemoBasket)
	if len(demo) != len(domain.DemoBasket) {
		t.Fatalf("expected %d demo signals, got %d", len(domain.DemoBasket), len(demo))
	}
	for _, s := range demo {
		if !s.IsMock {
			t.Fatalf("%s: demo signal not flagged", s.Symbol)
		}
		if len(s.History) != DefaultHistoryMonths {
			t.Fatalf("%s: expected %d history rows, got %d", s.Symbol, DefaultHistoryMonths, len(s.History))
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	asOf := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	prices := []float64{100, 104, 99, 107, 111, 103, 98, 95, 101, 108, 112, 109, 115, 110, 104, 102, 106, 113, 118, 116}
	daily := monthly(prices...)

	for _, tt := range []domain.TrendType{domain.TrendSMA, domain.TrendEMA} {
		opts := Options{TrendType: tt, Period: 10, AsOf: asOf}
		first, err := Build(vti, daily, opts)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt, err)
		}
		second, err := Build(vti, daily, opts)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("%s: repeated build differs:\n%+v\n%+v", tt, first, second)
		}
	}
}
