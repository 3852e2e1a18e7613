// Package preferences resolves stored user strategy settings into one
// canonical, validated snapshot.
package preferences

import (
	"fmt"
	"strings"
	"time"

	"taa-signals/internal/domain"
)

const dateLayout = "2006-01-02"

// Tickers assigns a symbol to every basket slot plus the benchmark.
type Tickers struct {
	USStocks    string `json:"usStocks"`
	IntlStocks  string `json:"intlStocks"`
	Bonds       string `json:"bonds"`
	RealEstate  string `json:"realEstate"`
	Commodities string `json:"commodities"`
	Benchmark   string `json:"benchmark"`
}

// Slot returns the symbol configured for a basket slot.
func (t Tickers) Slot(slot string) string {
	switch slot {
	case domain.SlotUSStocks:
		return t.USStocks
	case domain.SlotIntlStocks:
		return t.IntlStocks
	case domain.SlotBonds:
		return t.Bonds
	case domain.SlotRealEstate:
		return t.RealEstate
	case domain.SlotCommodities:
		return t.Commodities
	}
	return ""
}

func (t Tickers) withDefaults(d Tickers) Tickers {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&t.USStocks, d.USStocks)
	fill(&t.IntlStocks, d.IntlStocks)
	fill(&t.Bonds, d.Bonds)
	fill(&t.RealEstate, d.RealEstate)
	fill(&t.Commodities, d.Commodities)
	fill(&t.Benchmark, d.Benchmark)
	return t
}

// ThresholdType selects when a trend alert fires.
type ThresholdType string

const (
	ThresholdHardCross ThresholdType = "HARD_CROSS"
	ThresholdBuffer    ThresholdType = "BUFFER"
)

type Notifications struct {
	Enabled       bool          `json:"enabled"`
	ThresholdType ThresholdType `json:"thresholdType"`
	BufferPercent float64       `json:"bufferPercent,omitempty"`
}

// Preferences is the canonical in-memory strategy configuration. It is
// treated as an immutable snapshot for one computation.
type Preferences struct {
	Tickers           Tickers                   `json:"tickers"`
	TrendType         domain.TrendType          `json:"trendType"`
	Period            int                       `json:"period"`
	Concentration     int                       `json:"concentration"`
	Rebalance         domain.RebalanceFrequency `json:"rebalanceFrequency"`
	StrategyStartDate string                    `json:"strategyStartDate,omitempty"`
	Notifications     Notifications             `json:"notifications"`
}

// Default is the classic Ivy basket with a 10-month simple average.
func Default() Preferences {
	return Preferences{
		Tickers: Tickers{
			USStocks:    "VTI",
			IntlStocks:  "VEU",
			Bonds:       "IEF",
			RealEstate:  "VNQ",
			Commodities: "DBC",
			Benchmark:   "AOR",
		},
		TrendType:     domain.TrendSMA,
		Period:        10,
		Concentration: 5,
		Rebalance:     domain.RebalanceMonthly,
		Notifications: Notifications{
			ThresholdType: ThresholdHardCross,
			BufferPercent: 2,
		},
	}
}

// Basket returns the configured assets in slot order.
func (p Preferences) Basket() []domain.Asset {
	out := make([]domain.Asset, 0, len(domain.BasketSlots))
	for _, slot := range domain.BasketSlots {
		out = append(out, domain.Asset{ID: slot, Symbol: p.Tickers.Slot(slot), Name: domain.SlotNames[slot]})
	}
	return out
}

// Symbols returns the basket symbols in slot order.
func (p Preferences) Symbols() []string {
	basket := p.Basket()
	out := make([]string, len(basket))
	for i, a := range basket {
		out[i] = a.Symbol
	}
	return out
}

// Validate rejects settings the engine cannot run with.
func (p Preferences) Validate() error {
	switch {
	case !p.TrendType.IsValid():
		return fmt.Errorf("%w: trend type %q", domain.ErrInvalidPreferences, p.TrendType)
	case p.Period != 10 && p.Period != 12:
		return fmt.Errorf("%w: period must be 10 or 12, got %d", domain.ErrInvalidPreferences, p.Period)
	case p.Concentration < 1 || p.Concentration > 5:
		return fmt.Errorf("%w: concentration must be 1-5, got %d", domain.ErrInvalidPreferences, p.Concentration)
	case !p.Rebalance.IsValid():
		return fmt.Errorf("%w: rebalance %q", domain.ErrInvalidPreferences, p.Rebalance)
	case p.Tickers.Benchmark == "":
		return fmt.Errorf("%w: benchmark is required", domain.ErrInvalidPreferences)
	}
	seen := make(map[string]string, len(domain.BasketSlots))
	for _, slot := range domain.BasketSlots {
		sym := strings.ToUpper(p.Tickers.Slot(slot))
		if sym == "" {
			return fmt.Errorf("%w: no ticker for %s", domain.ErrInvalidPreferences, slot)
		}
		if other, dup := seen[sym]; dup {
			return fmt.Errorf("%w: %s is used by both %s and %s", domain.ErrInvalidPreferences, sym, other, slot)
		}
		seen[sym] = slot
	}
	if p.StrategyStartDate != "" {
		if _, err := time.Parse(dateLayout, p.StrategyStartDate); err != nil {
			return fmt.Errorf("%w: strategy start date %q", domain.ErrInvalidPreferences, p.StrategyStartDate)
		}
	}
	switch p.Notifications.ThresholdType {
	case ThresholdHardCross, ThresholdBuffer:
	default:
		return fmt.Errorf("%w: threshold type %q", domain.ErrInvalidPreferences, p.Notifications.ThresholdType)
	}
	if p.Notifications.BufferPercent < 0 {
		return fmt.Errorf("%w: negative buffer percent", domain.ErrInvalidPreferences)
	}
	return nil
}
