package domain

import "time"

// Asset is one slot of the tracked basket.
type Asset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Basket slot identifiers, in display order.
const (
	SlotUSStocks    = "usStocks"
	SlotIntlStocks  = "intlStocks"
	SlotBonds       = "bonds"
	SlotRealEstate  = "realEstate"
	SlotCommodities = "commodities"
)

// BasketSlots lists the five asset-class slots of the Ivy basket.
var BasketSlots = []string{SlotUSStocks, SlotIntlStocks, SlotBonds, SlotRealEstate, SlotCommodities}

// SlotNames maps a basket slot to its display name.
var SlotNames = map[string]string{
	SlotUSStocks:    "US Stocks",
	SlotIntlStocks:  "Intl Stocks",
	SlotBonds:       "US Bonds",
	SlotRealEstate:  "Real Estate",
	SlotCommodities: "Commodities",
}

// DemoBasket is the basket used for the flagged placeholder dataset.
var DemoBasket = []Asset{
	{ID: SlotUSStocks, Symbol: "VTI", Name: "US Stocks"},
	{ID: SlotIntlStocks, Symbol: "VEA", Name: "Intl Stocks"},
	{ID: SlotBonds, Symbol: "BND", Name: "US Bonds"},
	{ID: SlotRealEstate, Symbol: "VNQ", Name: "Real Estate"},
	{ID: SlotCommodities, Symbol: "GSG", Name: "Commodities"},
}

// PricePoint is a single dividend/split-adjusted daily observation.
type PricePoint struct {
	Date     time.Time `json:"date"`
	AdjClose float64   `json:"adj_close"`
	Close    float64   `json:"close,omitempty"`
	Volume   float64   `json:"volume,omitempty"`
}

// MonthlySeries holds one PricePoint per calendar month, oldest first.
type MonthlySeries []PricePoint

// Prices returns the adjusted closes in series order.
func (s MonthlySeries) Prices() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.AdjClose
	}
	return out
}

// MonthLabelLayout formats month labels such as "Jan 24".
const MonthLabelLayout = "Jan 06"

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// KeyOf returns the calendar month of t in UTC.
func KeyOf(t time.Time) MonthKey {
	t = t.UTC()
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

func (k MonthKey) Before(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

func (k MonthKey) Label() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format(MonthLabelLayout)
}
