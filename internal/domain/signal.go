package domain

// TrendType selects the moving average used as the trend line.
type TrendType string

const (
	TrendSMA TrendType = "SMA"
	TrendEMA TrendType = "EMA"
)

func (t TrendType) IsValid() bool {
	return t == TrendSMA || t == TrendEMA
}

// Status is whether price sits above (Risk-On) or below (Risk-Off) trend.
type Status string

const (
	RiskOn  Status = "Risk-On"
	RiskOff Status = "Risk-Off"
)

// SignalAction is derived from the previous and current month's status.
type SignalAction string

const (
	ActionBuy      SignalAction = "Buy"
	ActionSell     SignalAction = "Sell"
	ActionHold     SignalAction = "Hold"
	ActionStayCash SignalAction = "Stay Cash"
)

// SignalHistory is one trailing monthly snapshot of a TrendSignal.
type SignalHistory struct {
	Month  string       `json:"month"`
	Price  float64      `json:"price"`
	Trend  float64      `json:"trend"`
	Status Status       `json:"status"`
	Action SignalAction `json:"action"`
}

// CalculationAudit explains how a buffer was computed.
type CalculationAudit struct {
	Price   float64 `json:"price"`
	Trend   float64 `json:"trend"`
	Buffer  float64 `json:"buffer"`
	Formula string  `json:"formula"`
}

// TrendSignal is the live trend reading for one basket asset.
type TrendSignal struct {
	Symbol      string           `json:"symbol"`
	Name        string           `json:"name"`
	Price       float64          `json:"price"`
	Trend       float64          `json:"trend"`
	Buffer      float64          `json:"buffer"`
	Status      Status           `json:"status"`
	LastUpdated string           `json:"last_updated"`
	History     []SignalHistory  `json:"history"`
	Audit       CalculationAudit `json:"audit"`
	IsMock      bool             `json:"is_mock,omitempty"`
}

// RankedAsset is a selected holding produced by the momentum ranker.
type RankedAsset struct {
	Symbol       string  `json:"symbol"`
	Rank         int     `json:"rank"`
	Buffer       float64 `json:"buffer"`
	TargetWeight float64 `json:"target_weight"`
}
