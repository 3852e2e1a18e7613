package domain

// RebalanceFrequency is the rebalance discipline of a simulation.
type RebalanceFrequency string

const (
	RebalanceMonthly RebalanceFrequency = "Monthly"
	RebalanceYearly  RebalanceFrequency = "Yearly"
)

func (r RebalanceFrequency) IsValid() bool {
	return r == RebalanceMonthly || r == RebalanceYearly
}

// WeightMap maps a symbol to its fraction of portfolio equity. The
// remainder up to 1 is cash.
type WeightMap map[string]float64

// Total returns the invested fraction.
func (w WeightMap) Total() float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// Candidate is the start-of-month view of one basket asset inside a
// simulation step.
type Candidate struct {
	Symbol       string  `json:"symbol"`
	IsRiskOn     bool    `json:"is_risk_on"`
	Buffer       float64 `json:"buffer"`
	PeriodReturn float64 `json:"period_return"`
}

// EquityPoint is one month of an equity curve.
type EquityPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// AuditReason explains a ledger entry.
type AuditReason string

const (
	ReasonNewEntry    AuditReason = "New entry"
	ReasonRebalance   AuditReason = "Rebalance"
	ReasonHold        AuditReason = "Hold"
	ReasonLiquidation AuditReason = "Liquidation"
)

// AuditEntry records one position decision of a simulated month.
type AuditEntry struct {
	Month        string      `json:"month"`
	Symbol       string      `json:"symbol"`
	Weight       float64     `json:"weight"`
	Return       float64     `json:"return"`
	Contribution float64     `json:"contribution"`
	Reason       AuditReason `json:"reason"`
	Detail       string      `json:"detail"`
}

// PerformanceSummary holds annualized risk/return statistics, in percent
// except for the two ratios.
type PerformanceSummary struct {
	Sharpe      float64 `json:"sharpe"`
	Sortino     float64 `json:"sortino"`
	CAGR        float64 `json:"cagr"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Volatility  float64 `json:"volatility"`
}

// BacktestResult is the full output of one simulation. Error is set instead
// of the curves when the run could not be completed.
type BacktestResult struct {
	EquityCurve          []EquityPoint      `json:"equity_curve"`
	BenchmarkCurve       []EquityPoint      `json:"benchmark_curve"`
	MonthlyReturns       []float64          `json:"monthly_returns"`
	BenchmarkReturns     []float64          `json:"benchmark_returns"`
	Performance          PerformanceSummary `json:"performance"`
	BenchmarkPerformance PerformanceSummary `json:"benchmark_performance"`
	AuditLog             []AuditEntry       `json:"audit_log"`
	Error                string             `json:"error,omitempty"`
}
